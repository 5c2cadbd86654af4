package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/harunaka/careshift/pkg/core/scoring"
	"github.com/harunaka/careshift/pkg/core/services"
)

// ScoreCmd creates the score command
func ScoreCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score <subjectID> <candidateID>",
		Short: "Score the compatibility of two staff members",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			subjectID, candidateID := args[0], args[1]
			profile, _ := cmd.Flags().GetString("profile")
			requiredSkills, _ := cmd.Flags().GetStringSlice("skills")
			shiftType, _ := cmd.Flags().GetString("shift-type")

			breakdown, err := services.ScoreCompatibility(app.Ctx, app.Store,
				subjectID, candidateID, requiredSkills, shiftType,
				scoring.Profile(profile), app.Logger)
			if err != nil {
				return fmt.Errorf("scoring failed: %w", err)
			}

			fmt.Printf("\nCompatibility %s vs %s (%s): %d\n\n",
				subjectID, candidateID, profile, breakdown.Total)

			names := make([]string, 0, len(breakdown.Components))
			for name := range breakdown.Components {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("  %-22s %6.2f\n", name, breakdown.Components[name])
			}
			return nil
		},
	}

	cmd.Flags().String("profile", string(scoring.ProfileGeneralSimilarity), "Scoring profile: general_similarity or exchange_fitness")
	cmd.Flags().StringSlice("skills", nil, "Required skills of the slot under consideration")
	cmd.Flags().String("shift-type", "", "Shift type code of the slot under consideration")

	return cmd
}
