package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harunaka/careshift/pkg/core/services"
)

// ResolveRequirementCmd creates the resolveRequirement command
func ResolveRequirementCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resolveRequirement <date> <shiftType>",
		Short: "Show the effective staffing requirement for a date and shift type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, shiftType := args[0], args[1]

			count, err := services.ResolveRequirement(app.Ctx, app.Store, date, shiftType, app.Logger)
			if err != nil {
				return fmt.Errorf("failed to resolve requirement: %w", err)
			}

			fmt.Printf("\nRequired staff for %s %s: %d\n", date, shiftType, count)
			return nil
		},
	}
}
