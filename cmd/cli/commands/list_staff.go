package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harunaka/careshift/pkg/db"
)

// ListStaffCmd creates the listStaff command
func ListStaffCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listStaff",
		Short: "List roster members, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			category, _ := cmd.Flags().GetString("category")
			shiftType, _ := cmd.Flags().GetString("shift-type")
			skill, _ := cmd.Flags().GetString("skill")

			members, err := app.Store.ListStaff(app.Ctx, db.StaffFilter{
				Category:      category,
				ShiftTypeCode: shiftType,
				SkillName:     skill,
			})
			if err != nil {
				return fmt.Errorf("failed to list staff: %w", err)
			}

			fmt.Printf("\nFound %d staff members:\n\n", len(members))
			for _, m := range members {
				skills := make([]string, 0, len(m.Skills))
				for _, s := range m.Skills {
					skills = append(skills, fmt.Sprintf("%s:%d", s.Name, s.Level))
				}
				fmt.Printf("- %s (%s) - %s - workload %d%% - %s\n",
					m.Name,
					m.ID,
					m.Category,
					m.CurrentWorkload,
					strings.Join(skills, ", "),
				)
			}
			return nil
		},
	}

	cmd.Flags().String("category", "", "Only staff in this category")
	cmd.Flags().String("shift-type", "", "Only staff eligible for this shift type")
	cmd.Flags().String("skill", "", "Only staff holding this skill")

	return cmd
}
