package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ViewRequestsCmd creates the viewRequests command
func ViewRequestsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viewRequests <startDate> <endDate>",
		Short: "View leave and exchange requests within a period",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			startDate, endDate := args[0], args[1]

			requests, err := app.Store.ListRequests(app.Ctx, startDate, endDate)
			if err != nil {
				return fmt.Errorf("failed to list requests: %w", err)
			}

			fmt.Printf("\nFound %d requests between %s and %s:\n\n", len(requests), startDate, endDate)
			for _, req := range requests {
				fmt.Printf("- %s  %s  %s  [%s]  %s\n",
					req.ID,
					req.StaffID,
					strings.Join(req.Dates, ","),
					req.Type,
					req.Status,
				)
				if req.Reason != "" {
					fmt.Printf("    reason: %s\n", req.Reason)
				}

				history, err := app.Store.GetHistory(app.Ctx, req.ID)
				if err != nil {
					return fmt.Errorf("failed to load history for %s: %w", req.ID, err)
				}
				for _, rec := range history {
					fmt.Printf("    %s by %s at %s\n", rec.Action, rec.PerformedBy, rec.PerformedAt)
				}
			}
			return nil
		},
	}

	return cmd
}
