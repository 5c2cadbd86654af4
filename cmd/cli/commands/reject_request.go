package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harunaka/careshift/pkg/core/services"
)

// RejectRequestCmd creates the rejectRequest command
func RejectRequestCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rejectRequest <requestID>",
		Short: "Reject a leave or exchange request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requestID := args[0]
			rejector, _ := cmd.Flags().GetString("rejector")
			reason, _ := cmd.Flags().GetString("reason")

			record, err := services.RejectRequest(app.Ctx, app.Store,
				requestID, rejector, reason, app.Logger)
			if err != nil {
				return fmt.Errorf("rejection failed: %w", err)
			}

			fmt.Printf("\nRequest %s rejected (record %s)\n", requestID, record.ID)
			return nil
		},
	}

	cmd.Flags().String("rejector", "", "ID of the rejecting admin")
	cmd.Flags().String("reason", "", "Rejection reason shown to the requester")
	cmd.MarkFlagRequired("rejector")
	cmd.MarkFlagRequired("reason")

	return cmd
}
