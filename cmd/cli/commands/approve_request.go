package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harunaka/careshift/pkg/core/model"
	"github.com/harunaka/careshift/pkg/core/services"
)

// ApproveRequestCmd creates the approveRequest command
func ApproveRequestCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approveRequest <requestID>",
		Short: "Approve a leave or exchange request",
		Long:  "Approve a pending request. For an exchange request awaiting a replacement, pass --candidate to choose which proposal to commit.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requestID := args[0]
			approver, _ := cmd.Flags().GetString("approver")
			notes, _ := cmd.Flags().GetString("notes")
			candidateID, _ := cmd.Flags().GetString("candidate")

			var selection *model.ExchangeProposal
			if candidateID != "" {
				var err error
				selection, err = findProposal(app, requestID, candidateID)
				if err != nil {
					return err
				}
			}

			record, err := services.ApproveRequest(app.Ctx, app.Store, services.ApproveRequestInput{
				RequestID:  requestID,
				ApproverID: approver,
				Notes:      notes,
				Selection:  selection,
			}, app.Logger)
			if err != nil {
				return fmt.Errorf("approval failed: %w", err)
			}

			fmt.Printf("\nRequest %s approved (record %s)\n", requestID, record.ID)
			if selection != nil {
				fmt.Printf("Replacement: %s covers slot %s\n",
					selection.CandidateStaffID, selection.OriginalSlot.ID)
			}
			return nil
		},
	}

	cmd.Flags().String("approver", "", "ID of the approving admin")
	cmd.Flags().String("notes", "", "Approval notes")
	cmd.Flags().String("candidate", "", "Candidate staff ID of the proposal to commit")
	cmd.MarkFlagRequired("approver")

	return cmd
}

// findProposal regenerates the ranked proposals and picks the one naming
// the given candidate
func findProposal(app *AppContext, requestID, candidateID string) (*model.ExchangeProposal, error) {
	app.Logger.Debug("Resolving proposal selection",
		zap.String("request_id", requestID),
		zap.String("candidate", candidateID))

	proposals, err := services.GenerateExchangeProposals(app.Ctx, app.Store,
		requestID, app.Cfg.Generation.MaxProposals, app.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve proposals: %w", err)
	}

	for i := range proposals {
		if proposals[i].CandidateStaffID == candidateID {
			return &proposals[i], nil
		}
	}
	return nil, fmt.Errorf("no proposal names candidate %s", candidateID)
}
