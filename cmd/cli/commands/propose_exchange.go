package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harunaka/careshift/pkg/core/services"
)

// ProposeExchangeCmd creates the proposeExchange command
func ProposeExchangeCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proposeExchange <requestID>",
		Short: "Generate ranked replacement proposals for a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requestID := args[0]
			maxProposals, _ := cmd.Flags().GetInt("max")
			if maxProposals == 0 {
				maxProposals = app.Cfg.Generation.MaxProposals
			}

			proposals, err := services.GenerateExchangeProposals(app.Ctx, app.Store,
				requestID, maxProposals, app.Logger)
			if err != nil {
				return fmt.Errorf("failed to generate proposals: %w", err)
			}

			fmt.Printf("\nExchange Proposals for request %s\n\n", requestID)
			for i, p := range proposals {
				fmt.Printf("%d. %s  score %d  risk %s\n",
					i+1, p.CandidateStaffID, p.Score.Total, p.RiskLevel)
				fmt.Printf("   proposed: %s %s\n", p.ProposedSlot.Date, p.ProposedSlot.ShiftTypeCode)
				fmt.Printf("   impact: quality %d, workload %d, coverage %d, continuity %d\n",
					p.Impact.ServiceQuality, p.Impact.StaffWorkload,
					p.Impact.SkillCoverage, p.Impact.Continuity)
				for _, b := range p.Benefits {
					fmt.Printf("   + %s\n", b)
				}
				for _, r := range p.Risks {
					fmt.Printf("   - %s\n", r)
				}
				for _, a := range p.Alternatives {
					fmt.Printf("   ~ %s\n", a)
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().Int("max", 0, "Maximum number of proposals (0 = from config or default)")

	return cmd
}
