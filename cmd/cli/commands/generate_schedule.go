package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harunaka/careshift/pkg/core/services"
)

// GenerateScheduleCmd creates the generateSchedule command
func GenerateScheduleCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generateSchedule <startDate> <endDate>",
		Short: "Generate candidate schedule patterns for a period",
		Long:  "Run parallel generation strategies over the period and print each candidate pattern with its score, metrics and findings. Use --apply to commit one pattern's assignments.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			startDate, endDate := args[0], args[1]
			seed, _ := cmd.Flags().GetInt64("seed")
			timeoutSecs, _ := cmd.Flags().GetInt("timeout")
			applyName, _ := cmd.Flags().GetString("apply")

			if seed == 0 {
				seed = app.Cfg.Generation.Seed
			}
			if timeoutSecs == 0 {
				timeoutSecs = app.Cfg.Generation.TimeoutSeconds
			}

			app.Logger.Debug("generateSchedule command",
				zap.String("start", startDate),
				zap.String("end", endDate),
				zap.Int64("seed", seed))

			outcome, err := services.GenerateSchedule(app.Ctx, app.Store, startDate, endDate,
				services.GenerateScheduleOptions{
					Seed:    seed,
					Timeout: time.Duration(timeoutSecs) * time.Second,
				}, app.Logger)
			if err != nil {
				return fmt.Errorf("schedule generation failed: %w", err)
			}

			fmt.Printf("\nSchedule Patterns (%s to %s)\n\n", startDate, endDate)
			if outcome.Partial {
				fmt.Println("Note: deadline hit, showing completed patterns only")
			}

			for _, pattern := range outcome.Patterns {
				fmt.Printf("Pattern %q  score %d\n", pattern.Name, pattern.Score)
				fmt.Printf("  coverage: %.0f%%  leave honored: %.0f%%  load variance: %.2f\n",
					pattern.Metrics.RequirementCoverage*100,
					pattern.Metrics.LeaveSatisfaction*100,
					pattern.Metrics.LoadVariance)
				for _, pro := range pattern.Pros {
					fmt.Printf("  + %s\n", pro)
				}
				for _, con := range pattern.Cons {
					fmt.Printf("  - %s\n", con)
				}
				for _, finding := range pattern.Findings {
					fmt.Printf("  ! %s %s: %d of %d staffed\n",
						finding.Date, finding.ShiftTypeCode, finding.Assigned, finding.Required)
				}
				fmt.Println()
			}

			if applyName == "" {
				return nil
			}

			for _, pattern := range outcome.Patterns {
				if pattern.Name != applyName {
					continue
				}
				result, err := services.ApplySchedulePattern(app.Ctx, app.Store, pattern,
					startDate, endDate, app.Logger)
				if err != nil {
					return fmt.Errorf("failed to apply pattern %q: %w", applyName, err)
				}
				fmt.Printf("Applied pattern %q: %d slots committed", applyName, result.CommittedSlots)
				if len(result.SkippedCells) > 0 {
					fmt.Printf(", %d cells had no open slot", len(result.SkippedCells))
				}
				fmt.Println()
				return nil
			}
			return fmt.Errorf("no generated pattern named %q", applyName)
		},
	}

	cmd.Flags().Int64("seed", 0, "Seed for deterministic tie-breaking (0 = from config or time)")
	cmd.Flags().Int("timeout", 0, "Generation deadline in seconds (0 = from config or none)")
	cmd.Flags().String("apply", "", "Commit the named pattern's assignments to open slots")

	return cmd
}
