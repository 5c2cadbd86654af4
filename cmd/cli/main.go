package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harunaka/careshift/cmd/cli/commands"
	"github.com/harunaka/careshift/internal/config"
	"github.com/harunaka/careshift/pkg/postgres"
	"github.com/harunaka/careshift/pkg/utils/logging"
)

var (
	env      string
	app      *commands.AppContext
	database *postgres.DB
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "careshift",
		Short: "Careshift CLI - Manage care facility shift schedules",
		Long:  `A CLI tool for resolving staffing requirements, generating schedules, and handling leave and shift-exchange requests.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.Logger != nil {
				app.Logger.Sync()
			}
			if database != nil {
				database.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.ResolveRequirementCmd(appRef()))
	rootCmd.AddCommand(commands.GenerateScheduleCmd(appRef()))
	rootCmd.AddCommand(commands.ProposeExchangeCmd(appRef()))
	rootCmd.AddCommand(commands.ApproveRequestCmd(appRef()))
	rootCmd.AddCommand(commands.RejectRequestCmd(appRef()))
	rootCmd.AddCommand(commands.ScoreCmd(appRef()))
	rootCmd.AddCommand(commands.ListStaffCmd(appRef()))
	rootCmd.AddCommand(commands.ViewRequestsCmd(appRef()))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// appRef returns the shared context pointer; its fields are populated by
// initApp before any RunE executes
func appRef() *commands.AppContext {
	if app == nil {
		app = &commands.AppContext{}
	}
	return app
}

// initApp sets up logger, config and database
func initApp() error {
	ctx := appRef()
	ctx.Ctx = context.Background()

	var err error
	ctx.Logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx.Logger.Info("Starting application", zap.String("environment", env))

	ctx.Logger.Info("Loading configuration")
	ctx.Cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	ctx.Logger.Debug("Configuration loaded successfully")

	ctx.Logger.Info("Connecting to database")
	database, err = postgres.NewDB(ctx.Ctx, ctx.Cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.RunMigrations(ctx.Ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	ctx.Logger.Debug("Database ready")

	ctx.Store = database.Store()
	return nil
}
