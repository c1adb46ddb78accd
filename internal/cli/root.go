package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/maintenance-planner/internal/app"
	"github.com/yungbote/maintenance-planner/internal/pkg/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "maintenance-planner",
	Short:         "Maintenance plans, checklists and backups",
	Long:          `Serves the maintenance planner API and runs its housekeeping tasks: unreferenced action sweeps and snapshot backups.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (defaults to $CONFIG_FILE)")
	rootCmd.AddCommand(serveCmd, exportCmd, importCmd, sweepCmd)
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// openApp loads config, builds the logger it names and wires the app.
func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := app.LoadConfig(configPath, nil)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return a, nil
}
