package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	appLog "alarmboard/internal/log"
)

const version = "0.1.0"

// rootOptions carries persistent flag values to every subcommand.
type rootOptions struct {
	configPath string
}

// NewRootCommand creates the top-level Cobra command. Running it without a
// subcommand starts the dashboard server.
func NewRootCommand(ctx context.Context) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:     "alarmboard",
		Short:   "Show today's alarms and live countdowns from a CSV schedule.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(ctx, opts, "")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"Path to config file (default: $ALARMBOARD_CONFIG or <user config dir>/alarmboard/config.yaml)")

	cmd.AddCommand(
		newServeCommand(ctx, opts),
		newTodayCommand(ctx, opts),
		newWatchCommand(ctx, opts),
		newGenerateCommand(),
		newExportCommand(ctx, opts),
		newSnapshotCommand(ctx, opts),
	)

	return cmd
}

// ExecuteCommand is a thin wrapper that executes the Cobra root command.
func ExecuteCommand(ctx context.Context) error {
	return NewRootCommand(ctx).Execute()
}

// Main is used by cmd/alarmboard/main.go to keep wiring contained in one package.
func Main(ctx context.Context) {
	err := ExecuteCommand(ctx)
	appLog.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
