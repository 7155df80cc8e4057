package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"alarmboard/internal/export"
)

func newExportCommand(ctx context.Context, opts *rootOptions) *cobra.Command {
	var (
		outPath string
		name    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every scheduled alarm as an iCalendar file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts)
			if err != nil {
				return err
			}
			if err := a.store.EnsureLoaded(ctx); err != nil {
				return err
			}

			body := export.Serialize(a.store.Schedules(), export.Options{
				Name:     name,
				Location: a.cfg.Location(),
			})
			if outPath == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}
			if err := os.WriteFile(outPath, []byte(body), 0o644); err != nil {
				return fmt.Errorf("write calendar: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&name, "name", "Alarms", "Calendar name")

	return cmd
}
