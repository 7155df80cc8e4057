package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"alarmboard/internal/capture"
)

func newSnapshotCommand(ctx context.Context, opts *rootOptions) *cobra.Command {
	var capOpts capture.Options

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save a PNG of a running dashboard using headless Chromium.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if capOpts.URL == "" {
				a, err := loadApp(opts)
				if err != nil {
					return err
				}
				capOpts.URL = "http://" + a.cfg.Listen + "/"
			}
			if err := capture.Snapshot(ctx, capOpts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", capOpts.OutputPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&capOpts.URL, "url", "", "Dashboard URL (default: http://<listen>/ from config)")
	cmd.Flags().StringVarP(&capOpts.OutputPath, "out", "o", "alarms.png", "Output PNG path")
	cmd.Flags().StringVar(&capOpts.Selector, "selector", "", "CSS selector to capture instead of the full page, e.g. #alarms")
	cmd.Flags().IntVar(&capOpts.Width, "width", capture.DefaultWidth, "Viewport width")
	cmd.Flags().IntVar(&capOpts.Height, "height", capture.DefaultHeight, "Viewport height")
	cmd.Flags().DurationVar(&capOpts.Timeout, "timeout", capture.DefaultTimeout, "Give up after this long")

	return cmd
}
