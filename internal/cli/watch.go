package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"alarmboard/internal/board"
	"alarmboard/internal/refresh"
	"alarmboard/internal/tui"
)

func newWatchCommand(ctx context.Context, opts *rootOptions) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show a live countdown in the terminal.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts)
			if err != nil {
				return err
			}

			loop := &refresh.Loop{
				Clock:      a.clock(),
				Interval:   a.cfg.TickInterval(),
				ReloadSpec: a.cfg.Refresh,
				OnReload:   a.store.Reload,
			}

			if plain {
				loop.OnTick = func(ctx context.Context, now time.Time) {
					fmt.Fprintln(cmd.OutOrStdout(), statusLine(a.board.Snapshot(ctx, now)))
				}
				return loop.Run(ctx)
			}

			// The loop only drives reloads here; bubbletea owns the ticking.
			loopCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			done := make(chan error, 1)
			go func() { done <- loop.Run(loopCtx) }()

			err = tui.Run(ctx, a.board, a.clock(), a.cfg.TickInterval())
			cancel()
			if loopErr := <-done; err == nil {
				err = loopErr
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Print one status line per tick instead of the full-screen view")

	return cmd
}

// statusLine summarizes a snapshot on one line for --plain output.
func statusLine(snap board.Snapshot) string {
	clock := snap.Now.Format("15:04:05")
	if snap.Empty() {
		return clock + "  " + board.NoAlarmsMessage
	}
	next, ok := snap.Next()
	if !ok {
		return fmt.Sprintf("%s  all %d alarms passed", clock, len(snap.Countdowns))
	}
	return fmt.Sprintf("%s  next: %s at %s in %s", clock, next.Alarm.Label, next.Alarm.At.Format("15:04"), next.String())
}
