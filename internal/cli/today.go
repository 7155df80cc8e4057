package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"alarmboard/internal/board"
)

func newTodayCommand(ctx context.Context, opts *rootOptions) *cobra.Command {
	var atFlag string

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Print today's alarms with their countdowns.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts)
			if err != nil {
				return err
			}

			now, err := resolveNow(atFlag, a.cfg.Location(), a.clock().Now())
			if err != nil {
				return err
			}

			printSnapshot(cmd, a.board.Snapshot(ctx, now))
			return nil
		},
	}

	cmd.Flags().StringVar(&atFlag, "at", "", `Reference time: RFC3339 or "YYYY-MM-DD HH:MM" (default: now)`)

	return cmd
}

// resolveNow parses an --at value in loc, or returns fallback when empty.
func resolveNow(at string, loc *time.Location, fallback time.Time) (time.Time, error) {
	if at == "" {
		return fallback, nil
	}
	if t, err := time.Parse(time.RFC3339, at); err == nil {
		return t.In(loc), nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", at, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse --at %q: %w", at, err)
	}
	return t, nil
}

func printSnapshot(cmd *cobra.Command, snap board.Snapshot) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", snap.Now.Format("Monday 2006-01-02 15:04:05"))
	if snap.Message != "" {
		fmt.Fprintf(out, "%s\n", snap.Message)
	}
	fmt.Fprintln(out)

	if snap.Empty() {
		fmt.Fprintln(out, board.NoAlarmsMessage)
		return
	}
	for _, c := range snap.Countdowns {
		marker := " "
		if c.IsSoonest {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s  %-20s %s\n", marker, c.Alarm.At.Format("15:04"), c.Alarm.Label, c.String())
	}
}
