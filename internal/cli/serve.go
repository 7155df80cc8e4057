package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"alarmboard/internal/board"
	appLog "alarmboard/internal/log"
	"alarmboard/internal/refresh"
	"alarmboard/internal/source"
	"alarmboard/internal/web"
)

func newServeCommand(ctx context.Context, opts *rootOptions) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web dashboard and the background refresh loop.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(ctx, opts, listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config if set)")

	return cmd
}

func runServe(ctx context.Context, opts *rootOptions, listen string) error {
	a, err := loadApp(opts)
	if err != nil {
		return err
	}
	if listen != "" {
		a.cfg.Listen = listen
	}

	appLog.Info("alarmboard starting", "version", version, "listen", a.cfg.Listen, "source", a.loader.Location())

	clock := a.clock()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return web.NewServer(a.cfg, a.board, clock).Serve(gctx)
	})

	loop := &refresh.Loop{
		Clock:      clock,
		Interval:   a.cfg.TickInterval(),
		OnTick:     dueNotifier(a.board),
		ReloadSpec: a.cfg.Refresh,
		OnReload:   a.store.Reload,
	}
	g.Go(func() error { return loop.Run(gctx) })

	if a.cfg.Watch {
		if fl, ok := a.loader.(*source.FileLoader); ok {
			w := source.NewWatcher(fl.Path(), 0, func() {
				if err := a.store.Reload(gctx); err != nil {
					appLog.Error("reload after file change failed", err, "path", fl.Path())
				}
			})
			g.Go(func() error { return w.Run(gctx) })
		} else {
			appLog.Warn("watch is only supported for file sources; ignoring", "source", a.loader.Location())
		}
	}

	err = g.Wait()
	appLog.Info("alarmboard exiting")
	return err
}

// dueNotifier returns a tick handler that logs every alarm the moment it
// passes.
func dueNotifier(b *board.Board) refresh.TickFunc {
	var due board.DueTracker
	return func(ctx context.Context, now time.Time) {
		for _, alarm := range due.Observe(b.Snapshot(ctx, now)) {
			appLog.Info("alarm due", "label", alarm.Label, "at", alarm.At.Format("15:04"))
		}
	}
}
