// Package refresh drives the periodic dashboard tick and optional schedule
// re-fetching on a cron scheduler.
package refresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	appLog "alarmboard/internal/log"
)

// Clock supplies "now". Tests substitute a fixed or stepping clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in Location (time.Local when nil).
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// FixedClock always returns T.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// TickFunc handles one refresh tick.
type TickFunc func(ctx context.Context, now time.Time)

// Loop runs a TickFunc every Interval and, when ReloadSpec is set, a reload
// job on that standard cron spec. Both are serialized: a tick never overlaps
// another tick or a reload.
type Loop struct {
	Clock      Clock
	Interval   time.Duration
	OnTick     TickFunc
	ReloadSpec string
	OnReload   func(ctx context.Context) error

	mu    sync.Mutex
	ticks int
}

// Tick runs a single iteration synchronously. Run uses it on every
// scheduler firing; tests call it directly to step the loop.
func (l *Loop) Tick(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ticks++
	if l.OnTick != nil {
		l.OnTick(ctx, l.now())
	}
}

// scheduledTick is the scheduler's entry point. A firing that lands while a
// tick or reload still holds the loop is dropped rather than queued, so a
// slow tick never leads to a burst of stale ones. It reports whether the
// tick ran.
func (l *Loop) scheduledTick(ctx context.Context) bool {
	if !l.mu.TryLock() {
		appLog.Debug("refresh tick skipped; previous run still busy")
		return false
	}
	defer l.mu.Unlock()
	l.ticks++
	if l.OnTick != nil {
		l.OnTick(ctx, l.now())
	}
	return true
}

// Ticks reports how many ticks have completed.
func (l *Loop) Ticks() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ticks
}

func (l *Loop) reload(ctx context.Context) {
	if l.OnReload == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.OnReload(ctx); err != nil {
		appLog.Error("scheduled reload failed", err, "spec", l.ReloadSpec)
	}
}

func (l *Loop) now() time.Time {
	if l.Clock == nil {
		return time.Now()
	}
	return l.Clock.Now()
}

// Run ticks once immediately, then on schedule until ctx is cancelled. It
// returns after in-flight jobs have finished.
func (l *Loop) Run(ctx context.Context) error {
	interval := l.Interval
	if interval < time.Second {
		interval = time.Second
	}

	logger := cronLogger{}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.SkipIfStillRunning(logger)),
	)
	c.Schedule(cron.Every(interval), cron.FuncJob(func() { l.scheduledTick(ctx) }))

	if l.ReloadSpec != "" {
		sched, err := cron.ParseStandard(l.ReloadSpec)
		if err != nil {
			return fmt.Errorf("parse refresh spec %q: %w", l.ReloadSpec, err)
		}
		c.Schedule(sched, cron.FuncJob(func() { l.reload(ctx) }))
	}

	appLog.Info("refresh loop starting", "interval", interval.String(), "reload", l.ReloadSpec)

	l.Tick(ctx)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()

	appLog.Info("refresh loop stopped", "ticks", l.Ticks())
	return nil
}

// cronLogger routes cron's own messages into appLog. Skips and scheduler
// chatter are debug-level; they would fire every second otherwise.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	appLog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	appLog.Error("cron: "+msg, err, keysAndValues...)
}
