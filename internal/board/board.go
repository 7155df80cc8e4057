// Package board assembles what every dashboard surface shows on one tick:
// today's schedule, its countdowns and the banner message.
package board

import (
	"context"
	"math/rand/v2"
	"time"

	"alarmboard/internal/model"
	"alarmboard/internal/schedule"
)

// NoAlarmsMessage is the single fallback text shown when there is nothing to list.
const NoAlarmsMessage = "No alarms scheduled for today."

// Snapshot is the state of the board at one instant.
type Snapshot struct {
	Now time.Time
	// Loaded is false until the schedule source has been read once.
	Loaded bool
	// Found reports whether a row exists for today, even one with no alarms.
	Found      bool
	Today      model.DaySchedule
	Countdowns []model.Countdown
	Message    string
}

// Empty reports whether the fallback message should be shown.
func (s Snapshot) Empty() bool { return len(s.Countdowns) == 0 }

// Next returns the soonest pending alarm.
func (s Snapshot) Next() (model.Countdown, bool) {
	return schedule.Soonest(s.Countdowns)
}

// Options configure a Board.
type Options struct {
	// MaxAlarms caps rows per day; <= 0 uses schedule.DefaultMaxAlarms.
	MaxAlarms int
	// Messages is the banner pool; one is picked when the board is created.
	Messages []string
	// Pick chooses an index in [0, n). Defaults to math/rand.
	Pick func(n int) int
}

// Board reads a schedule store and evaluates it against a given instant.
type Board struct {
	store     *schedule.Store
	maxAlarms int
	message   string
}

func New(store *schedule.Store, opts Options) *Board {
	b := &Board{store: store, maxAlarms: opts.MaxAlarms}
	if len(opts.Messages) > 0 {
		pick := opts.Pick
		if pick == nil {
			pick = rand.IntN
		}
		b.message = opts.Messages[pick(len(opts.Messages))]
	}
	return b
}

func (b *Board) Store() *schedule.Store { return b.store }

func (b *Board) Message() string { return b.message }

// Snapshot makes sure the store has been loaded (retrying a failed first
// fetch), then resolves today and computes the countdowns for now. Fetch
// failures leave an empty board.
func (b *Board) Snapshot(ctx context.Context, now time.Time) Snapshot {
	// Reload logs fetch failures; an unloaded store just yields an empty board.
	_ = b.store.EnsureLoaded(ctx)

	today, found := schedule.Resolve(b.store.Schedules(), now)
	return Snapshot{
		Now:        now,
		Loaded:     b.store.Loaded(),
		Found:      found,
		Today:      today,
		Countdowns: schedule.Compute(today, now, b.maxAlarms),
		Message:    b.message,
	}
}
