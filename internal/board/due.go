package board

import (
	"time"

	"alarmboard/internal/model"
)

// DueTracker reports alarms that went from pending to passed between two
// observed snapshots, so each alarm fires once. The first observation only
// records state.
type DueTracker struct {
	pending map[dueKey]bool
}

type dueKey struct {
	at    time.Time
	label string
}

// Observe returns the alarms that became due since the previous call.
func (d *DueTracker) Observe(s Snapshot) []model.ResolvedAlarm {
	var due []model.ResolvedAlarm
	next := make(map[dueKey]bool, len(s.Countdowns))

	for _, c := range s.Countdowns {
		k := dueKey{at: c.Alarm.At.UTC(), label: c.Alarm.Label}
		if !c.Passed {
			next[k] = true
			continue
		}
		if d.pending[k] {
			due = append(due, c.Alarm)
		}
	}

	d.pending = next
	return due
}
