package schedule

import (
	"time"

	"alarmboard/internal/model"
)

// DefaultMaxAlarms caps how many of a day's alarms are shown.
const DefaultMaxAlarms = 6

// Resolve returns the first schedule whose date is the calendar date of now
// in now's location. A missing day is reported with ok == false and is not an
// error. Duplicate days are not merged; the first one wins.
func Resolve(schedules []model.DaySchedule, now time.Time) (model.DaySchedule, bool) {
	today := model.DateOf(now)
	for _, s := range schedules {
		if s.Date == today {
			return s, true
		}
	}
	return model.DaySchedule{}, false
}

// Compute builds countdowns for the first limit alarms of today, in column
// order, relative to now. The entry with the smallest strictly positive
// remaining time is flagged IsSoonest; on ties the earlier column wins. An
// alarm due exactly at now counts as passed. A zero DaySchedule yields an
// empty slice. limit <= 0 selects DefaultMaxAlarms.
//
// Compute is pure: equal inputs give equal outputs.
func Compute(today model.DaySchedule, now time.Time, limit int) []model.Countdown {
	if limit <= 0 {
		limit = DefaultMaxAlarms
	}
	alarms := today.Alarms
	if len(alarms) > limit {
		alarms = alarms[:limit]
	}

	out := make([]model.Countdown, 0, len(alarms))
	soonest := -1
	var best time.Duration

	for i, a := range alarms {
		at := today.Date.At(a.Hour, a.Minute, now.Location())
		remaining := at.Sub(now)
		cd := model.Countdown{
			Alarm:     model.ResolvedAlarm{At: at, Label: a.Label},
			Remaining: remaining,
			Passed:    remaining <= 0,
		}
		if !cd.Passed && (soonest < 0 || remaining < best) {
			soonest = i
			best = remaining
		}
		out = append(out, cd)
	}

	if soonest >= 0 {
		out[soonest].IsSoonest = true
	}
	return out
}

// Soonest returns the countdown flagged IsSoonest, if any.
func Soonest(countdowns []model.Countdown) (model.Countdown, bool) {
	for _, c := range countdowns {
		if c.IsSoonest {
			return c, true
		}
	}
	return model.Countdown{}, false
}
