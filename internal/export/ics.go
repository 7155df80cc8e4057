// Package export renders alarm schedules as an iCalendar feed so that
// phones and calendar apps can subscribe to the same alarms.
package export

import (
	"strconv"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"alarmboard/internal/model"
)

const productID = "-//alarmboard//alarm schedule//EN"

// uidNamespace scopes event UIDs so the same alarm always gets the same UID
// and calendar clients update events instead of duplicating them.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("alarmboard"))

// Options control the generated calendar.
type Options struct {
	Name string
	// Location interprets the wall-clock alarm times. nil means time.Local.
	Location *time.Location
	// Duration of each event; alarms are points in time, so default is 1 minute.
	Duration time.Duration
	// Stamp is written as DTSTAMP; zero uses the current time.
	Stamp time.Time
}

// Calendar builds one VEVENT with a DISPLAY VALARM per alarm of every day
// whose date parsed. Days with an unreadable date are skipped.
func Calendar(days []model.DaySchedule, opts Options) *ical.Calendar {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	dur := opts.Duration
	if dur <= 0 {
		dur = time.Minute
	}
	stamp := opts.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}
	cal.SetXWRTimezone(loc.String())

	for _, day := range days {
		if !day.Date.Valid() {
			continue
		}
		for i, a := range day.Alarms {
			start := day.Date.At(a.Hour, a.Minute, loc)

			ev := cal.AddEvent(EventUID(day.Date, i, a))
			ev.SetDtStampTime(stamp)
			ev.SetStartAt(start)
			ev.SetEndAt(start.Add(dur))
			ev.SetSummary(a.Label)
			if day.DayName != "" {
				ev.SetDescription(day.DayName + " " + a.Clock())
			}

			alarm := ev.AddAlarm()
			alarm.SetAction(ical.ActionDisplay)
			alarm.SetTrigger("-PT0M")
			alarm.SetProperty(ical.ComponentPropertyDescription, a.Label)
		}
	}
	return cal
}

// Serialize renders the feed as text.
func Serialize(days []model.DaySchedule, opts Options) string {
	return Calendar(days, opts).Serialize()
}

// EventUID derives a stable UID from the date, column and time of an alarm.
func EventUID(d model.Date, column int, a model.AlarmTime) string {
	name := d.String() + "/" + strconv.Itoa(column) + "/" + a.Clock()
	return uuid.NewSHA1(uidNamespace, []byte(name)).String() + "@alarmboard"
}
