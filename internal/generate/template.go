// Package generate writes alarm CSV templates: one row per day over a date
// range, pre-filled with the same alarm times.
package generate

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"alarmboard/internal/model"
	"alarmboard/internal/schedule"
)

// Options describe the template to produce.
type Options struct {
	Start model.Date
	Days  int
	// Weekdays limits rows to these days; empty means every day.
	Weekdays []time.Weekday
	// Alarms are copied verbatim into every row ("05:30", "06:00 Gym").
	Alarms []string
	// Columns is the number of alarm columns; at least len(Alarms).
	Columns int
	Layout  schedule.DateLayout
}

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// Dates expands the options into the list of row dates with a DAILY rule.
func Dates(opts Options) ([]model.Date, error) {
	if !opts.Start.Valid() {
		return nil, errors.New("generate: start date is invalid")
	}
	if opts.Days <= 0 {
		return nil, errors.New("generate: days must be positive")
	}

	start := time.Date(opts.Start.Year, opts.Start.Month, opts.Start.Day, 0, 0, 0, 0, time.UTC)
	ro := rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: start,
		Until:   start.AddDate(0, 0, opts.Days-1),
	}
	for _, wd := range opts.Weekdays {
		ro.Byweekday = append(ro.Byweekday, rruleWeekdays[wd])
	}

	rule, err := rrule.NewRRule(ro)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	occ := rule.All()
	out := make([]model.Date, 0, len(occ))
	for _, t := range occ {
		out = append(out, model.DateOf(t))
	}
	return out, nil
}

// Write emits the header and one row per date.
func Write(w io.Writer, opts Options) error {
	dates, err := Dates(opts)
	if err != nil {
		return err
	}
	for _, a := range opts.Alarms {
		if _, err := schedule.ParseAlarm(a); err != nil {
			return err
		}
		if strings.Contains(a, ",") {
			return fmt.Errorf("generate: alarm %q contains a comma", a)
		}
	}

	cols := opts.Columns
	if cols < len(opts.Alarms) {
		cols = len(opts.Alarms)
	}
	if cols == 0 {
		cols = 1
	}
	layout := opts.Layout
	if layout == 0 {
		layout = schedule.DashMonthName
	}

	header := []string{"Date", "Day"}
	for i := 1; i <= cols; i++ {
		header = append(header, "Alarm"+strconv.Itoa(i))
	}
	if _, err := fmt.Fprintln(w, strings.Join(header, ",")); err != nil {
		return err
	}

	for _, d := range dates {
		row := make([]string, 0, cols+2)
		row = append(row, layout.Format(d), weekday(d).String())
		for i := 0; i < cols; i++ {
			if i < len(opts.Alarms) {
				row = append(row, opts.Alarms[i])
			} else {
				row = append(row, "")
			}
		}
		if _, err := fmt.Fprintln(w, strings.Join(row, ",")); err != nil {
			return err
		}
	}
	return nil
}

// ParseWeekdays reads a comma separated list such as "mon,wed,fri".
func ParseWeekdays(s string) ([]time.Weekday, error) {
	var out []time.Weekday
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		found := false
		for wd := time.Sunday; wd <= time.Saturday; wd++ {
			name := strings.ToLower(wd.String())
			if part == name || part == name[:3] {
				out = append(out, wd)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("generate: unknown weekday %q", part)
		}
	}
	return out, nil
}

func weekday(d model.Date) time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC).Weekday()
}
