package model

import (
	"fmt"
	"time"
)

// Date is a calendar date without a time of day. The zero Date is the
// value produced for rows whose date string could not be understood; it
// never equals the date of a real instant.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Valid reports whether d names a real calendar date.
func (d Date) Valid() bool {
	if d.Year <= 0 || d.Month < time.January || d.Month > time.December || d.Day < 1 {
		return false
	}
	// time.Date normalizes out-of-range days (31 June -> 1 July).
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	return t.Day() == d.Day && t.Month() == d.Month
}

// MonthIndex returns the zero-based month (January == 0).
func (d Date) MonthIndex() int {
	return int(d.Month) - 1
}

// At combines d with a time of day in loc.
func (d Date) At(hour, minute int, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hour, minute, 0, 0, loc)
}

func (d Date) String() string {
	if !d.Valid() {
		return "invalid-date"
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// AlarmTime is one alarm column of a schedule row.
type AlarmTime struct {
	Hour   int
	Minute int
	Label  string
}

func (a AlarmTime) Clock() string {
	return fmt.Sprintf("%02d:%02d", a.Hour, a.Minute)
}

// DaySchedule is the parsed form of one CSV data row.
//
// Alarms keeps the original column order and never contains blank cells.
type DaySchedule struct {
	Date    Date
	RawDate string
	// DayName is informational only; matching uses Date.
	DayName string
	Alarms  []AlarmTime
}

// ResolvedAlarm is an alarm time pinned to a concrete instant.
type ResolvedAlarm struct {
	At    time.Time
	Label string
}

// Countdown is the remaining-time view of a ResolvedAlarm relative to a
// reference instant.
type Countdown struct {
	Alarm     ResolvedAlarm
	Remaining time.Duration
	Passed    bool // Remaining <= 0; no breakdown is shown
	IsSoonest bool
}

// Breakdown splits Remaining into whole hours, minutes and seconds,
// truncating each component. Passed countdowns return zeros.
func (c Countdown) Breakdown() (hours, minutes, seconds int) {
	if c.Passed || c.Remaining <= 0 {
		return 0, 0, 0
	}
	hours = int(c.Remaining / time.Hour)
	minutes = int(c.Remaining % time.Hour / time.Minute)
	seconds = int(c.Remaining % time.Minute / time.Second)
	return hours, minutes, seconds
}

// String renders the countdown the way the dashboard shows it.
func (c Countdown) String() string {
	if c.Passed {
		return "Passed"
	}
	h, m, s := c.Breakdown()
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}
