package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	appLog "alarmboard/internal/log"
	"alarmboard/internal/model"
)

// Column positions inside a data row.
const (
	colDate    = 0
	colDay     = 1
	firstAlarm = 2
)

const clockLayout = "15:04"

// Table is a CSV payload split into its header and data rows. Cells are trimmed.
type Table struct {
	Header []string
	Rows   [][]string
	// Lines holds the 1-based source line of each row, for diagnostics.
	Lines []int
}

// Split breaks text into a header and the non-empty data rows after it.
// Commas inside fields are not escapable.
func Split(text string) (Table, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Table{}, ErrMalformedInput
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return Table{}, ErrMalformedInput
	}

	t := Table{Header: splitCells(lines[0])}
	for i, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		t.Rows = append(t.Rows, splitCells(line))
		t.Lines = append(t.Lines, i+2)
	}
	return t, nil
}

func splitCells(line string) []string {
	cells := strings.Split(line, ",")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

// Parse turns CSV text into one DaySchedule per non-empty data row.
//
// Text without a data row yields an empty slice together with
// ErrMalformedInput; callers show "no alarms" rather than failing. Rows with
// an unreadable date are kept with the zero Date so that they never match.
func Parse(text string) ([]model.DaySchedule, error) {
	t, err := Split(text)
	if err != nil {
		return []model.DaySchedule{}, err
	}
	return ParseTable(t), nil
}

// ParseTable converts already split rows.
func ParseTable(t Table) []model.DaySchedule {
	out := make([]model.DaySchedule, 0, len(t.Rows))
	for i, cells := range t.Rows {
		line := i + 2
		if i < len(t.Lines) {
			line = t.Lines[i]
		}
		out = append(out, parseRow(t.Header, cells, line))
	}
	appLog.Debug("schedule parse completed", "rows", len(out))
	return out
}

func parseRow(header, cells []string, line int) model.DaySchedule {
	var ds model.DaySchedule

	ds.RawDate = cell(cells, colDate)
	ds.DayName = cell(cells, colDay)

	d, _, err := ParseDate(ds.RawDate)
	if err != nil {
		appLog.Warn("schedule row date unreadable; row will never match", "line", line, "date", ds.RawDate, "reason", err.Error())
	}
	ds.Date = d

	for col := firstAlarm; col < len(cells); col++ {
		raw := cells[col]
		if raw == "" {
			continue
		}
		at, err := ParseAlarm(raw)
		if err != nil {
			appLog.Warn("schedule alarm cell skipped", "line", line, "column", col+1, "value", raw)
			continue
		}
		if at.Label == "" {
			at.Label = columnLabel(header, col)
		}
		ds.Alarms = append(ds.Alarms, at)
	}

	return ds
}

// ParseAlarm reads an alarm cell: a 24-hour "HH:MM" time optionally
// followed by a free-text label ("05:30 Wake up").
func ParseAlarm(raw string) (model.AlarmTime, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return model.AlarmTime{}, ErrInvalidAlarmTime
	}
	t, err := time.Parse(clockLayout, fields[0])
	if err != nil {
		return model.AlarmTime{}, fmt.Errorf("%w: %q", ErrInvalidAlarmTime, raw)
	}
	return model.AlarmTime{
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Label:  strings.Join(fields[1:], " "),
	}, nil
}

func columnLabel(header []string, col int) string {
	if h := cell(header, col); h != "" {
		return h
	}
	return "Alarm " + strconv.Itoa(col-firstAlarm+1)
}

func cell(cells []string, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}
