package generate

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alarmboard/internal/model"
	"alarmboard/internal/schedule"
)

func TestWriteProducesParseableTemplate(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, Options{
		Start:   model.Date{Year: 2025, Month: time.June, Day: 29},
		Days:    3,
		Alarms:  []string{"05:30", "06:00 Gym"},
		Columns: 4,
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Date,Day,Alarm1,Alarm2,Alarm3,Alarm4", lines[0])
	assert.Equal(t, "29-June-2025,Sunday,05:30,06:00 Gym,,", lines[1])
	assert.Equal(t, "01-July-2025,Tuesday,05:30,06:00 Gym,,", lines[3])

	days, err := schedule.Parse(buf.String())
	require.NoError(t, err)
	require.Len(t, days, 3)
	got, ok := schedule.Resolve(days, time.Date(2025, time.June, 30, 8, 0, 0, 0, time.Local))
	require.True(t, ok)
	assert.Equal(t, "Gym", got.Alarms[1].Label)
}

func TestWriteSlashLayoutAndWeekdays(t *testing.T) {
	wds, err := ParseWeekdays("mon, Wednesday,fri")
	require.NoError(t, err)

	var buf bytes.Buffer
	err = Write(&buf, Options{
		Start:    model.Date{Year: 2025, Month: time.June, Day: 30},
		Days:     7,
		Weekdays: wds,
		Alarms:   []string{"07:00"},
		Layout:   schedule.SlashNumeric,
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"Date,Day,Alarm1",
		"30/06/2025,Monday,07:00",
		"02/07/2025,Wednesday,07:00",
		"04/07/2025,Friday,07:00",
	}, lines)
}

func TestWriteValidates(t *testing.T) {
	var buf bytes.Buffer
	start := model.Date{Year: 2025, Month: time.June, Day: 30}

	assert.Error(t, Write(&buf, Options{Days: 1}))
	assert.Error(t, Write(&buf, Options{Start: start}))
	assert.Error(t, Write(&buf, Options{Start: start, Days: 1, Alarms: []string{"25:00"}}))

	_, err := ParseWeekdays("someday")
	assert.Error(t, err)
}

func TestDatesSpanMonthEnd(t *testing.T) {
	dates, err := Dates(Options{Start: model.Date{Year: 2024, Month: time.February, Day: 28}, Days: 3})
	require.NoError(t, err)
	assert.Equal(t, []model.Date{
		{Year: 2024, Month: time.February, Day: 28},
		{Year: 2024, Month: time.February, Day: 29},
		{Year: 2024, Month: time.March, Day: 1},
	}, dates)
}
