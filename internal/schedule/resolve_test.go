package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alarmboard/internal/model"
)

func mustParse(t *testing.T, text string) []model.DaySchedule {
	t.Helper()
	s, err := Parse(text)
	require.NoError(t, err)
	return s
}

func TestResolveMatchesLocalCalendarDate(t *testing.T) {
	schedules := mustParse(t, "Date,Day,Alarm1\n28-June-2025,Saturday,06:00\n29-June-2025,Sunday,07:00\n")

	got, ok := Resolve(schedules, time.Date(2025, time.June, 29, 3, 0, 0, 0, time.Local))
	require.True(t, ok)
	assert.Equal(t, "29-June-2025", got.RawDate)

	_, ok = Resolve(schedules, time.Date(2025, time.June, 30, 0, 0, 0, 0, time.Local))
	assert.False(t, ok)
}

func TestResolveUsesLocationOfNow(t *testing.T) {
	schedules := mustParse(t, "Date,Day,Alarm1\n29/06/2025,Sunday,07:00\n")
	seoul := time.FixedZone("KST", 9*3600)

	// 2025-06-28 20:00 UTC is already the 29th in Seoul.
	now := time.Date(2025, time.June, 28, 20, 0, 0, 0, time.UTC).In(seoul)
	_, ok := Resolve(schedules, now)
	assert.True(t, ok)

	_, ok = Resolve(schedules, now.UTC())
	assert.False(t, ok)
}

func TestResolveFirstDuplicateWins(t *testing.T) {
	schedules := mustParse(t, "Date,Day,Alarm1\n29-June-2025,first,06:00\n29/06/2025,second,07:00\n")
	got, ok := Resolve(schedules, time.Date(2025, time.June, 29, 12, 0, 0, 0, time.Local))
	require.True(t, ok)
	assert.Equal(t, "first", got.DayName)
}

func TestResolveDateFormatsAgree(t *testing.T) {
	now := time.Date(2025, time.June, 29, 8, 0, 0, 0, time.Local)
	for _, raw := range []string{"29/06/2025", "29-June-2025"} {
		schedules := mustParse(t, "Date,Day,Alarm1\n"+raw+",Sunday,09:00\n")
		got, ok := Resolve(schedules, now)
		require.True(t, ok, raw)
		assert.Equal(t, 2025, got.Date.Year)
		assert.Equal(t, 5, got.Date.MonthIndex())
		assert.Equal(t, 29, got.Date.Day)
	}
}

func TestResolveNeverMatchesUnreadableDate(t *testing.T) {
	schedules := []model.DaySchedule{{RawDate: "bogus", Alarms: []model.AlarmTime{{Hour: 1}}}}
	_, ok := Resolve(schedules, time.Now())
	assert.False(t, ok)
}

func todayWith(clocks ...string) model.DaySchedule {
	ds := model.DaySchedule{Date: model.Date{Year: 2025, Month: time.June, Day: 29}}
	for _, c := range clocks {
		at, err := ParseAlarm(c)
		if err != nil {
			panic(err)
		}
		at.Label = c
		ds.Alarms = append(ds.Alarms, at)
	}
	return ds
}

func TestComputeCountdowns(t *testing.T) {
	today := todayWith("04:00", "10:00", "23:00")
	now := time.Date(2025, time.June, 29, 9, 0, 0, 0, time.Local)

	got := Compute(today, now, 0)
	require.Len(t, got, 3)

	assert.True(t, got[0].Passed)
	assert.False(t, got[0].IsSoonest)
	assert.Equal(t, "Passed", got[0].String())

	assert.False(t, got[1].Passed)
	assert.True(t, got[1].IsSoonest)
	assert.Equal(t, time.Hour, got[1].Remaining)
	assert.Equal(t, "1h 0m 0s", got[1].String())
	assert.Equal(t, time.Date(2025, time.June, 29, 10, 0, 0, 0, time.Local), got[1].Alarm.At)
	assert.Equal(t, "10:00", got[1].Alarm.Label)

	assert.False(t, got[2].IsSoonest)
	assert.Equal(t, "14h 0m 0s", got[2].String())
}

func TestComputeTruncatesBreakdown(t *testing.T) {
	today := todayWith("10:00")
	now := time.Date(2025, time.June, 29, 9, 0, 0, int(500*time.Millisecond), time.Local)

	got := Compute(today, now, 0)
	require.Len(t, got, 1)
	assert.Equal(t, "0h 59m 59s", got[0].String())
	h, m, s := got[0].Breakdown()
	assert.Equal(t, [3]int{0, 59, 59}, [3]int{h, m, s})
}

func TestComputeAlarmAtNowIsPassed(t *testing.T) {
	today := todayWith("09:00", "09:30")
	now := time.Date(2025, time.June, 29, 9, 0, 0, 0, time.Local)

	got := Compute(today, now, 0)
	assert.True(t, got[0].Passed)
	assert.False(t, got[0].IsSoonest)
	assert.True(t, got[1].IsSoonest)
}

func TestComputeAllPassedHasNoSoonest(t *testing.T) {
	today := todayWith("01:00", "02:00")
	now := time.Date(2025, time.June, 29, 23, 0, 0, 0, time.Local)

	got := Compute(today, now, 0)
	_, ok := Soonest(got)
	assert.False(t, ok)
	for _, c := range got {
		assert.True(t, c.Passed)
		h, m, s := c.Breakdown()
		assert.Zero(t, h+m+s)
	}
}

func TestComputeTieGoesToEarlierColumn(t *testing.T) {
	today := todayWith("12:00", "11:00", "11:00")
	now := time.Date(2025, time.June, 29, 10, 0, 0, 0, time.Local)

	got := Compute(today, now, 0)
	assert.False(t, got[0].IsSoonest)
	assert.True(t, got[1].IsSoonest)
	assert.False(t, got[2].IsSoonest)
}

func TestComputeCapsDisplayCount(t *testing.T) {
	today := todayWith("01:00", "02:00", "03:00", "04:00", "05:00", "06:00", "07:00", "08:00")
	now := time.Date(2025, time.June, 29, 0, 0, 0, 0, time.Local)

	assert.Len(t, Compute(today, now, 0), DefaultMaxAlarms)
	assert.Len(t, Compute(today, now, 7), 7)
	assert.Len(t, Compute(today, now, 20), 8)
}

func TestComputeEmptyInputs(t *testing.T) {
	now := time.Date(2025, time.June, 29, 0, 0, 0, 0, time.Local)

	got := Compute(model.DaySchedule{}, now, 0)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	assert.Empty(t, Compute(todayWith(), now, 0))
}

func TestComputeIsIdempotent(t *testing.T) {
	today := todayWith("04:00", "10:00", "23:00")
	before := todayWith("04:00", "10:00", "23:00")
	now := time.Date(2025, time.June, 29, 9, 0, 0, 0, time.Local)

	first := Compute(today, now, 0)
	second := Compute(today, now, 0)
	assert.Equal(t, first, second)
	assert.Equal(t, before, today)
}
