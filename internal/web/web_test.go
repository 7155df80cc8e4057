package web

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alarmboard/internal/board"
	"alarmboard/internal/config"
	appLog "alarmboard/internal/log"
	"alarmboard/internal/refresh"
	"alarmboard/internal/schedule"
)

const fixture = `Date,Day,Wake,Alarm2,Alarm3
29-June-2025,Sunday,04:00,10:00,23:00
30/06/2025,Monday,,,
`

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	days, err := schedule.Parse(fixture)
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	if mutate != nil {
		mutate(cfg)
	}
	b := board.New(schedule.NewStaticStore(days), board.Options{Messages: []string{"Keep going"}})
	clock := refresh.FixedClock{T: time.Date(2025, time.June, 29, 9, 0, 0, 0, time.UTC)}
	return NewServer(cfg, b, clock)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(t, nil).Handler(), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestAlarmsUsesServerClock(t *testing.T) {
	rec := get(t, newTestServer(t, nil).Handler(), "/api/alarms")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var resp alarmsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Loaded)
	assert.True(t, resp.Found)
	assert.Equal(t, "2025-06-29", resp.Date)
	assert.Equal(t, "Keep going", resp.Message)
	assert.Equal(t, int64(1000), resp.TickMillis)
	assert.Empty(t, resp.EmptyMessage)

	require.Len(t, resp.Alarms, 3)
	assert.Equal(t, "Wake", resp.Alarms[0].Label)
	assert.True(t, resp.Alarms[0].Passed)
	assert.Equal(t, "Passed", resp.Alarms[0].Countdown)

	assert.Equal(t, "10:00", resp.Alarms[1].Time)
	assert.True(t, resp.Alarms[1].Soonest)
	assert.Equal(t, int64(3600), resp.Alarms[1].RemainingSeconds)
	assert.Equal(t, "1h 0m 0s", resp.Alarms[1].Countdown)

	assert.False(t, resp.Alarms[2].Soonest)
	assert.Equal(t, "14h 0m 0s", resp.Alarms[2].Countdown)
}

func TestAlarmsAtOverride(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := get(t, h, "/api/alarms?at=2025-06-30T08:00:00Z")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp alarmsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Found)
	assert.Empty(t, resp.Alarms)
	assert.Equal(t, board.NoAlarmsMessage, resp.EmptyMessage)

	rec = get(t, h, "/api/alarms?at=2025-07-01T08:00:00Z")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Found)
	assert.Equal(t, board.NoAlarmsMessage, resp.EmptyMessage)

	rec = get(t, h, "/api/alarms?at=tomorrow")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid at parameter")
}

func TestSchedule(t *testing.T) {
	rec := get(t, newTestServer(t, nil).Handler(), "/api/schedule")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp scheduleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Loaded)
	require.Len(t, resp.Days, 2)
	assert.Equal(t, "2025-06-29", resp.Days[0].Date)
	assert.Equal(t, "29-June-2025", resp.Days[0].RawDate)
	assert.Len(t, resp.Days[0].Alarms, 3)
	assert.Equal(t, "30/06/2025", resp.Days[1].RawDate)
	assert.Empty(t, resp.Days[1].Alarms)
}

func TestICSExport(t *testing.T) {
	rec := get(t, newTestServer(t, nil).Handler(), "/api/alarms.ics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/calendar")

	cal, err := ical.ParseCalendar(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	assert.Len(t, cal.Events(), 3)
}

func TestStaticIndexAndAPIFallthrough(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="alarms"`)

	rec = get(t, h, "/api/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBasicAuth(t *testing.T) {
	h := newTestServer(t, func(c *config.Config) {
		c.BasicAuth = &config.BasicAuthConfig{Username: "admin", Password: "secret"}
	}).Handler()

	assert.Equal(t, http.StatusOK, get(t, h, "/health").Code)

	rec := get(t, h, "/api/alarms")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")

	req := httptest.NewRequest(http.MethodGet, "/api/alarms", nil)
	req.SetBasicAuth("admin", "secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/alarms", nil)
	req.SetBasicAuth("admin", "wrong")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSecureCompare(t *testing.T) {
	assert.True(t, secureCompare("abc", "abc"))
	assert.False(t, secureCompare("abc", "abd"))
	assert.False(t, secureCompare("abc", "ab"))
}

type downLoader struct{}

func (downLoader) Load(context.Context) (string, error) {
	return "", assert.AnError
}

func TestEndpointsSurviveFetchFailure(t *testing.T) {
	var buf bytes.Buffer
	appLog.SetOutput(&buf)
	t.Cleanup(func() { appLog.SetOutput(os.Stderr) })

	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	b := board.New(schedule.NewStore(downLoader{}), board.Options{})
	h := NewServer(cfg, b, refresh.FixedClock{T: time.Date(2025, time.June, 29, 9, 0, 0, 0, time.UTC)}).Handler()

	rec := get(t, h, "/api/schedule")
	require.Equal(t, http.StatusOK, rec.Code)
	var sched scheduleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sched))
	assert.False(t, sched.Loaded)
	assert.Empty(t, sched.Days)

	rec = get(t, h, "/api/alarms")
	require.Equal(t, http.StatusOK, rec.Code)
	var alarms alarmsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alarms))
	assert.False(t, alarms.Loaded)
	assert.Equal(t, board.NoAlarmsMessage, alarms.EmptyMessage)

	rec = get(t, h, "/api/alarms.ics")
	require.Equal(t, http.StatusOK, rec.Code)
	cal, err := ical.ParseCalendar(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	assert.Empty(t, cal.Events())

	assert.Equal(t, 3, strings.Count(buf.String(), "schedule fetch failed"))
}
