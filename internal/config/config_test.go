package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appLog "alarmboard/internal/log"
)

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "alarms.csv", cfg.Source)
	assert.Equal(t, 6, cfg.MaxAlarms)
	assert.Equal(t, time.Second, cfg.TickInterval())
	assert.Equal(t, DefaultMessages, cfg.Messages)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadNormalizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
source: https://example.com/alarms.csv
tick: 200ms
max_alarms: 7
refresh: "*/30 * * * *"
watch: true
timezone: Asia/Seoul
basic_auth:
  username: admin
  password: secret
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/alarms.csv", cfg.Source)
	assert.Equal(t, "1s", cfg.Tick, "sub-second ticks fall back to the default")
	assert.Equal(t, 7, cfg.MaxAlarms)
	assert.Equal(t, "*/30 * * * *", cfg.Refresh)
	assert.True(t, cfg.Watch)
	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	require.NotNil(t, cfg.BasicAuth)
	assert.Equal(t, "admin", cfg.BasicAuth.Username)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Source = "/srv/alarms.csv"
	cfg.Messages = []string{"hello"}
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/alarms.csv", got.Source)
	assert.Equal(t, []string{"hello"}, got.Messages)
}

func TestSaveValidatesArguments(t *testing.T) {
	assert.Error(t, Save("", DefaultConfig()))
	assert.Error(t, Save(filepath.Join(t.TempDir(), "c.yaml"), nil))
	_, err := Load("")
	assert.Error(t, err)
}

func TestLocation(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, time.Local, cfg.Location())

	cfg.Timezone = "UTC"
	assert.Equal(t, "UTC", cfg.Location().String())

	cfg.Timezone = "Not/AZone"
	assert.Equal(t, time.Local, cfg.Location())
}

func TestResolvePath(t *testing.T) {
	p, err := ResolvePath(" /tmp/explicit.yaml ")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/explicit.yaml", p)

	t.Setenv(EnvConfigPath, "/etc/alarmboard.yaml")
	p, err = ResolvePath("")
	require.NoError(t, err)
	assert.Equal(t, "/etc/alarmboard.yaml", p)
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	appLog.SetOutput(&buf)
	t.Cleanup(func() { appLog.SetOutput(os.Stderr) })
	return &buf
}

func TestNormalizeDropsUnknownTimezoneOnce(t *testing.T) {
	buf := captureLog(t)

	cfg := DefaultConfig()
	cfg.Timezone = "Mars/Olympus_Mons"
	cfg.Normalize()
	assert.Equal(t, "", cfg.Timezone)
	assert.Equal(t, time.Local, cfg.Location())

	again := DefaultConfig()
	again.Timezone = "Mars/Olympus_Mons"
	again.Normalize()
	assert.Equal(t, 1, strings.Count(buf.String(), "unknown timezone"))
}

func TestLocationReportsBadZoneOnce(t *testing.T) {
	buf := captureLog(t)

	cfg := DefaultConfig()
	cfg.Timezone = "Nowhere/Per_Request"
	for i := 0; i < 5; i++ {
		assert.Equal(t, time.Local, cfg.Location())
	}
	assert.Equal(t, 1, strings.Count(buf.String(), "unknown timezone"))

	cfg.Timezone = "Asia/Seoul"
	first := cfg.Location()
	assert.Equal(t, "Asia/Seoul", first.String())
	assert.Same(t, first, cfg.Location())
}
