package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	appLog "alarmboard/internal/log"
)

// EnvConfigPath overrides the default config location when set.
const EnvConfigPath = "ALARMBOARD_CONFIG"

// DefaultMessages are the banner lines shown under the alarm list.
var DefaultMessages = []string{
	"Stay focused and keep moving forward!",
	"Don't forget to take breaks and hydrate.",
	"Great things take time. You’ve got this!",
	"Success is the sum of small efforts repeated.",
	"Your next alarm is just around the corner.",
	"Welcome to your custom calendar alarm dashboard!",
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the dashboard.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the dashboard.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone used to decide what "today" is. Empty means
	// the host's local zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// Source is the alarm CSV: a file path or an http(s) URL.
	Source string `yaml:"source" json:"source"`

	// CacheDir keeps the last good copy of a remote source.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// Tick is the dashboard refresh period, e.g. "1s".
	Tick string `yaml:"tick" json:"tick"`

	// Refresh is a cron spec ("*/30 * * * *") for re-fetching the source.
	// Empty keeps the first successful fetch for the life of the process.
	Refresh string `yaml:"refresh" json:"refresh"`

	// Watch reloads a file source whenever it is written.
	Watch bool `yaml:"watch" json:"watch"`

	// MaxAlarms caps the number of alarms shown for a day.
	MaxAlarms int `yaml:"max_alarms" json:"max_alarms"`

	Messages []string `yaml:"messages" json:"messages"`

	LogLevel string `yaml:"log_level" json:"log_level"`

	// BasicAuth, if non-nil, protects every endpoint except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:    "127.0.0.1:8080",
		Timezone:  "",
		Source:    "alarms.csv",
		CacheDir:  defaultCacheDir(),
		Tick:      "1s",
		Refresh:   "",
		Watch:     false,
		MaxAlarms: 6,
		Messages:  append([]string(nil), DefaultMessages...),
		LogLevel:  "info",
		BasicAuth: nil,
	}
}

// Normalize fills in missing or invalid values with defaults.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if strings.TrimSpace(c.Source) == "" {
		c.Source = def.Source
	}
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
	if d, err := time.ParseDuration(c.Tick); err != nil || d < time.Second {
		c.Tick = def.Tick
	}
	if c.MaxAlarms <= 0 {
		c.MaxAlarms = def.MaxAlarms
	}
	if len(c.Messages) == 0 {
		c.Messages = def.Messages
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Timezone != "" {
		if _, err := loadZone(c.Timezone); err != nil {
			c.Timezone = ""
		}
	}
}

// TickInterval returns Tick as a duration; Normalize guarantees it parses.
func (c *Config) TickInterval() time.Duration {
	d, err := time.ParseDuration(c.Tick)
	if err != nil || d < time.Second {
		return time.Second
	}
	return d
}

// Location resolves Timezone, falling back to time.Local. Results are
// cached per name, so a bad zone is reported once.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := loadZone(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

type zoneResult struct {
	loc *time.Location
	err error
}

// zones caches time.LoadLocation by name; it reads tzdata from disk.
var zones sync.Map

func loadZone(name string) (*time.Location, error) {
	if v, ok := zones.Load(name); ok {
		r := v.(zoneResult)
		return r.loc, r.err
	}
	loc, err := time.LoadLocation(name)
	if v, loaded := zones.LoadOrStore(name, zoneResult{loc: loc, err: err}); loaded {
		r := v.(zoneResult)
		return r.loc, r.err
	}
	if err != nil {
		appLog.Warn("unknown timezone; using the local zone", "name", name, "reason", err.Error())
	}
	return loc, err
}

// ResolvePath picks the config file: the explicit flag value, then
// $ALARMBOARD_CONFIG, then <user config dir>/alarmboard/config.yaml.
func ResolvePath(flagValue string) (string, error) {
	if p := strings.TrimSpace(flagValue); p != "" {
		return p, nil
	}
	if p, ok := os.LookupEnv(EnvConfigPath); ok && strings.TrimSpace(p) != "" {
		return strings.TrimSpace(p), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "alarmboard", "config.yaml"), nil
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "alarmboard")
	}
	return "./var/alarmboard-cache"
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written there with
//     0600 permissions and returned.
//   - Otherwise the YAML is decoded and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600 perms.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".alarmboard-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

func (c *Config) Save(path string) error {
	return Save(path, c)
}
