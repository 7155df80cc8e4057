package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"alarmboard/internal/board"
	"alarmboard/internal/config"
	appLog "alarmboard/internal/log"
	"alarmboard/internal/refresh"
	"alarmboard/internal/schedule"
	"alarmboard/internal/source"
)

// app is the wiring shared by every command that reads the schedule.
type app struct {
	cfg    *config.Config
	loader source.Loader
	store  *schedule.Store
	board  *board.Board
}

// loadApp reads the config and builds the loader, store and board. A
// relative file source is resolved against the config file's directory.
func loadApp(opts *rootOptions) (*app, error) {
	path, err := config.ResolvePath(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))

	location := cfg.Source
	if !source.IsRemote(location) && !filepath.IsAbs(location) {
		location = filepath.Join(filepath.Dir(path), location)
	}
	loader, err := source.New(location, afero.NewOsFs(), cfg.CacheDir)
	if err != nil {
		return nil, err
	}

	appLog.Debug("effective config",
		"config_path", path,
		"listen", cfg.Listen,
		"timezone", cfg.Timezone,
		"source", loader.Location(),
		"tick", cfg.Tick,
		"refresh", cfg.Refresh,
		"watch", cfg.Watch,
		"max_alarms", cfg.MaxAlarms,
	)

	store := schedule.NewStore(loader)
	return &app{
		cfg:    cfg,
		loader: loader,
		store:  store,
		board:  board.New(store, board.Options{MaxAlarms: cfg.MaxAlarms, Messages: cfg.Messages}),
	}, nil
}

func (a *app) clock() refresh.Clock {
	return refresh.SystemClock{Location: a.cfg.Location()}
}
