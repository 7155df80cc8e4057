package source

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	appLog "alarmboard/internal/log"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher calls onChange after the watched file is written, created or
// renamed into place. Bursts of events (editors often write, chmod and
// rename in a row) collapse into one call once the file has been quiet for
// the debounce period.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func()
}

// NewWatcher watches path. debounce <= 0 selects 500ms.
func NewWatcher(path string, debounce time.Duration, onChange func()) *Watcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{path: path, debounce: debounce, onChange: onChange}
}

// Run blocks until ctx is cancelled. The parent directory is watched rather
// than the file so that atomic replace-by-rename is noticed.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	target := filepath.Clean(w.path)
	if err := fw.Add(filepath.Dir(target)); err != nil {
		return err
	}
	appLog.Info("watching schedule file", "path", target)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			appLog.Debug("schedule file event", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			appLog.Error("schedule watcher error", err, "path", target)

		case <-timer.C:
			w.onChange()
		}
	}
}
