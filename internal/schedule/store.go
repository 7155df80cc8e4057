package schedule

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	appLog "alarmboard/internal/log"
	"alarmboard/internal/model"
)

// Loader fetches the raw CSV text of an alarm file.
type Loader interface {
	Load(ctx context.Context) (string, error)
}

// Store holds the parsed schedule for the life of the process.
//
// It starts empty. The first successful load fills it; later calls to
// EnsureLoaded are no-ops. Reload replaces the contents wholesale and leaves
// them untouched when the fetch fails.
type Store struct {
	loader Loader

	// first collapses concurrent EnsureLoaded calls into one fetch.
	first singleflight.Group
	// fetchMu keeps at most one loader.Load in flight.
	fetchMu sync.Mutex

	mu        sync.RWMutex
	schedules []model.DaySchedule
	loaded    bool
	loadedAt  time.Time
}

// NewStore creates an empty store backed by loader.
func NewStore(loader Loader) *Store {
	return &Store{loader: loader}
}

// NewStaticStore creates an already loaded store over fixed schedules.
func NewStaticStore(schedules []model.DaySchedule) *Store {
	return &Store{
		schedules: slices.Clone(schedules),
		loaded:    true,
		loadedAt:  time.Now(),
	}
}

// EnsureLoaded loads the schedule if no load has succeeded yet. Callers
// that arrive while the first fetch is running wait for it and share its
// result.
func (s *Store) EnsureLoaded(ctx context.Context) error {
	if s.Loaded() {
		return nil
	}
	_, err, _ := s.first.Do("load", func() (any, error) {
		if s.Loaded() {
			return nil, nil
		}
		return nil, s.Reload(ctx)
	})
	return err
}

// Reload fetches and parses the source again. A fetch error keeps the
// current contents and is returned. Malformed text counts as a successful
// load of an empty schedule.
func (s *Store) Reload(ctx context.Context) error {
	if s.loader == nil {
		return errors.New("schedule: store has no loader")
	}

	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()

	text, err := s.loader.Load(ctx)
	if err != nil {
		appLog.Error("schedule fetch failed; keeping previous schedule", err)
		return fmt.Errorf("load schedule: %w", err)
	}

	parsed, err := Parse(text)
	if err != nil {
		if !errors.Is(err, ErrMalformedInput) {
			return err
		}
		appLog.Warn("schedule source has no data rows", "bytes", len(text))
	}

	s.mu.Lock()
	s.schedules = parsed
	s.loaded = true
	s.loadedAt = time.Now()
	s.mu.Unlock()

	appLog.Info("schedule loaded", "days", len(parsed))
	return nil
}

// Schedules returns a copy of the cached schedule list.
func (s *Store) Schedules() []model.DaySchedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.schedules)
}

func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}
