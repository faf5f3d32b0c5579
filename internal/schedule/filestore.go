package schedule

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/alexanderramin/focussync/internal/domain"
	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 500 * time.Millisecond

// FileStore is a Source backed by a schedule file that is reloaded when it
// changes on disk. A file that fails to load leaves the last good
// configuration in place.
type FileStore struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger

	mu       sync.RWMutex
	current  *File
	onReload func(*File)
}

type FileStoreConfig struct {
	Debounce time.Duration
	Logger   *slog.Logger
	// OnReload is called after each successful reload.
	OnReload func(*File)
}

// NewFileStore loads path. A missing file means no schedule; any other load
// error is returned.
func NewFileStore(path string, cfg FileStoreConfig) (*FileStore, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving schedule path: %w", err)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	s := &FileStore{path: abs, debounce: cfg.Debounce, logger: cfg.Logger, onReload: cfg.OnReload}
	if err := s.Reload(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) ActiveSchedule() (domain.Schedule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.ActiveSchedule()
}

func (s *FileStore) Profile(name string) (*domain.BlockingProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Profile(name)
}

// Reload reads the file again.
func (s *FileStore) Reload() error {
	f, err := LoadFile(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.current = f
	s.mu.Unlock()

	active := "(none)"
	if sched, ok := f.ActiveSchedule(); ok {
		active = sched.Name
	}
	s.logger.Info("schedule loaded", "path", s.path, "active", active, "schedules", len(f.Schedules))
	if s.onReload != nil {
		s.onReload(f)
	}
	return nil
}

// Watch reloads the file after changes settle until ctx is cancelled. The
// parent directory is watched so editors that replace the file are seen.
func (s *FileStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching schedule directory %s: %w", dir, err)
	}
	s.logger.Info("watching schedule file", "path", s.path)

	name := filepath.Base(s.path)
	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Has(fsnotify.Remove) {
				s.logger.Warn("schedule file removed, keeping last configuration", "path", event.Name)
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				timer.Reset(s.debounce)
			}
			pending = timer.C
		case <-pending:
			pending = nil
			if err := s.Reload(); err != nil {
				s.logger.Error("reloading schedule, keeping last configuration", "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("schedule watcher error", "error", err)
		}
	}
}
