package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceWindow is how long the watcher waits for writes to settle.
const DebounceWindow = 250 * time.Millisecond

// Watcher reports changes to the configuration files. It runs as a
// supervised service.
type Watcher struct {
	logger *slog.Logger
	notify func(reason string)

	mu    sync.Mutex
	files []string
}

// NewWatcher watches files (the main config and its includes) and calls
// notify once writes have been quiet for DebounceWindow.
func NewWatcher(files []string, notify func(reason string), logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	w := &Watcher{logger: logger, notify: notify}
	w.SetFiles(files)
	return w
}

func (w *Watcher) String() string { return "config-watcher" }

// SetFiles replaces the watched set. It takes effect when Serve next starts;
// callers restart the service after a reload changes the include set.
func (w *Watcher) SetFiles(files []string) {
	clean := make([]string, 0, len(files))
	for _, f := range files {
		if abs, err := filepath.Abs(f); err == nil {
			clean = append(clean, filepath.Clean(abs))
		}
	}
	w.mu.Lock()
	w.files = clean
	w.mu.Unlock()
}

// Serve watches until ctx ends.
func (w *Watcher) Serve(ctx context.Context) error {
	w.mu.Lock()
	files := append([]string(nil), w.files...)
	w.mu.Unlock()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	defer watcher.Close()

	targets := make(map[string]struct{}, len(files))
	dirs := make(map[string]struct{})
	for _, f := range files {
		targets[f] = struct{}{}
		dirs[filepath.Dir(f)] = struct{}{}
	}
	// Editors replace files by rename, so the directories are watched.
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			w.logger.Debug("unable to watch config dir", "dir", dir, "error", err)
		}
	}

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
		changed string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("config watcher closed")
			}
			name := filepath.Clean(event.Name)
			if _, ok := targets[name]; !ok {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			changed = name
			if timer == nil {
				timer = time.NewTimer(DebounceWindow)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					<-timerCh
				}
				timer.Reset(DebounceWindow)
			}
		case <-timerCh:
			timer = nil
			timerCh = nil
			w.logger.Debug("config file changed", "file", changed)
			w.notify("config file updated: " + changed)
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("config watcher closed")
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}
