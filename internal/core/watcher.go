package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher observes game mod directories and reports quiesced bursts of
// filesystem activity. Events are debounced per game so a bulk unzip or a
// recursive delete produces one reconciliation instead of hundreds; the
// notify callback runs on the watcher goroutine and should only enqueue
// work.
type Watcher struct {
	log      *zap.Logger
	fw       *fsnotify.Watcher
	debounce time.Duration
	notify   func(gameID string)

	mu      sync.Mutex
	dirs    map[string]string    // watched directory path, by game ID it belongs to
	pending map[string]time.Time // last event time per game yet to be flushed
}

// NewWatcher creates a watcher that calls notify once per game after events
// have stopped for the debounce interval.
func NewWatcher(log *zap.Logger, debounce time.Duration, notify func(gameID string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating filesystem watcher: %w", err)
	}
	return &Watcher{
		log:      log,
		fw:       fw,
		debounce: debounce,
		notify:   notify,
		dirs:     map[string]string{},
		pending:  map[string]time.Time{},
	}, nil
}

// WatchGame adds a directory to the watch set on behalf of a game. Watching
// the same directory again is a no-op.
func (w *Watcher) WatchGame(gameID, dir string) error {
	w.mu.Lock()
	_, already := w.dirs[dir]
	if !already {
		w.dirs[dir] = gameID
	}
	w.mu.Unlock()
	if already {
		return nil
	}
	if err := w.fw.Add(dir); err != nil {
		w.mu.Lock()
		delete(w.dirs, dir)
		w.mu.Unlock()
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.log.Debug("watching mods directory", zap.String("game", gameID), zap.String("dir", dir))
	return nil
}

// UnwatchGame removes every watched directory registered for the game.
func (w *Watcher) UnwatchGame(gameID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for dir, id := range w.dirs {
		if id != gameID {
			continue
		}
		if err := w.fw.Remove(dir); err != nil {
			w.log.Debug("removing watch", zap.String("dir", dir), zap.Error(err))
		}
		delete(w.dirs, dir)
	}
}

// Run processes events until the context is canceled. It owns the debounce
// clock; callers run it on its own goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	tick := time.NewTicker(w.debounce / 2)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			w.record(ev)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("filesystem watcher error", zap.Error(err))
		case now := <-tick.C:
			for _, gameID := range w.flush(now) {
				w.notify(gameID)
			}
		}
	}
}

// Close stops the underlying watcher and unblocks Run.
func (w *Watcher) Close() error {
	return w.fw.Close()
}

func (w *Watcher) record(ev fsnotify.Event) {
	gameID, ok := w.gameFor(ev.Name)
	if !ok {
		return
	}
	w.mu.Lock()
	w.pending[gameID] = time.Now()
	w.mu.Unlock()
	w.log.Debug("filesystem event", zap.String("game", gameID), zap.String("op", ev.Op.String()), zap.String("path", ev.Name))
}

// flush returns the games whose last event is older than the debounce
// interval and clears them from the pending set.
func (w *Watcher) flush(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var due []string
	for gameID, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			due = append(due, gameID)
			delete(w.pending, gameID)
		}
	}
	return due
}

func (w *Watcher) gameFor(path string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for dir, gameID := range w.dirs {
		if path == dir || isUnder(path, dir) {
			return gameID, true
		}
	}
	return "", false
}

func isUnder(path, dir string) bool {
	return len(path) > len(dir) && path[:len(dir)] == dir && path[len(dir)] == '/'
}
