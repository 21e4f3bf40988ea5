package server

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/trusteehq/trustee/internal/applog"
	"github.com/trusteehq/trustee/internal/checkpoint"
)

// watchDebounce coalesces rapid writes to the same file into one event.
const watchDebounce = 2 * time.Second

// Watcher monitors the storage root and publishes change events to a hub.
// Layout knowledge is deliberately thin: <root>/<hash>/metadata.json means a
// project changed, <root>/<hash>/sessions/<id>.jsonl means a session changed.
type Watcher struct {
	root    string
	hub     *Hub
	watcher *fsnotify.Watcher
	done    chan struct{}
	mu      sync.Mutex
	log     *applog.Logger

	// OnSessionChange, when set, runs after the debounce for each changed
	// session file. Used to keep the search index fresh.
	OnSessionChange func(hash checkpoint.ProjectHash, sessionID string)
}

// NewWatcher creates a watcher over the storage root.
func NewWatcher(root string, hub *Hub) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		root:    root,
		hub:     hub,
		watcher: fw,
		done:    make(chan struct{}),
		log:     applog.Log,
	}, nil
}

// Start begins watching the storage root recursively. Runs until ctx is
// cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.addRecursive(w.root)
	go w.watchLoop(ctx)
	return nil
}

// Stop stops the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.watcher.Close()
}

// addRecursive walks a directory tree and adds all directories to the watcher.
func (w *Watcher) addRecursive(root string) {
	filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible dirs
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.log.Warn("failed to watch directory", "dir", path, "error", err)
		}
		return nil
	})
	w.log.Info("watching storage root", "root", root)
}

func (w *Watcher) watchLoop(ctx context.Context) {
	timers := make(map[string]*time.Timer)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// A new project or sessions directory appeared: watch it too.
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.addRecursive(event.Name)
					continue
				}
			}

			ev, interesting := w.classify(event.Name)
			if !interesting {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}

			// Debounce: reset the timer for this file.
			w.mu.Lock()
			if timer, ok := timers[event.Name]; ok {
				timer.Stop()
			}
			timers[event.Name] = time.AfterFunc(watchDebounce, func() {
				select {
				case <-ctx.Done():
					return
				case <-w.done:
					return
				default:
				}
				watchEventsTotal.WithLabelValues(ev.Type).Inc()
				w.hub.Publish(ev)
				if ev.Type == "session_changed" && w.OnSessionChange != nil {
					w.OnSessionChange(ev.Hash, ev.SessionID)
				}
			})
			w.mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("watcher error", "error", err)

		case <-w.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// classify maps a changed path onto an event, or reports it uninteresting.
func (w *Watcher) classify(path string) (Event, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return Event{}, false
	}

	parts := strings.Split(rel, string(filepath.Separator))
	switch {
	case len(parts) == 2 && parts[1] == "metadata.json":
		return Event{Type: "project_changed", Hash: checkpoint.ProjectHash(parts[0])}, true
	case len(parts) == 3 && parts[1] == "sessions" && strings.HasSuffix(parts[2], ".jsonl"):
		return Event{
			Type:      "session_changed",
			Hash:      checkpoint.ProjectHash(parts[0]),
			SessionID: strings.TrimSuffix(parts[2], ".jsonl"),
		}, true
	}
	return Event{}, false
}
