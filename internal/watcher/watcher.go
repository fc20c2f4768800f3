// Package watcher watches the example-maps directory for changes and
// emits debounced events so the extraction pipeline can fold updated
// documents into the rule set incrementally.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventOp represents the type of file system operation.
type EventOp int

const (
	Create EventOp = iota
	Write
	Remove
	Rename
)

// String returns the string representation of EventOp.
func (op EventOp) String() string {
	switch op {
	case Create:
		return "Create"
	case Write:
		return "Write"
	case Remove:
		return "Remove"
	case Rename:
		return "Rename"
	default:
		return "Unknown"
	}
}

// Event represents a file system change event.
type Event struct {
	Path string
	Op   EventOp
	Time time.Time
}

// Config holds configuration for the file system watcher.
type Config struct {
	// Paths are the directory roots to watch recursively.
	Paths []string
	// Extensions limits events to matching file extensions (e.g. ".tmx").
	// Empty means all files.
	Extensions []string
	// ExcludePatterns are glob patterns (matched against the base name)
	// to ignore.
	ExcludePatterns []string
}

// Watcher watches map directories for changes and emits debounced events.
type Watcher struct {
	cfg    Config
	exts   map[string]bool
	fsw    *fsnotify.Watcher
	mu     sync.Mutex
	closed bool
}

// New creates a new file system watcher with the given configuration.
func New(cfg Config) *Watcher {
	exts := make(map[string]bool, len(cfg.Extensions))
	for _, e := range cfg.Extensions {
		exts[e] = true
	}
	return &Watcher{cfg: cfg, exts: exts}
}

// Start begins watching configured paths and returns a channel of
// debounced events. It blocks only during setup; the channel closes when
// the context is cancelled.
func (w *Watcher) Start(ctx context.Context) (<-chan Event, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.fsw = fsw
	w.mu.Unlock()

	for _, root := range w.cfg.Paths {
		if err := w.addRecursive(root); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	out := make(chan Event, 100)
	go w.eventLoop(ctx, fsw, out)
	return out, nil
}

// Close shuts down the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}

// ignored filters out non-map files and excluded names.
func (w *Watcher) ignored(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.cfg.ExcludePatterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	if len(w.exts) > 0 {
		return !w.exts[filepath.Ext(path)]
	}
	return false
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if !info.IsDir() {
			return nil
		}
		return w.fsw.Add(path)
	})
}

const debounceWindow = 500 * time.Millisecond

func (w *Watcher) eventLoop(ctx context.Context, fsw *fsnotify.Watcher, out chan<- Event) {
	defer close(out)

	// Debounce state: map from path to pending event and timer.
	type pending struct {
		event Event
		timer *time.Timer
	}
	pendingEvents := make(map[string]*pending)
	var mu sync.Mutex

	emit := func(evt Event) {
		select {
		case out <- evt:
		case <-ctx.Done():
		}
	}

	schedule := func(path string, evt Event) {
		mu.Lock()
		defer mu.Unlock()
		if p, exists := pendingEvents[path]; exists {
			p.timer.Stop()
			p.event = evt
		}
		p := &pending{event: evt}
		p.timer = time.AfterFunc(debounceWindow, func() {
			mu.Lock()
			e := pendingEvents[path]
			delete(pendingEvents, path)
			mu.Unlock()
			if e != nil {
				emit(e.event)
			}
		})
		pendingEvents[path] = p
	}

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			for _, p := range pendingEvents {
				p.timer.Stop()
			}
			mu.Unlock()
			return

		case fsEvent, ok := <-fsw.Events:
			if !ok {
				return
			}

			// New directories need watching before their files show up.
			if fsEvent.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(fsEvent.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(fsEvent.Name)
					continue
				}
			}

			if w.ignored(fsEvent.Name) {
				continue
			}

			op, valid := convertOp(fsEvent.Op)
			if !valid {
				continue
			}

			schedule(fsEvent.Name, Event{
				Path: fsEvent.Name,
				Op:   op,
				Time: time.Now(),
			})

		case _, ok := <-fsw.Errors:
			if !ok {
				return
			}
			// fsnotify errors are transient on the platforms we target;
			// watching continues.
		}
	}
}

// convertOp maps an fsnotify op to an EventOp.
func convertOp(op fsnotify.Op) (EventOp, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return Create, true
	case op.Has(fsnotify.Write):
		return Write, true
	case op.Has(fsnotify.Remove):
		return Remove, true
	case op.Has(fsnotify.Rename):
		return Rename, true
	default:
		return 0, false
	}
}
