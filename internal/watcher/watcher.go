// Package watcher implements hot reload for component descriptors.
//
// It uses fsnotify to watch the category directories under a components
// root and generates reload events when descriptor files are created,
// modified, or deleted. Rapid successive changes to the same file are
// debounced into a single event.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"loom/internal/component"
	"loom/pkg/logging"
)

// Op classifies a descriptor change.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// State describes what the watcher is currently doing.
type State string

const (
	StateStopped   State = "stopped"
	StateWatching  State = "watching"
	StateReloading State = "reloading"
)

// Event is one debounced descriptor change.
type Event struct {
	Path      string
	Category  component.Category
	Op        Op
	Timestamp time.Time
}

// DefaultDebounce is how long the watcher waits for additional changes to
// the same file before emitting an event. Editors routinely produce bursts
// of write events for a single save.
const DefaultDebounce = 250 * time.Millisecond

// Reloader applies one descriptor change. The loader implements this.
type Reloader interface {
	Reload(path string) error
}

// Watcher watches the category directories under a components root and
// drives a Reloader. Events are processed by a single consumer goroutine,
// so reloads for the same path never race each other.
type Watcher struct {
	mu sync.RWMutex

	root     string
	reloader Reloader
	debounce time.Duration

	watcher *fsnotify.Watcher
	pending map[string]*pendingEvent
	events  chan Event

	state  State
	stopCh chan struct{}
	done   chan struct{}
}

// pendingEvent tracks a debounced change awaiting emission.
type pendingEvent struct {
	event Event
	timer *time.Timer
}

// New creates a watcher over the category directories under root. A zero
// debounce selects DefaultDebounce.
func New(root string, reloader Reloader, debounce time.Duration) *Watcher {
	if debounce == 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		root:     root,
		reloader: reloader,
		debounce: debounce,
		pending:  make(map[string]*pendingEvent),
		events:   make(chan Event, 64),
		state:    StateStopped,
	}
}

// State returns the watcher's current state.
func (w *Watcher) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

// Start begins watching and reloading. It returns immediately; watching
// continues until Stop is called or the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.state != StateStopped {
		w.mu.Unlock()
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.watcher = fw
	w.state = StateWatching
	w.stopCh = make(chan struct{})
	w.done = make(chan struct{})
	w.mu.Unlock()

	// The goroutines must be running before any failure path can call
	// Stop: Stop waits for consume to finish.
	go w.processFsEvents(ctx, fw)
	go w.consume(ctx)

	if err := w.addWatches(fw); err != nil {
		w.Stop()
		return err
	}

	logging.Info("Watcher", "Watching %s for component changes (debounce %s)", w.root, w.debounce)
	return nil
}

// addWatches registers each category directory and its subdirectories.
func (w *Watcher) addWatches(fw *fsnotify.Watcher) error {
	for _, category := range component.Categories() {
		dir := filepath.Join(w.root, category.Directory())
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if strings.HasPrefix(d.Name(), "_") || d.Name() == "examples" {
				return filepath.SkipDir
			}
			return fw.Add(path)
		})
		if err != nil {
			return err
		}
		logging.Debug("Watcher", "Watching directory: %s", dir)
	}
	return nil
}

// processFsEvents turns raw fsnotify events into debounced reload events.
// The fsnotify watcher is passed in rather than read from the struct: Stop
// nils the field under the lock, and this loop must keep selecting on the
// channels until they close.
func (w *Watcher) processFsEvents(ctx context.Context, fw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			w.cleanupPending()
			return
		case <-w.stopCh:
			w.cleanupPending()
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			w.handleFsEvent(fw, event)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logging.Error("Watcher", err, "Filesystem watcher error")
		}
	}
}

func (w *Watcher) handleFsEvent(fw *fsnotify.Watcher, event fsnotify.Event) {
	// New subdirectories need their own watch. fsnotify is not recursive.
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			base := filepath.Base(event.Name)
			if !strings.HasPrefix(base, "_") && base != "examples" {
				if err := fw.Add(event.Name); err != nil {
					logging.Warn("Watcher", "Failed to watch new directory %s: %v", event.Name, err)
				}
			}
			return
		}
	}

	// A change to a template's sibling schema file re-imports the
	// descriptor so the new schema gets injected.
	if sibling := schemaSibling(event.Name); sibling != "" {
		if category, ok := w.categoryFor(event.Name); ok && category == component.CategoryTemplate {
			w.debounceEvent(Event{
				Path:      sibling,
				Category:  category,
				Op:        OpUpdate,
				Timestamp: time.Now(),
			})
		}
		return
	}

	if !isDescriptorPath(event.Name) {
		return
	}

	category, ok := w.categoryFor(event.Name)
	if !ok {
		return
	}

	var op Op
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		op = OpCreate
	case event.Op&fsnotify.Write == fsnotify.Write:
		op = OpUpdate
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		op = OpDelete
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		// The new name triggers its own create event.
		op = OpDelete
	default:
		return
	}

	w.debounceEvent(Event{
		Path:      event.Name,
		Category:  category,
		Op:        op,
		Timestamp: time.Now(),
	})
}

// debounceEvent coalesces rapid changes to the same path into one event.
func (w *Watcher) debounceEvent(event Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if entry, ok := w.pending[event.Path]; ok {
		entry.timer.Stop()
		event.Op = mergeOps(entry.event.Op, event.Op)
	}

	timer := time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		entry, ok := w.pending[event.Path]
		if ok {
			delete(w.pending, event.Path)
		}
		w.mu.Unlock()

		if ok {
			select {
			case w.events <- entry.event:
				logging.Debug("Watcher", "Emitted %s for %s", entry.event.Op, entry.event.Path)
			default:
				logging.Warn("Watcher", "Event channel full, dropping %s for %s", entry.event.Op, entry.event.Path)
			}
		}
	})

	w.pending[event.Path] = &pendingEvent{event: event, timer: timer}
}

// mergeOps combines two operations on the same path observed within one
// debounce window.
func mergeOps(old, new Op) Op {
	if old == OpCreate {
		if new == OpDelete {
			// Still emit the delete so a transient file is cleaned up.
			return OpDelete
		}
		return OpCreate
	}
	if old == OpUpdate && new == OpDelete {
		return OpDelete
	}
	return new
}

// consume is the single event consumer. It applies each event through the
// reloader; a failed reload is logged and the previous registration stays.
func (w *Watcher) consume(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			// Drain already-emitted events before stopping so an
			// in-flight save is not lost.
			for {
				select {
				case event := <-w.events:
					w.apply(event)
				default:
					return
				}
			}
		case event := <-w.events:
			w.apply(event)
		}
	}
}

func (w *Watcher) apply(event Event) {
	w.setState(StateReloading)
	defer w.setState(StateWatching)

	if err := w.reloader.Reload(event.Path); err != nil {
		logging.Error("Watcher", err, "Reload failed for %s, keeping previous registration", event.Path)
		return
	}
	logging.Info("Watcher", "Reloaded %s (%s)", event.Path, event.Op)
}

func (w *Watcher) setState(state State) {
	w.mu.Lock()
	if w.state != StateStopped {
		w.state = state
	}
	w.mu.Unlock()
}

// categoryFor maps a descriptor path to its component category.
func (w *Watcher) categoryFor(path string) (component.Category, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) < 2 {
		return "", false
	}
	for _, category := range component.Categories() {
		if category.Directory() == parts[0] {
			return category, true
		}
	}
	return "", false
}

// cleanupPending cancels all pending debounce timers.
func (w *Watcher) cleanupPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, entry := range w.pending {
		entry.timer.Stop()
	}
	w.pending = make(map[string]*pendingEvent)
}

// Stop gracefully stops the watcher, waiting for an in-flight reload.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.state == StateStopped {
		w.mu.Unlock()
		return
	}
	w.state = StateStopped
	close(w.stopCh)
	done := w.done
	if w.watcher != nil {
		if err := w.watcher.Close(); err != nil {
			logging.Error("Watcher", err, "Error closing filesystem watcher")
		}
		w.watcher = nil
	}
	w.mu.Unlock()

	if done != nil {
		<-done
	}
	logging.Info("Watcher", "Stopped component watcher")
}

// schemaSibling maps a structured-output schema file to the descriptor it
// belongs to: same base name, .yaml or .yml extension. Returns "" when the
// path is not a schema file or no sibling descriptor exists.
func schemaSibling(path string) string {
	if strings.ToLower(filepath.Ext(path)) != ".json" {
		return ""
	}
	stem := strings.TrimSuffix(path, filepath.Ext(path))
	for _, ext := range []string{".yaml", ".yml"} {
		candidate := stem + ext
		if !isDescriptorPath(candidate) {
			continue
		}
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func isDescriptorPath(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, "_") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
