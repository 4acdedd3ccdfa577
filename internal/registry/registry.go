// Package registry holds the process-wide table of currently active
// components. The registry is an owned, injectable object with an explicit
// lifecycle: created once at startup, populated by the loader, mutated by the
// hot-reload watcher, closed at shutdown. All mutation goes through Register
// and the duplicate policy; nothing mutates records from outside.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"loom/internal/component"
	"loom/pkg/logging"
)

// DuplicateRegistrationError reports a name collision under PolicyError.
type DuplicateRegistrationError struct {
	Category component.Category
	Name     string
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("%s %q is already registered (duplicate policy is 'error'; rename the component or change the policy)", e.Category, e.Name)
}

// Registry is a thread-safe mapping from (category, name) to a Record.
type Registry struct {
	mu      sync.RWMutex
	policy  DuplicatePolicy
	records map[component.Category]map[string]*component.Record

	// updateChan carries coalesced change notifications to the server.
	updateChan chan struct{}
	closed     bool
}

// New creates an empty registry with the given duplicate policy.
func New(policy DuplicatePolicy) *Registry {
	if policy == "" {
		policy = DefaultPolicy
	}
	r := &Registry{
		policy:     policy,
		records:    make(map[component.Category]map[string]*component.Record),
		updateChan: make(chan struct{}, 1),
	}
	for _, cat := range component.Categories() {
		r.records[cat] = make(map[string]*component.Record)
	}
	return r
}

// Policy returns the configured duplicate policy.
func (r *Registry) Policy() DuplicatePolicy {
	return r.policy
}

// Register inserts a record, applying the duplicate policy when the
// (category, name) pair is already present. It reports whether an existing
// record was replaced.
func (r *Registry) Register(rec *component.Record) (replaced bool, err error) {
	if rec == nil || rec.Name == "" {
		return false, fmt.Errorf("record must have a name")
	}
	if !rec.Category.Valid() {
		return false, fmt.Errorf("unknown category %q", rec.Category)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.records[rec.Category][rec.Name]
	if exists {
		switch r.policy {
		case PolicyError:
			return false, &DuplicateRegistrationError{Category: rec.Category, Name: rec.Name}
		case PolicyIgnore:
			logging.Debug("Registry", "Keeping first registration of %s/%s (from %s), ignoring %s",
				rec.Category, rec.Name, existing.SourcePath, rec.SourcePath)
			return false, nil
		case PolicyWarnReplace:
			logging.Warn("Registry", "Replacing %s/%s: previously registered from %s, now from %s",
				rec.Category, rec.Name, existing.SourcePath, rec.SourcePath)
		}
	}

	r.records[rec.Category][rec.Name] = rec
	r.notifyLocked()
	return exists, nil
}

// Get returns the record for a (category, name) pair.
func (r *Registry) Get(cat component.Category, name string) (*component.Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[cat][name]
	return rec, ok
}

// List returns the records of one category, sorted by name.
func (r *Registry) List(cat component.Category) []*component.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*component.Record, 0, len(r.records[cat]))
	for _, rec := range r.records[cat] {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Snapshot returns all records grouped by category, each group sorted by name.
func (r *Registry) Snapshot() map[component.Category][]*component.Record {
	out := make(map[component.Category][]*component.Record, len(r.records))
	for _, cat := range component.Categories() {
		out[cat] = r.List(cat)
	}
	return out
}

// Remove deletes a record by (category, name). It reports whether a record
// was present.
func (r *Registry) Remove(cat component.Category, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[cat][name]; !ok {
		return false
	}
	delete(r.records[cat], name)
	r.notifyLocked()
	return true
}

// RemoveBySource deletes every record registered from the given descriptor
// file and returns how many were removed. Used when a watched file is deleted:
// multi-document template files can map one file to several records.
func (r *Registry) RemoveBySource(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for cat, byName := range r.records {
		for name, rec := range byName {
			if rec.SourcePath == path {
				delete(r.records[cat], name)
				removed++
			}
		}
	}
	if removed > 0 {
		r.notifyLocked()
	}
	return removed
}

// Len returns the total number of records across all categories.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, byName := range r.records {
		n += len(byName)
	}
	return n
}

// Updates returns the coalesced change-notification channel. The channel has
// a single-slot buffer: consumers that fall behind see one pending signal, not
// a backlog.
func (r *Registry) Updates() <-chan struct{} {
	return r.updateChan
}

// Close tears the registry down. Further notifications are suppressed;
// records stay readable so in-flight requests can finish.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	close(r.updateChan)
}

func (r *Registry) notifyLocked() {
	if r.closed {
		return
	}
	select {
	case r.updateChan <- struct{}{}:
	default:
	}
}
