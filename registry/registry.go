// Package registry provides the name-indexed store of discovered header
// files that dependency resolution runs against. Entries are keyed by base
// file name; inserting a duplicate name replaces the previous entry
// (last write wins).
package registry

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNotFound is returned when a looked-up file name has no entry.
var ErrNotFound = errors.New("file not found in registry")

// Resolution is the per-entry state of the dependency check.
type Resolution int

const (
	// ResolutionUnvisited means the resolver has not touched this entry.
	ResolutionUnvisited Resolution = iota
	// ResolutionInProgress means the entry is on the resolver's recursion
	// stack: visited, but its verdict is not decided yet. Seeing this state
	// from a child lookup is how a circular include is detected.
	ResolutionInProgress
	// ResolutionResolved means the verdict is decided and memoized.
	ResolutionResolved
)

// Entry is one discovered file.
type Entry struct {
	Name string // base file name, the index key
	Path string // resolved path on disk

	state      Resolution
	resolvable bool
}

// State returns the entry's resolution state.
func (e *Entry) State() Resolution { return e.state }

// Registry maps base file names to entries and supports deterministic
// iteration in name order. It is not safe for concurrent use; callers that
// scan in parallel must funnel inserts through a single goroutine.
type Registry struct {
	entries map[string]*Entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Insert adds or replaces the entry for name. A replaced entry loses any
// resolution annotations along with its path.
func (r *Registry) Insert(name, path string) {
	r.entries[name] = &Entry{Name: name, Path: path}
}

// Contains reports whether name has an entry.
func (r *Registry) Contains(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// Get returns the entry for name, or ErrNotFound.
func (r *Registry) Get(name string) (*Entry, error) {
	entry, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return entry, nil
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Names returns all entry names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge returns a new registry with the union of both registries' entries.
// On a name collision the other registry's entry wins, so folding a sequence
// of registries left to right keeps the most recently merged path for each
// name. Entry annotations are copied as-is; neither input is mutated.
func (r *Registry) Merge(other *Registry) *Registry {
	merged := New()
	for name, entry := range r.entries {
		copied := *entry
		merged.entries[name] = &copied
	}
	for name, entry := range other.entries {
		copied := *entry
		merged.entries[name] = &copied
	}
	return merged
}

// MarkVisited transitions name from Unvisited to InProgress. Marking an
// entry that is already past Unvisited, or an absent name, is a no-op.
func (r *Registry) MarkVisited(name string) {
	entry, ok := r.entries[name]
	if !ok || entry.state != ResolutionUnvisited {
		return
	}
	entry.state = ResolutionInProgress
}

// IsVisited reports whether the resolver has begun processing name.
func (r *Registry) IsVisited(name string) bool {
	entry, ok := r.entries[name]
	return ok && entry.state != ResolutionUnvisited
}

// SetResolvable records the final verdict for name. The first recorded
// verdict is immutable: a file's resolvability does not depend on which
// parent asked, so later writes are ignored. Absent names are ignored.
func (r *Registry) SetResolvable(name string, ok bool) {
	entry, present := r.entries[name]
	if !present || entry.state == ResolutionResolved {
		return
	}
	entry.state = ResolutionResolved
	entry.resolvable = ok
}

// Resolvable returns the memoized verdict for name. decided is false while
// the entry is unvisited or still on the recursion stack, and for absent
// names.
func (r *Registry) Resolvable(name string) (verdict, decided bool) {
	entry, ok := r.entries[name]
	if !ok || entry.state != ResolutionResolved {
		return false, false
	}
	return entry.resolvable, true
}
