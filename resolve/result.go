package resolve

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Target is one header physically present in the target include tree, a
// candidate for the aggregate output.
type Target struct {
	Path string // resolved path on disk
	Rel  string // path relative to the include root, forward slashes
}

// ExclusionReason categorizes why a target header was left out.
type ExclusionReason int

const (
	// ReasonMissingInclude means the header directly includes a file that
	// is nowhere in the registry.
	ReasonMissingInclude ExclusionReason = iota
	// ReasonTransitive means every direct include exists, but something
	// deeper in the closure is missing.
	ReasonTransitive
)

func (r ExclusionReason) String() string {
	switch r {
	case ReasonMissingInclude:
		return "missing include"
	case ReasonTransitive:
		return "unresolvable transitive dependency"
	default:
		return "unknown"
	}
}

// Exclusion describes one header left out of the aggregate.
type Exclusion struct {
	Target  Target
	Reason  ExclusionReason
	Missing []string // the absent include targets, for ReasonMissingInclude
}

// Result is the outcome of resolving a set of target headers.
type Result struct {
	// Included holds the resolvable targets in discovery order.
	Included []Target
	// Excluded holds the unresolvable targets with their reason.
	Excluded []Exclusion
	// SearchDirs are the directories the resolvable closure needs on the
	// include search path, in first-collection order.
	SearchDirs []string
}

// PartitionDirs splits SearchDirs into those under root and the rest,
// mirroring the report's "primary tree" and "elsewhere" lists.
func (res *Result) PartitionDirs(root string) (underRoot, elsewhere []string) {
	prefix := filepath.Clean(root) + string(filepath.Separator)
	for _, dir := range res.SearchDirs {
		if strings.HasPrefix(dir+string(filepath.Separator), prefix) {
			underRoot = append(underRoot, dir)
		} else {
			elsewhere = append(elsewhere, dir)
		}
	}
	return underRoot, elsewhere
}

// ResolveAll runs the satisfiability check over every target in order and
// collects the outcome. Verdicts memoized by earlier targets are reused, so
// a header that already proved resolvable as somebody's dependency is not
// re-traversed when its own turn comes.
func (r *Resolver) ResolveAll(targets []Target) (*Result, error) {
	result := &Result{}
	dirs := NewDirSet()

	for _, target := range targets {
		name := filepath.Base(target.Path)
		ok, err := r.Satisfiable(name, dirs)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", target.Path, err)
		}
		if ok {
			result.Included = append(result.Included, target)
			continue
		}

		exclusion := Exclusion{Target: target, Reason: ReasonTransitive}
		if missing := r.MissingTargets(name); len(missing) > 0 {
			exclusion.Reason = ReasonMissingInclude
			exclusion.Missing = missing
		}
		result.Excluded = append(result.Excluded, exclusion)
	}

	result.SearchDirs = dirs.Dirs()
	return result, nil
}

// DirSet is an insertion-ordered set of directories.
type DirSet struct {
	order []string
	seen  map[string]bool
}

// NewDirSet creates an empty DirSet.
func NewDirSet() *DirSet {
	return &DirSet{seen: make(map[string]bool)}
}

// Add inserts dir if it is not already present.
func (s *DirSet) Add(dir string) {
	if s.seen[dir] {
		return
	}
	s.seen[dir] = true
	s.order = append(s.order, dir)
}

// Union adds every directory of other, preserving other's order.
func (s *DirSet) Union(other *DirSet) {
	for _, dir := range other.order {
		s.Add(dir)
	}
}

// Dirs returns the directories in insertion order.
func (s *DirSet) Dirs() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of directories.
func (s *DirSet) Len() int {
	return len(s.order)
}
