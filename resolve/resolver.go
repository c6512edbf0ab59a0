// Package resolve decides, per header file, whether the file's entire
// transitive include closure can be matched to files present in a registry,
// and accumulates the include-search directories a downstream tool needs.
package resolve

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hepsoft/rootsense/includes"
	"github.com/hepsoft/rootsense/registry"
)

// Resolver walks include dependencies against a registry. It is stateful
// through the registry's resolution annotations and must not be shared
// across goroutines: the Unvisited→InProgress transition is what keeps
// cyclic include graphs from recursing forever, and it is not synchronized.
type Resolver struct {
	reg *registry.Registry
	ext includes.Extractor

	// first textual include target found missing per registry name, for
	// the excluded-files report
	missing map[string][]string
}

// New creates a resolver over reg using ext to read include directives.
func New(reg *registry.Registry, ext includes.Extractor) *Resolver {
	return &Resolver{
		reg:     reg,
		ext:     ext,
		missing: make(map[string][]string),
	}
}

// Satisfiable reports whether the file registered under name, and
// everything it transitively includes, can be located. Verdicts are
// memoized on the registry, so repeated calls cost one lookup. Search
// directories needed by the file's resolvable closure are added to dirs.
//
// A name absent from the registry is simply not satisfiable; no state is
// recorded for it. A file currently on the recursion stack is reported
// satisfiable: circularity alone does not disqualify an otherwise
// satisfiable include graph, and the cycle's verdict is settled by the call
// that first entered it. The only error is an unreadable file, which aborts
// the walk; that is an environment problem, not a dependency gap.
func (r *Resolver) Satisfiable(name string, dirs *DirSet) (bool, error) {
	entry, err := r.reg.Get(name)
	if errors.Is(err, registry.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if verdict, decided := r.reg.Resolvable(name); decided {
		return verdict, nil
	}
	if r.reg.IsVisited(name) {
		// On the recursion stack: a circular include. Leave the verdict
		// open for the call that entered the cycle.
		return true, nil
	}
	r.reg.MarkVisited(name)

	targets, err := r.ext.Extract(entry.Path)
	if err != nil {
		return false, fmt.Errorf("failed to extract includes: %w", err)
	}

	local := NewDirSet()
	verdict := true
	for _, target := range targets {
		childName := filepath.Base(filepath.FromSlash(target))

		ok, err := r.Satisfiable(childName, local)
		if err != nil {
			return false, err
		}
		if !ok {
			verdict = false
			if !r.reg.Contains(childName) {
				r.missing[name] = append(r.missing[name], target)
			}
			continue
		}

		// The target exists. If it does not live under this file's own
		// directory, relative inclusion cannot reach it and the target's
		// directory must go on the include search path.
		child, getErr := r.reg.Get(childName)
		if getErr != nil {
			continue
		}
		if !relativelyReachable(entry.Path, target, child.Path) {
			local.Add(searchDir(child.Path, target))
		}
	}

	r.reg.SetResolvable(name, verdict)
	if verdict {
		// Directories gathered under a file that turns out unresolvable
		// are dropped; only the resolvable closure's needs surface.
		dirs.Union(local)
	}
	return verdict, nil
}

// MissingTargets returns the include targets of name that were absent from
// the registry, in source order. Empty for files that failed only through a
// transitively unresolvable child.
func (r *Resolver) MissingTargets(name string) []string {
	return r.missing[name]
}

// relativelyReachable reports whether childPath can be found from the file
// at parentPath without extra search directories: either the include text
// joined onto the parent's directory names the child exactly, or the child
// sits somewhere below the parent's directory.
func relativelyReachable(parentPath, target, childPath string) bool {
	parentDir := filepath.Dir(parentPath)
	if filepath.Join(parentDir, filepath.FromSlash(target)) == childPath {
		return true
	}
	return strings.HasPrefix(childPath, parentDir+string(filepath.Separator))
}

// searchDir computes the directory that must be put on the include search
// path so that `#include "target"` finds path. When the registered path ends
// with the include text, stripping it yields the search root; otherwise the
// file's own directory is the best available answer.
func searchDir(path, target string) string {
	normalized := filepath.FromSlash(target)
	if trimmed, ok := strings.CutSuffix(path, string(filepath.Separator)+normalized); ok {
		return filepath.Clean(trimmed)
	}
	return filepath.Dir(path)
}
