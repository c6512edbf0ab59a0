package resolve

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hepsoft/rootsense/registry"
)

// fakeExtractor serves canned include lists keyed by file path and counts
// extraction calls, so tests can assert memoization without touching disk.
type fakeExtractor struct {
	byPath map[string][]string
	calls  map[string]int
	fail   map[string]error
}

func newFakeExtractor(byPath map[string][]string) *fakeExtractor {
	return &fakeExtractor{
		byPath: byPath,
		calls:  make(map[string]int),
		fail:   make(map[string]error),
	}
}

func (f *fakeExtractor) Extract(path string) ([]string, error) {
	f.calls[path]++
	if err := f.fail[path]; err != nil {
		return nil, err
	}
	return f.byPath[path], nil
}

func (f *fakeExtractor) totalCalls() int {
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func buildRegistry(paths map[string]string) *registry.Registry {
	reg := registry.New()
	for name, path := range paths {
		reg.Insert(name, path)
	}
	return reg
}

func TestSatisfiable_NoIncludes(t *testing.T) {
	reg := buildRegistry(map[string]string{"a.h": "/inc/a.h"})
	r := New(reg, newFakeExtractor(map[string][]string{}))

	ok, err := r.Satisfiable("a.h", NewDirSet())

	require.NoError(t, err)
	assert.True(t, ok, "a file with no includes is always resolvable")
}

func TestSatisfiable_AbsentName(t *testing.T) {
	reg := buildRegistry(nil)
	r := New(reg, newFakeExtractor(nil))

	ok, err := r.Satisfiable("ghost.h", NewDirSet())

	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, reg.IsVisited("ghost.h"), "absent files carry no memo")
}

func TestSatisfiable_MissingIncludePoisonsDependents(t *testing.T) {
	reg := buildRegistry(map[string]string{
		"a.h": "/inc/a.h",
		"b.h": "/inc/b.h",
	})
	ext := newFakeExtractor(map[string][]string{
		"/inc/a.h": {"b.h"},
		"/inc/b.h": {"gone.h"},
	})
	r := New(reg, ext)

	ok, err := r.Satisfiable("a.h", NewDirSet())

	require.NoError(t, err)
	assert.False(t, ok)

	verdict, decided := reg.Resolvable("b.h")
	require.True(t, decided)
	assert.False(t, verdict)
	assert.Equal(t, []string{"gone.h"}, r.MissingTargets("b.h"))
	assert.Empty(t, r.MissingTargets("a.h"), "a.h fails transitively, not directly")
}

func TestSatisfiable_TwoFileCycle(t *testing.T) {
	reg := buildRegistry(map[string]string{
		"a.h": "/inc/a.h",
		"b.h": "/inc/b.h",
	})
	ext := newFakeExtractor(map[string][]string{
		"/inc/a.h": {"b.h"},
		"/inc/b.h": {"a.h"},
	})
	r := New(reg, ext)

	ok, err := r.Satisfiable("a.h", NewDirSet())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Satisfiable("b.h", NewDirSet())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSatisfiable_CycleWithMissingMemberFails(t *testing.T) {
	// a -> b -> c -> a, and c also includes a file that does not exist.
	reg := buildRegistry(map[string]string{
		"a.h": "/inc/a.h",
		"b.h": "/inc/b.h",
		"c.h": "/inc/c.h",
	})
	ext := newFakeExtractor(map[string][]string{
		"/inc/a.h": {"b.h"},
		"/inc/b.h": {"c.h"},
		"/inc/c.h": {"a.h", "gone.h"},
	})
	r := New(reg, ext)

	ok, err := r.Satisfiable("a.h", NewDirSet())

	require.NoError(t, err)
	assert.False(t, ok)
	for _, name := range []string{"b.h", "c.h"} {
		verdict, decided := reg.Resolvable(name)
		require.True(t, decided, name)
		assert.False(t, verdict, name)
	}
}

func TestSatisfiable_CycleTieBreakDependsOnEntryPoint(t *testing.T) {
	// Known edge case: entering the same cycle from different top-level
	// points can hand different verdicts to the in-progress member. With
	// a -> b -> a and b -> gone.h, resolving a first decides both false.
	setup := func() (*Resolver, *registry.Registry) {
		reg := buildRegistry(map[string]string{
			"a.h": "/inc/a.h",
			"b.h": "/inc/b.h",
		})
		ext := newFakeExtractor(map[string][]string{
			"/inc/a.h": {"b.h"},
			"/inc/b.h": {"a.h", "gone.h"},
		})
		return New(reg, ext), reg
	}

	r, _ := setup()
	ok, err := r.Satisfiable("a.h", NewDirSet())
	require.NoError(t, err)
	assert.False(t, ok)

	// Entering through b instead: b sees a as in-progress? No: b is the
	// entry point, a is visited during b's walk and sees b in progress,
	// so a momentarily counts as satisfied; b still fails on gone.h and
	// a's memoized verdict stays true.
	r, reg := setup()
	ok, err = r.Satisfiable("b.h", NewDirSet())
	require.NoError(t, err)
	assert.False(t, ok)

	verdict, decided := reg.Resolvable("a.h")
	require.True(t, decided)
	assert.True(t, verdict, "entry-point order changes the cycle member's verdict")
}

func TestSatisfiable_MemoizedVerdictSkipsReTraversal(t *testing.T) {
	reg := buildRegistry(map[string]string{
		"a.h": "/inc/a.h",
		"b.h": "/inc/b.h",
	})
	ext := newFakeExtractor(map[string][]string{
		"/inc/a.h": {"b.h"},
	})
	r := New(reg, ext)

	first, err := r.Satisfiable("a.h", NewDirSet())
	require.NoError(t, err)
	callsAfterFirst := ext.totalCalls()

	second, err := r.Satisfiable("a.h", NewDirSet())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, callsAfterFirst, ext.totalCalls(), "second call must not re-extract")
}

func TestSatisfiable_CollectsSearchDirs(t *testing.T) {
	reg := buildRegistry(map[string]string{
		"x.h": "/proj/a/x.h",
		"y.h": "/proj/b/y.h",
	})
	ext := newFakeExtractor(map[string][]string{
		"/proj/a/x.h": {"y.h"},
	})
	r := New(reg, ext)

	dirs := NewDirSet()
	ok, err := r.Satisfiable("x.h", dirs)

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"/proj/b"}, dirs.Dirs())
}

func TestSatisfiable_NoDirForMissingTarget(t *testing.T) {
	reg := buildRegistry(map[string]string{
		"x.h": "/proj/a/x.h",
	})
	ext := newFakeExtractor(map[string][]string{
		"/proj/a/x.h": {"y.h"},
	})
	r := New(reg, ext)

	dirs := NewDirSet()
	ok, err := r.Satisfiable("x.h", dirs)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, dirs.Len())
}

func TestSatisfiable_NoDirForSubdirectoryTarget(t *testing.T) {
	// A target below the including file's directory is reachable by
	// relative inclusion and needs no search directory.
	reg := buildRegistry(map[string]string{
		"a.h": "/root/a.h",
		"b.h": "/root/sub/b.h",
	})
	ext := newFakeExtractor(map[string][]string{
		"/root/a.h": {"b.h"},
	})
	r := New(reg, ext)

	dirs := NewDirSet()
	ok, err := r.Satisfiable("a.h", dirs)

	require.NoError(t, err)
	require.True(t, ok)
	assert.Zero(t, dirs.Len())
}

func TestSatisfiable_DirsOfUnresolvableFileAreDiscarded(t *testing.T) {
	// a.h needs b's directory but also includes a missing file; the
	// directory must not leak into the caller's accumulator.
	reg := buildRegistry(map[string]string{
		"x.h": "/proj/a/x.h",
		"y.h": "/proj/b/y.h",
	})
	ext := newFakeExtractor(map[string][]string{
		"/proj/a/x.h": {"y.h", "gone.h"},
	})
	r := New(reg, ext)

	dirs := NewDirSet()
	ok, err := r.Satisfiable("x.h", dirs)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, dirs.Len())
}

func TestSatisfiable_StripsDirectoryPrefixFromTarget(t *testing.T) {
	// Includes written with a path are resolved by base name against the
	// registry; the collected dir strips the written subpath.
	reg := buildRegistry(map[string]string{
		"x.h": "/proj/a/x.h",
		"y.h": "/elsewhere/fit/y.h",
	})
	ext := newFakeExtractor(map[string][]string{
		"/proj/a/x.h": {"fit/y.h"},
	})
	r := New(reg, ext)

	dirs := NewDirSet()
	ok, err := r.Satisfiable("x.h", dirs)

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"/elsewhere"}, dirs.Dirs())
}

func TestSatisfiable_UnreadableFileAborts(t *testing.T) {
	reg := buildRegistry(map[string]string{"a.h": "/inc/a.h"})
	ext := newFakeExtractor(nil)
	ext.fail["/inc/a.h"] = errors.New("permission denied")
	r := New(reg, ext)

	_, err := r.Satisfiable("a.h", NewDirSet())

	assert.Error(t, err)
}

func TestResolveAll_EndToEnd(t *testing.T) {
	reg := buildRegistry(map[string]string{
		"a.h": "/root/a.h",
		"b.h": "/root/sub/b.h",
	})
	ext := newFakeExtractor(map[string][]string{
		"/root/a.h": {"b.h"},
	})
	r := New(reg, ext)

	targets := []Target{
		{Path: "/root/a.h", Rel: "a.h"},
		{Path: "/root/sub/b.h", Rel: "sub/b.h"},
	}
	result, err := r.ResolveAll(targets)

	require.NoError(t, err)
	require.Len(t, result.Included, 2)
	assert.Equal(t, "a.h", result.Included[0].Rel)
	assert.Equal(t, "sub/b.h", result.Included[1].Rel)
	assert.Empty(t, result.Excluded)
	assert.Empty(t, result.SearchDirs)
}

func TestResolveAll_RemovingDependencyExcludesBoth(t *testing.T) {
	reg := buildRegistry(map[string]string{
		"a.h": "/root/a.h",
	})
	ext := newFakeExtractor(map[string][]string{
		"/root/a.h": {"b.h"},
	})
	r := New(reg, ext)

	result, err := r.ResolveAll([]Target{{Path: "/root/a.h", Rel: "a.h"}})

	require.NoError(t, err)
	assert.Empty(t, result.Included)
	require.Len(t, result.Excluded, 1)
	assert.Equal(t, ReasonMissingInclude, result.Excluded[0].Reason)
	assert.Equal(t, []string{"b.h"}, result.Excluded[0].Missing)
}

func TestResolveAll_TransitiveReason(t *testing.T) {
	reg := buildRegistry(map[string]string{
		"a.h": "/root/a.h",
		"b.h": "/root/b.h",
	})
	ext := newFakeExtractor(map[string][]string{
		"/root/a.h": {"b.h"},
		"/root/b.h": {"gone.h"},
	})
	r := New(reg, ext)

	result, err := r.ResolveAll([]Target{
		{Path: "/root/a.h", Rel: "a.h"},
		{Path: "/root/b.h", Rel: "b.h"},
	})

	require.NoError(t, err)
	require.Len(t, result.Excluded, 2)
	assert.Equal(t, ReasonTransitive, result.Excluded[0].Reason)
	assert.Equal(t, ReasonMissingInclude, result.Excluded[1].Reason)
}

func TestPartitionDirs(t *testing.T) {
	result := &Result{SearchDirs: []string{"/root/fit", "/usr/include/X11", "/root/net"}}

	underRoot, elsewhere := result.PartitionDirs("/root")

	assert.Equal(t, []string{"/root/fit", "/root/net"}, underRoot)
	assert.Equal(t, []string{"/usr/include/X11"}, elsewhere)
}
