package generator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeHeader(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func baseConfig(includeDir string) Config {
	return Config{
		IncludeDir: includeDir,
		Extensions: []string{".h", ".hh"},
		OutputName: "rootsense.h",
	}
}

func TestRun_WritesAggregate(t *testing.T) {
	root := t.TempDir()
	writeHeader(t, root, "a.h", "#include \"b.h\"\n")
	writeHeader(t, root, "sub/b.h", "")

	summary, err := Run(baseConfig(root))

	require.NoError(t, err)
	assert.Equal(t, 2, summary.LinesWritten)
	assert.Empty(t, summary.Excluded)
	assert.Empty(t, summary.DirsUnderRoot)
	assert.Empty(t, summary.DirsElsewhere)

	content, err := os.ReadFile(filepath.Join(root, "rootsense.h"))
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "generated_aggregate", content)
}

func TestRun_MissingDependencyExcludesChain(t *testing.T) {
	root := t.TempDir()
	writeHeader(t, root, "a.h", "#include \"b.h\"\n")

	summary, err := Run(baseConfig(root))

	require.NoError(t, err)
	assert.Empty(t, summary.Included)
	require.Len(t, summary.Excluded, 1)
	assert.Equal(t, "a.h", summary.Excluded[0].Target.Rel)
	assert.Equal(t, []string{"b.h"}, summary.Excluded[0].Missing)

	content, err := os.ReadFile(filepath.Join(root, "rootsense.h"))
	require.NoError(t, err)
	assert.NotContains(t, string(content), "a.h")
}

func TestRun_SystemPathSatisfiesInclude(t *testing.T) {
	root := t.TempDir()
	system := t.TempDir()
	writeHeader(t, root, "a.h", "#include \"sys.h\"\n")
	sysPath := writeHeader(t, system, "deep/sys.h", "")

	cfg := baseConfig(root)
	cfg.SystemPaths = []string{system}

	summary, err := Run(cfg)

	require.NoError(t, err)
	require.Len(t, summary.Included, 1)
	assert.Empty(t, summary.DirsUnderRoot)
	assert.Equal(t, []string{filepath.Dir(sysPath)}, summary.DirsElsewhere)
}

func TestRun_TargetTreeWinsNameCollision(t *testing.T) {
	root := t.TempDir()
	system := t.TempDir()
	writeHeader(t, root, "a.h", "#include \"dup.h\"\n")
	writeHeader(t, root, "fit/dup.h", "")
	writeHeader(t, system, "dup.h", "#include \"gone.h\"\n")

	cfg := baseConfig(root)
	cfg.SystemPaths = []string{system}

	summary, err := Run(cfg)

	require.NoError(t, err)
	// With the system copy of dup.h the chain would be unresolvable; the
	// target tree's copy must win the merge.
	assert.Len(t, summary.Included, 2)
}

func TestRun_SkipsOwnOutputAndLegacyAggregates(t *testing.T) {
	root := t.TempDir()
	writeHeader(t, root, "a.h", "")
	writeHeader(t, root, "rootsense.h", "#include \"a.h\"\n")
	writeHeader(t, root, "AllRoot.h", "#include \"a.h\"\n")

	summary, err := Run(baseConfig(root))

	require.NoError(t, err)
	require.Len(t, summary.Included, 1)
	assert.Equal(t, "a.h", summary.Included[0].Rel)
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	root := t.TempDir()
	writeHeader(t, root, "a.h", "")

	cfg := baseConfig(root)
	cfg.DryRun = true

	summary, err := Run(cfg)

	require.NoError(t, err)
	assert.Zero(t, summary.LinesWritten)
	assert.Len(t, summary.Included, 1)
	assert.NoFileExists(t, filepath.Join(root, "rootsense.h"))
}

func TestRun_SyntaxParserSkipsCommentedIncludes(t *testing.T) {
	root := t.TempDir()
	writeHeader(t, root, "a.h", "// #include \"gone.h\"\n#include \"b.h\"\n")
	writeHeader(t, root, "b.h", "")

	cfg := baseConfig(root)
	cfg.Parser = ParserSyntax

	summary, err := Run(cfg)

	require.NoError(t, err)
	assert.Len(t, summary.Included, 2)
	assert.Empty(t, summary.Excluded)
}

func TestRun_UnknownParser(t *testing.T) {
	cfg := baseConfig(t.TempDir())
	cfg.Parser = "psychic"

	_, err := Run(cfg)

	assert.Error(t, err)
}

func TestRun_ExcludePatterns(t *testing.T) {
	root := t.TempDir()
	writeHeader(t, root, "a.h", "")
	writeHeader(t, root, "detail/impl.h", "")

	cfg := baseConfig(root)
	cfg.ExcludePatterns = []string{"detail/**"}

	summary, err := Run(cfg)

	require.NoError(t, err)
	require.Len(t, summary.Included, 1)
	assert.Equal(t, "a.h", summary.Included[0].Rel)
}
