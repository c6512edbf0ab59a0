// Package generator runs the full rootsense pipeline: scan the target
// include tree and the system header locations, merge the registries,
// resolve every target header, and write the aggregate output.
package generator

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hepsoft/rootsense/aggregate"
	"github.com/hepsoft/rootsense/includes"
	"github.com/hepsoft/rootsense/internal/logger"
	"github.com/hepsoft/rootsense/registry"
	"github.com/hepsoft/rootsense/resolve"
	"github.com/hepsoft/rootsense/scan"
)

// Parser selects how include directives are extracted.
const (
	ParserLine   = "line"
	ParserSyntax = "syntax"
)

// Config describes one generation run.
type Config struct {
	// IncludeDir is the resolved primary include tree; the aggregate is
	// written into it.
	IncludeDir string
	// SystemPaths are extra roots scanned for includes that live outside
	// the primary tree. Missing directories are skipped.
	SystemPaths []string
	// Extensions admitted by the scan (scan.Wildcard allowed).
	Extensions []string
	// IncludeExtensionless admits extensionless plain-text files.
	IncludeExtensionless bool
	// ExcludePatterns are doublestar globs dropped from the target scan.
	ExcludePatterns []string
	// OutputName is the aggregate's file name inside IncludeDir.
	OutputName string
	// Guard overrides the include-guard macro; empty derives it from
	// OutputName.
	Guard string
	// Parser is ParserLine or ParserSyntax.
	Parser string
	// DryRun resolves and reports without writing the aggregate.
	DryRun bool

	// Log receives progress messages; nil is silent.
	Log *logger.Console
	// ProgressWriter, when a terminal, shows scan progress bars.
	ProgressWriter io.Writer
}

// Summary is the outcome of a run.
type Summary struct {
	OutputPath    string
	LinesWritten  int
	Included      []resolve.Target
	Excluded      []resolve.Exclusion
	DirsUnderRoot []string
	DirsElsewhere []string
	Elapsed       time.Duration
}

// legacyAggregates are earlier aggregate names that may survive in a tree;
// including an aggregate into an aggregate helps nobody.
var legacyAggregates = map[string]bool{
	"rootsense.h": true,
	"AllRoot.h":   true,
}

// Run executes the pipeline and returns a summary. Errors are limited to
// environment problems: unreadable trees, unreadable files, failed writes.
// Unresolvable headers are data, reported through the summary.
func Run(cfg Config) (*Summary, error) {
	start := time.Now()

	extractor, err := NewExtractor(cfg.Parser)
	if err != nil {
		return nil, err
	}

	targetFiles, targetReg, err := scanTree(cfg, cfg.IncludeDir, true)
	if err != nil {
		return nil, err
	}
	cfg.Log.Infof("indexed %d files under %s", targetReg.Len(), cfg.IncludeDir)

	systemReg := registry.New()
	for _, root := range cfg.SystemPaths {
		_, reg, err := scanTree(cfg, root, false)
		if err != nil {
			return nil, err
		}
		systemReg = systemReg.Merge(reg)
	}
	if len(cfg.SystemPaths) > 0 {
		cfg.Log.Infof("indexed %d files from %d system path(s)", systemReg.Len(), len(cfg.SystemPaths))
	}

	// Target entries win name collisions so includes prefer the primary tree.
	merged := systemReg.Merge(targetReg)

	targets, err := collectTargets(cfg, targetFiles)
	if err != nil {
		return nil, err
	}

	resolver := resolve.New(merged, extractor)
	result, err := resolver.ResolveAll(targets)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		OutputPath: filepath.Join(cfg.IncludeDir, cfg.OutputName),
		Included:   result.Included,
		Excluded:   result.Excluded,
	}
	summary.DirsUnderRoot, summary.DirsElsewhere = result.PartitionDirs(cfg.IncludeDir)

	if !cfg.DryRun {
		lines, err := writeAggregate(summary.OutputPath, guard(cfg), result.Included)
		if err != nil {
			return nil, err
		}
		summary.LinesWritten = lines
	}

	summary.Elapsed = time.Since(start)
	return summary, nil
}

// NewExtractor maps a parser name to its include extractor.
func NewExtractor(parser string) (includes.Extractor, error) {
	switch parser {
	case "", ParserLine:
		return includes.LineExtractor{}, nil
	case ParserSyntax:
		return includes.SyntaxExtractor{}, nil
	default:
		return nil, fmt.Errorf("unknown parser %q (valid options: %s, %s)", parser, ParserLine, ParserSyntax)
	}
}

// scanTree enumerates a root and builds its registry. The target tree
// honors exclude patterns and renders progress; system trees do neither.
func scanTree(cfg Config, root string, isTarget bool) ([]string, *registry.Registry, error) {
	opts := scan.Options{
		Extensions:           cfg.Extensions,
		IncludeExtensionless: cfg.IncludeExtensionless,
	}
	if isTarget {
		opts.ExcludePatterns = cfg.ExcludePatterns
		if cfg.ProgressWriter != nil {
			var bar *logger.ProgressBar
			opts.Progress = func(done, total int) {
				if bar == nil {
					bar = logger.NewProgressBar(cfg.ProgressWriter, total, 50)
				}
				bar.Update(done)
				if done == total {
					bar.Finish()
				}
			}
		}
	}

	files, err := scan.Scan(root, opts)
	if err != nil {
		return nil, nil, err
	}

	reg := registry.New()
	for _, path := range files {
		reg.Insert(filepath.Base(path), path)
	}
	return files, reg, nil
}

// collectTargets turns the target tree's scan result into resolution
// targets, skipping the aggregate output itself and older aggregates.
func collectTargets(cfg Config, files []string) ([]resolve.Target, error) {
	targets := make([]resolve.Target, 0, len(files))
	for _, path := range files {
		name := filepath.Base(path)
		if name == cfg.OutputName || legacyAggregates[name] {
			continue
		}
		rel, err := filepath.Rel(cfg.IncludeDir, path)
		if err != nil {
			return nil, fmt.Errorf("failed to relativize %s: %w", path, err)
		}
		targets = append(targets, resolve.Target{Path: path, Rel: filepath.ToSlash(rel)})
	}
	return targets, nil
}

func guard(cfg Config) string {
	if cfg.Guard != "" {
		return cfg.Guard
	}
	return aggregate.GuardName(cfg.OutputName)
}

func writeAggregate(path, guard string, included []resolve.Target) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}

	relPaths := make([]string, len(included))
	for i, target := range included {
		relPaths[i] = target.Rel
	}

	lines, err := aggregate.Write(f, guard, relPaths)
	if err != nil {
		f.Close()
		return lines, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return lines, fmt.Errorf("failed to close %s: %w", path, err)
	}
	return lines, nil
}
