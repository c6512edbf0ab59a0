package graph

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hepsoft/rootsense/cmd/graph/formatters"
	"github.com/hepsoft/rootsense/depgraph"
	"github.com/hepsoft/rootsense/generator"
	"github.com/hepsoft/rootsense/registry"
	"github.com/hepsoft/rootsense/resolve"
	"github.com/hepsoft/rootsense/scan"
	"github.com/hepsoft/rootsense/toolchain"
)

type graphOptions struct {
	dir         string
	format      string
	parser      string
	extensions  []string
	excludes    []string
	showCycles  bool
	generateURL bool
}

// Cmd represents the graph command.
var Cmd = NewCommand()

// NewCommand returns a new graph command instance.
func NewCommand() *cobra.Command {
	opts := &graphOptions{}

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the include graph of a header tree",
		Long: `Render the include graph of a header tree.

Every indexed header becomes a node; every quoted #include that resolves to
an indexed file becomes an edge. Headers pulled in from outside the tree
appear under their absolute path.

Examples:
  rootsense graph -d /opt/root/include            # Graphviz DOT on stdout
  rootsense graph -d include -f mermaid           # Mermaid flowchart
  rootsense graph -d include -f json              # adjacency as JSON
  rootsense graph -d include --cycles             # also list include cycles
  rootsense graph -d include -u                   # shareable viewer URL`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "Include tree to index (default: derived from 'root' on PATH)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatters.OutputFormatDOT.String(),
		fmt.Sprintf("Output format (%s, %s, %s)", formatters.OutputFormatDOT, formatters.OutputFormatJSON, formatters.OutputFormatMermaid))
	cmd.Flags().StringVar(&opts.parser, "parser", generator.ParserLine, "Include parser (line, syntax)")
	cmd.Flags().StringSliceVar(&opts.extensions, "ext", []string{".h"}, "File extensions to index (comma-separated, '*' for all)")
	cmd.Flags().StringSliceVar(&opts.excludes, "exclude", nil, "Glob patterns excluded from the scan (comma-separated)")
	cmd.Flags().BoolVar(&opts.showCycles, "cycles", false, "List include cycles after the graph")
	cmd.Flags().BoolVarP(&opts.generateURL, "url", "u", false, "Generate visualization URL (supported formats: dot, mermaid)")

	return cmd
}

func runGraph(cmd *cobra.Command, opts *graphOptions) error {
	includeDir, err := toolchain.LocateIncludeDir(opts.dir)
	if errors.Is(err, toolchain.ErrNotInstalled) {
		return fmt.Errorf("no 'root' executable on PATH; pass the include tree with --dir")
	}
	if err != nil {
		return err
	}

	formatter, err := formatters.NewFormatter(opts.format)
	if err != nil {
		return err
	}

	extractor, err := generator.NewExtractor(opts.parser)
	if err != nil {
		return err
	}

	files, err := scan.Scan(includeDir, scan.Options{
		Extensions:      opts.extensions,
		ExcludePatterns: opts.excludes,
	})
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no headers found under %s", includeDir)
	}

	reg := registry.New()
	targets := make([]resolve.Target, 0, len(files))
	for _, path := range files {
		reg.Insert(filepath.Base(path), path)
		rel, err := filepath.Rel(includeDir, path)
		if err != nil {
			return fmt.Errorf("failed to relativize %s: %w", path, err)
		}
		targets = append(targets, resolve.Target{Path: path, Rel: filepath.ToSlash(rel)})
	}

	ig, err := depgraph.Build(includeDir, targets, reg, extractor)
	if err != nil {
		return err
	}
	adjacency, err := ig.Adjacency()
	if err != nil {
		return err
	}

	label := fmt.Sprintf("%s • %d headers", filepath.Base(includeDir), len(targets))
	output, err := formatter.Format(formatters.Adjacency(adjacency), formatters.FormatOptions{Label: label})
	if err != nil {
		return fmt.Errorf("failed to format graph: %w", err)
	}

	out := cmd.OutOrStdout()
	if opts.generateURL {
		if urlStr, ok := formatter.GenerateURL(output); ok {
			fmt.Fprintln(out, urlStr)
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: URL generation is not supported for %s format\n\n", opts.format)
			fmt.Fprintln(out, output)
		}
	} else {
		fmt.Fprintln(out, output)
	}

	if opts.showCycles {
		cycles, err := ig.Cycles()
		if err != nil {
			return err
		}
		if len(cycles) == 0 {
			fmt.Fprintln(out, "No include cycles.")
		} else {
			fmt.Fprintf(out, "Include cycles (%d):\n", len(cycles))
			for _, cycle := range cycles {
				fmt.Fprintf(out, "  %s\n", strings.Join(cycle, " <-> "))
			}
		}
	}

	return nil
}
