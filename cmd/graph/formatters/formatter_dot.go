package formatters

import (
	"fmt"
	"net/url"
	"path/filepath"
	"sort"
	"strings"
)

// DOTFormatter formats include graphs as Graphviz DOT.
type DOTFormatter struct{}

// Format converts the include graph to Graphviz DOT format. Nodes and edges
// are emitted in sorted order so the output is stable across runs.
func (f *DOTFormatter) Format(g Adjacency, opts FormatOptions) (string, error) {
	var sb strings.Builder
	sb.WriteString("digraph includes {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box];\n")

	// Add label if provided
	if opts.Label != "" {
		sb.WriteString(fmt.Sprintf("  label=%q;\n", opts.Label))
		sb.WriteString("  labelloc=t;\n")
		sb.WriteString("  labeljust=l;\n")
		sb.WriteString("  fontsize=10;\n")
		sb.WriteString("  fontname=Courier;\n")
	}
	sb.WriteString("\n")

	nodes := collectNodes(g)
	names := BuildNodeNames(nodes)

	// Headers pulled in from outside the indexed tree carry absolute
	// paths; tint them so they stand out.
	for _, node := range nodes {
		color := "white"
		if filepath.IsAbs(node) {
			color = "lightsalmon"
		}
		sb.WriteString(fmt.Sprintf("  %q [label=%q, style=filled, fillcolor=%s];\n", node, names[node], color))
	}
	if len(nodes) > 0 {
		sb.WriteString("\n")
	}

	sources := make([]string, 0, len(g))
	for source := range g {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	for _, source := range sources {
		for _, dep := range g[source] {
			sb.WriteString(fmt.Sprintf("  %q -> %q;\n", source, dep))
		}
	}

	sb.WriteString("}")
	return sb.String(), nil
}

// GenerateURL creates a GraphvizOnline URL with the DOT graph embedded.
func (f *DOTFormatter) GenerateURL(output string) (string, bool) {
	encoded := url.PathEscape(output)
	return fmt.Sprintf("https://dreampuf.github.io/GraphvizOnline/?engine=dot#%s", encoded), true
}

// collectNodes returns every node mentioned in the graph, as source or
// dependency, sorted and without duplicates.
func collectNodes(g Adjacency) []string {
	seen := make(map[string]bool, len(g))
	for source, deps := range g {
		seen[source] = true
		for _, dep := range deps {
			seen[dep] = true
		}
	}

	nodes := make([]string, 0, len(seen))
	for node := range seen {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	return nodes
}
