// Package depgraph builds the directed include graph of a header tree for
// inspection and export. It is reporting machinery on top of the same
// registry and extractor the resolver uses; resolution itself never builds
// an explicit graph.
package depgraph

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	graphlib "github.com/dominikbraun/graph"

	"github.com/hepsoft/rootsense/includes"
	"github.com/hepsoft/rootsense/registry"
	"github.com/hepsoft/rootsense/resolve"
)

// IncludeGraph is a directed graph of header files. Nodes are paths
// relative to the include root (forward slashes) for files under it, and
// absolute paths for files resolved elsewhere. Edges point from an
// including file to each registered file it includes; includes that match
// nothing in the registry produce no edge.
type IncludeGraph struct {
	Graph graphlib.Graph[string, string]
}

// Build extracts the includes of every target and assembles the graph.
func Build(root string, targets []resolve.Target, reg *registry.Registry, ext includes.Extractor) (*IncludeGraph, error) {
	g := graphlib.New(graphlib.StringHash, graphlib.Directed())

	for _, target := range targets {
		if err := addVertex(g, target.Rel); err != nil {
			return nil, err
		}

		rawTargets, err := ext.Extract(target.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to extract includes of %s: %w", target.Path, err)
		}

		for _, raw := range rawTargets {
			child, getErr := reg.Get(filepath.Base(filepath.FromSlash(raw)))
			if getErr != nil {
				continue
			}
			childNode := nodeName(root, child.Path)
			if err := addVertex(g, childNode); err != nil {
				return nil, err
			}
			if err := g.AddEdge(target.Rel, childNode); err != nil &&
				!errors.Is(err, graphlib.ErrEdgeAlreadyExists) {
				return nil, fmt.Errorf("failed to add edge %s -> %s: %w", target.Rel, childNode, err)
			}
		}
	}

	return &IncludeGraph{Graph: g}, nil
}

// Adjacency returns the graph as a map from node to its sorted dependency
// list, with every node present as a key.
func (ig *IncludeGraph) Adjacency() (map[string][]string, error) {
	adjacencyMap, err := ig.Graph.AdjacencyMap()
	if err != nil {
		return nil, fmt.Errorf("failed to read adjacency map: %w", err)
	}

	adjacency := make(map[string][]string, len(adjacencyMap))
	for node, edges := range adjacencyMap {
		deps := make([]string, 0, len(edges))
		for dep := range edges {
			deps = append(deps, dep)
		}
		sort.Strings(deps)
		adjacency[node] = deps
	}
	return adjacency, nil
}

// Cycles returns the include cycles: every strongly connected component
// with more than one member, plus self-includes. Members are sorted and
// the components ordered by first member, for deterministic output.
func (ig *IncludeGraph) Cycles() ([][]string, error) {
	components, err := graphlib.StronglyConnectedComponents(ig.Graph)
	if err != nil {
		return nil, fmt.Errorf("failed to compute components: %w", err)
	}

	adjacency, err := ig.Adjacency()
	if err != nil {
		return nil, err
	}

	var cycles [][]string
	for _, component := range components {
		if len(component) > 1 {
			sorted := append([]string(nil), component...)
			sort.Strings(sorted)
			cycles = append(cycles, sorted)
			continue
		}
		node := component[0]
		for _, dep := range adjacency[node] {
			if dep == node {
				cycles = append(cycles, []string{node})
				break
			}
		}
	}

	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles, nil
}

func addVertex(g graphlib.Graph[string, string], node string) error {
	if err := g.AddVertex(node); err != nil && !errors.Is(err, graphlib.ErrVertexAlreadyExists) {
		return fmt.Errorf("failed to add vertex %s: %w", node, err)
	}
	return nil
}

func nodeName(root, path string) string {
	prefix := filepath.Clean(root) + string(filepath.Separator)
	if strings.HasPrefix(path, prefix) {
		return filepath.ToSlash(strings.TrimPrefix(path, prefix))
	}
	return path
}
