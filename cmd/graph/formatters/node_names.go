package formatters

import (
	"path"
	"strings"
)

// BuildNodeNames returns stable, distinct display names for graph nodes.
// Most headers are shown by base name alone; headers that share a base name
// (TH1.h under hist/ and gui/, say) are disambiguated by increasing path
// suffix depth until all names in the group differ.
func BuildNodeNames(nodes []string) map[string]string {
	names := make(map[string]string, len(nodes))
	groupedByBase := make(map[string][]string, len(nodes))
	for _, node := range nodes {
		base := path.Base(node)
		groupedByBase[base] = append(groupedByBase[base], node)
	}

	for base, group := range groupedByBase {
		if len(group) == 1 {
			names[group[0]] = base
			continue
		}

		for depth := 2; ; depth++ {
			suffixCounts := make(map[string]int, len(group))
			for _, node := range group {
				suffixCounts[pathSuffix(node, depth)]++
			}

			allDistinct := true
			for _, node := range group {
				if suffixCounts[pathSuffix(node, depth)] > 1 {
					allDistinct = false
					break
				}
			}
			if !allDistinct && depth < maxSuffixDepth(group) {
				continue
			}

			for _, node := range group {
				names[node] = pathSuffix(node, depth)
			}
			break
		}
	}

	return names
}

func pathSuffix(p string, depth int) string {
	parts := strings.Split(strings.TrimPrefix(path.Clean(p), "/"), "/")
	if depth > len(parts) {
		depth = len(parts)
	}
	return strings.Join(parts[len(parts)-depth:], "/")
}

func maxSuffixDepth(nodes []string) int {
	max := 1
	for _, node := range nodes {
		n := strings.Count(strings.TrimPrefix(path.Clean(node), "/"), "/") + 1
		if n > max {
			max = n
		}
	}
	return max
}
