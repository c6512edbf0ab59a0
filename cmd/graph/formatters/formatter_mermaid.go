package formatters

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// MermaidFormatter formats include graphs as Mermaid.js flowcharts.
type MermaidFormatter struct{}

// Format converts the include graph to Mermaid.js flowchart format.
func (f *MermaidFormatter) Format(g Adjacency, opts FormatOptions) (string, error) {
	var sb strings.Builder

	// Add title if label provided
	if opts.Label != "" {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("title: %s\n", opts.Label))
		sb.WriteString("---\n")
	}

	sb.WriteString("flowchart LR\n")

	// Mermaid node IDs can't have dots or slashes, so every node gets a
	// synthetic ID and its display name becomes the label.
	nodes := collectNodes(g)
	names := BuildNodeNames(nodes)
	nodeIDs := make(map[string]string, len(nodes))
	for i, node := range nodes {
		nodeIDs[node] = fmt.Sprintf("n%d", i)
	}

	for _, node := range nodes {
		label := strings.ReplaceAll(names[node], "\"", "#quot;")
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", nodeIDs[node], label))
	}

	for _, source := range nodes {
		for _, dep := range g[source] {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", nodeIDs[source], nodeIDs[dep]))
		}
	}

	return sb.String(), nil
}

// GenerateURL creates a mermaid.live URL with the flowchart embedded.
func (f *MermaidFormatter) GenerateURL(output string) (string, bool) {
	payload := map[string]any{
		"code":    output,
		"mermaid": map[string]string{"theme": "default"},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", false
	}
	encoded := base64.URLEncoding.EncodeToString(data)
	return fmt.Sprintf("https://mermaid.live/edit#base64:%s", encoded), true
}
