package formatters

// Adjacency is a rendered include graph: each node maps to the nodes it
// includes, in sorted order. Nodes inside the indexed tree are root-relative
// paths, nodes outside it are absolute paths.
type Adjacency map[string][]string

// FormatOptions contains optional parameters for formatting include graphs.
type FormatOptions struct {
	// Label is an optional title or label for the graph
	Label string
}

// Formatter is the interface that all graph formatters must implement.
type Formatter interface {
	// Format converts an include graph to a formatted string representation.
	Format(g Adjacency, opts FormatOptions) (string, error)
	// GenerateURL wraps formatted output in a shareable visualization URL.
	// The second return value is false when the format has no viewer.
	GenerateURL(output string) (string, bool)
}
