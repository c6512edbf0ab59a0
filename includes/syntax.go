package includes

import (
	"context"
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
)

// SyntaxExtractor extracts includes from a real parse of the file instead of
// a line scan. Unlike LineExtractor it does not pick up directives inside
// comments, at the cost of parsing the whole file.
type SyntaxExtractor struct{}

// Extract returns the file's quoted include targets in source order.
func (SyntaxExtractor) Extract(path string) ([]string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return parseSyntaxIncludes(source)
}

func parseSyntaxIncludes(source []byte) ([]string, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(cpp.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source: %w", err)
	}
	defer tree.Close()

	var targets []string
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "preproc_include" {
			if target, ok := quotedTarget(n, source); ok {
				targets = append(targets, target)
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(tree.RootNode())
	return targets, nil
}

// quotedTarget returns the include's target if it is the quoted form.
// System (angle-bracket) includes are skipped, as is anything with internal
// whitespace, keeping the contract identical to LineExtractor.
func quotedTarget(node *sitter.Node, source []byte) (string, bool) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil || child.Type() != "string_literal" {
			continue
		}
		target := strings.TrimSpace(strings.Trim(child.Content(source), `"`))
		if target == "" || strings.ContainsAny(target, " \t") {
			return "", false
		}
		return target, true
	}
	return "", false
}
