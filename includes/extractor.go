// Package includes extracts quoted #include targets from header files.
//
// Only the `#include "..."` form is extracted. Angle-bracket includes name
// system or toolchain headers outside the registry's resolution model and
// are ignored. A quoted target with internal whitespace is almost always a
// comment that happens to match the pattern, so it is discarded rather than
// returned.
package includes

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

const directiveToken = "#include"

// Extractor extracts include targets from a file. Implementations return an
// error only for I/O failures; malformed directives are skipped.
type Extractor interface {
	Extract(path string) ([]string, error)
}

// LineExtractor scans a file line by line for include directives. This is
// the default extractor: fast, and deliberately not a preprocessor, so it does
// not evaluate macro guards and does not strip comments.
type LineExtractor struct{}

// Extract returns the file's quoted include targets in source order.
func (LineExtractor) Extract(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var targets []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if target, ok := parseIncludeLine(scanner.Text()); ok {
			targets = append(targets, target)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return targets, nil
}

// parseIncludeLine extracts the quoted target from one source line, if any.
func parseIncludeLine(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, directiveToken) {
		return "", false
	}
	if !strings.ContainsAny(line, `"<`) {
		return "", false
	}

	// Quoted form only: take the text between the first pair of quotes.
	first := strings.IndexByte(line, '"')
	if first < 0 {
		return "", false
	}
	rest := line[first+1:]
	second := strings.IndexByte(rest, '"')
	if second < 0 {
		return "", false
	}

	target := strings.TrimSpace(rest[:second])
	if target == "" || strings.ContainsAny(target, " \t") {
		return "", false
	}
	return target, true
}
