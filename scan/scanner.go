// Package scan enumerates candidate header files under a root directory.
package scan

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// Wildcard in Options.Extensions admits every extension.
const Wildcard = "*"

const defaultWorkers = 8

// Options controls which files a scan keeps.
type Options struct {
	// Extensions lists the admitted file extensions (with leading dot).
	// If it contains Wildcard, every file passes the extension check.
	Extensions []string
	// IncludeExtensionless admits files without an extension, provided a
	// content sniff finds plain text.
	IncludeExtensionless bool
	// ExcludePatterns are doublestar globs matched against the path
	// relative to the scan root (forward slashes). Matching files are
	// dropped; matching directories are skipped entirely.
	ExcludePatterns []string
	// Workers bounds the pool sniffing extensionless files. Zero means a
	// small default.
	Workers int
	// Progress, when set, is called after each candidate is classified.
	Progress func(done, total int)
}

// Scan walks root recursively and returns the kept file paths in walk
// (lexical) order. Only the plain-text sniff runs in parallel; everything
// else stays on the walking goroutine, so callers can insert the results
// into a registry without locking.
func Scan(root string, opts Options) ([]string, error) {
	for _, pattern := range opts.ExcludePatterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	wildcard := false
	allowed := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		if ext == Wildcard {
			wildcard = true
			continue
		}
		allowed[ext] = true
	}

	var candidates []string
	var needsSniff []int

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path != root && excluded(rel, opts.ExcludePatterns) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || excluded(rel, opts.ExcludePatterns) {
			return nil
		}

		ext := filepath.Ext(path)
		switch {
		case wildcard, allowed[ext]:
			candidates = append(candidates, path)
		case ext == "" && opts.IncludeExtensionless:
			candidates = append(candidates, path)
			needsSniff = append(needsSniff, len(candidates)-1)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	keep := sniffCandidates(candidates, needsSniff, opts.Workers)

	result := make([]string, 0, len(candidates))
	for i, path := range candidates {
		if keep[i] {
			result = append(result, path)
		}
		if opts.Progress != nil {
			opts.Progress(i+1, len(candidates))
		}
	}
	return result, nil
}

// sniffCandidates marks which candidates survive the plain-text check.
// Files that did not need sniffing are kept unconditionally.
func sniffCandidates(candidates []string, needsSniff []int, workers int) []bool {
	keep := make([]bool, len(candidates))
	for i := range keep {
		keep[i] = true
	}
	if len(needsSniff) == 0 {
		return keep
	}

	if workers <= 0 {
		workers = defaultWorkers
	}
	if workers > len(needsSniff) {
		workers = len(needsSniff)
	}

	jobs := make(chan int, len(needsSniff))
	for _, idx := range needsSniff {
		jobs <- idx
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				keep[idx] = isPlainText(candidates[idx])
			}
		}()
	}
	wg.Wait()
	return keep
}

func excluded(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
			return true
		}
	}
	return false
}

// sniffLen caps how much of a file the text sniff reads.
const sniffLen = 512

// isPlainText reads a small prefix and reports whether it looks like text:
// no NUL bytes and no bytes outside the printable ASCII range plus common
// whitespace. Unreadable files are treated as not text.
func isPlainText(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return false
	}

	for _, b := range buf[:n] {
		if b == '\t' || b == '\n' || b == '\r' {
			continue
		}
		if b < 0x20 || b > 0x7e {
			return false
		}
	}
	return true
}
