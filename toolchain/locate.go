// Package toolchain locates the ROOT installation whose headers are being
// flattened. This is glue around PATH lookup: the rest of the tool only
// needs a resolved include directory.
package toolchain

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// ErrNotInstalled is returned when the root executable cannot be found on
// PATH. It is fatal: without an installation there is nothing to scan.
var ErrNotInstalled = errors.New("root installation not found; make sure root is installed and on your PATH")

// DefaultSystemPaths are the conventional locations searched for headers
// included from outside the primary tree.
var DefaultSystemPaths = []string{
	"/usr/include",
	"/usr/local/include",
	"/usr/lib",
	"/lib/modules",
}

// LocateIncludeDir finds the ROOT include directory. An explicit dir wins;
// otherwise the `root` executable is looked up on PATH and the include
// directory is derived from the installation prefix (bin/root ->
// <prefix>/include).
func LocateIncludeDir(dir string) (string, error) {
	if dir != "" {
		return verifyDir(dir)
	}

	exe, err := exec.LookPath("root")
	if err != nil {
		return "", ErrNotInstalled
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", exe, err)
	}

	prefix := filepath.Dir(filepath.Dir(exe))
	return verifyDir(filepath.Join(prefix, "include"))
}

func verifyDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("include directory %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("include directory %s is not a directory", abs)
	}
	return abs, nil
}

// ExistingSystemPaths filters paths down to directories present on this
// machine, so scans do not fail on hosts without, say, /lib/modules.
func ExistingSystemPaths(paths []string) []string {
	var existing []string
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			existing = append(existing, p)
		}
	}
	return existing
}
