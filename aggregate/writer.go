// Package aggregate writes the flattened header: one include directive per
// resolvable file, wrapped in an include guard.
package aggregate

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Write emits the aggregate header to w. relPaths are include-root-relative
// paths with forward slashes, in the order they should appear. It returns
// the number of include directives written.
func Write(w io.Writer, guard string, relPaths []string) (int, error) {
	if _, err := fmt.Fprintf(w, "#ifndef %s\n#define %s\n\n", guard, guard); err != nil {
		return 0, err
	}

	lines := 0
	for _, rel := range relPaths {
		if _, err := fmt.Fprintf(w, "#include %q\n", rel); err != nil {
			return lines, err
		}
		lines++
	}

	if _, err := io.WriteString(w, "\n#endif\n"); err != nil {
		return lines, err
	}
	return lines, nil
}

// GuardName derives an include-guard macro from an output file name:
// extension dropped, upper-cased, anything outside [A-Z0-9] mapped to an
// underscore. "rootsense.h" becomes "ROOTSENSE".
func GuardName(outputName string) string {
	base := filepath.Base(outputName)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	var sb strings.Builder
	for _, r := range strings.ToUpper(base) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "ROOTSENSE"
	}
	return sb.String()
}
