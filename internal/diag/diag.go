// Package diag holds the host's operator-facing diagnostic output: the
// non-fatal warnings emitted when something individually recoverable
// goes wrong (a component skipped during startup rebuild). Warnings go
// straight to stderr; there is no hook to redirect or silence them.
package diag

import (
	"fmt"
	"os"
)

// Warnf writes a warning line to stderr, prefixed "warning: ".
func Warnf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}
