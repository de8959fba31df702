package driver

import (
	"io"
	"log"
	"os"
)

// newLogger returns a package-level-style *log.Logger writing to stderr,
// gated by verbose exactly as the teacher's cmd/orizon-compiler and
// cmd/orizon-smoke-test binaries do: the standard library log package
// directly, no third-party logging library. A non-verbose logger discards
// everything rather than being nil, so call sites never need a nil check.
func newLogger(verbose bool) *log.Logger {
	var w io.Writer = io.Discard
	if verbose {
		w = os.Stderr
	}

	return log.New(w, "bmbc: ", log.Ltime)
}
