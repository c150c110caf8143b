// Package logging wires hornqual's structured logger: named, leveled,
// occasionally key/value-tagged output for the pipeline stages that log
// (unroller, Or-expander, qualifier extractor, SMT driver, CLI).
package logging

import (
	"io"
	"os"

	hclog "github.com/hashicorp/go-hclog"
)

// New builds the root logger for a hornqual run, named "hornqual" with the
// given minimum level ("debug", "info", "warn", "error").
func New(level string, out io.Writer) hclog.Logger {
	if out == nil {
		out = os.Stderr
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:  "hornqual",
		Level: hclog.LevelFromString(level),
		Output: out,
	})
}

// Named returns a sub-logger scoped to a pipeline component, e.g.
// Named(root, "unroll") for the unroller.
func Named(root hclog.Logger, component string) hclog.Logger {
	return root.Named(component)
}
