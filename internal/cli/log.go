// Package cli implements the ziplock command-line interface.
//
// The commands read a package.json, resolve it into a nested dependency
// tree and either print the tree, persist it as a lock, or serve the same
// operations over HTTP:
//
//   - tree: resolve a manifest and print the tree as JSON, text, DOT or SVG
//   - lock: resolve a manifest and save it to the configured lock store
//   - serve: run the HTTP API with Prometheus metrics
//   - cache: inspect and clear the registry response cache
//
// All commands accept --verbose (-v) for debug logging and --config to
// point at a TOML settings file.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger that timestamps lines as "HH:MM:SS.ms".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs completion of an operation with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Resolved 42 packages (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
