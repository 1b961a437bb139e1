// Package cli implements the kintree command-line interface.
//
// Members live in a store chosen by the settings file (SQLite by default,
// or a directory of JSON files, MongoDB, or memory for experiments). The
// commands manage members and view settings, lay the tree out, render it,
// browse it in the terminal and serve it over HTTP.
//
// # Commands
//
//   - member: list, add, rm, import and export members
//   - config: show and set view settings, reset-view drops saved transforms
//   - layout: write node positions and connectors as JSON
//   - render: generate SVG, JSON, DOT, Graphviz SVG, PNG or PDF
//   - view: interactive terminal viewer (pan, zoom, fit, move the title)
//   - serve: HTTP API and Prometheus metrics
//   - cache: clear or locate the layout cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Each command
// receives a logger prefixed with its name through context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger. Timestamps look like "14:32:01.45".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took. Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with keyvals and the elapsed time rounded to milliseconds,
// e.g. "Rendered formats count=3 elapsed=12ms".
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// commandLogger returns base prefixed with the command path below the root,
// e.g. "member import".
func commandLogger(base *log.Logger, path string) *log.Logger {
	if path == "" {
		return base
	}
	return base.WithPrefix(path)
}

// loggerFromContext returns the logger attached by withLogger, or a logger
// that discards everything.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.NewWithOptions(io.Discard, log.Options{})
}
