// logger.go - Package logger, silent by default.
package render

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards all records; Enabled returns false so callers skip
// formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the default logger of the render package and the
// packages built on it. By default nothing is logged. Pass nil to restore
// the silent default. Options.Logger overrides it per Renderer.
//
// Levels used:
//   - [slog.LevelDebug]: skipped layers, font fallbacks, cache hits
//   - [slog.LevelWarn]: malformed style values replaced by defaults
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the package default logger. Safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
