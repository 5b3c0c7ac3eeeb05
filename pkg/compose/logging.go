// logging.go - Log level parsing and logger installation.
package compose

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xob0t/stencilkit/pkg/render"
)

// ParseLevel maps "debug", "info", "warn" or "error" to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

// InstallLogger creates a text logger writing to w at the given level and
// makes it the default for slog and the render packages.
func InstallLogger(w io.Writer, level string) (*slog.Logger, error) {
	l, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
	slog.SetDefault(logger)
	render.SetLogger(logger)
	return logger, nil
}
