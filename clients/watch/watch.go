// Package watch re-renders a document whenever its files change, for live
// preview in an image viewer that reloads on change.
package watch

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/xob0t/stencilkit/pkg/compose"
	"github.com/xob0t/stencilkit/pkg/document"
	"github.com/xob0t/stencilkit/pkg/generator"
	"github.com/xob0t/stencilkit/pkg/render"
)

// DefaultDebounce coalesces bursts of file events into one render.
const DefaultDebounce = 150 * time.Millisecond

// Config holds watcher parameters.
type Config struct {
	DocPath    string
	FieldsPath string // optional
	Output     string // image file rewritten after every good render

	Scale      float64
	Background string
	Debounce   time.Duration

	Engine *compose.Engine // nil: a headless engine
	Logger *slog.Logger    // nil: render.Logger()

	// OnRender is called after every render attempt. A failed attempt
	// passes the error and the last good frame.
	OnRender func(img image.Image, err error)
}

// Watcher renders a document to a file and keeps the last good frame.
type Watcher struct {
	cfg    Config
	engine *compose.Engine
	logger *slog.Logger

	mu    sync.Mutex
	last  *image.RGBA
	files map[string]bool // absolute paths that trigger a render
}

// New validates cfg and applies defaults.
func New(cfg Config) (*Watcher, error) {
	if cfg.DocPath == "" || cfg.Output == "" {
		return nil, errors.New("watch: document and output paths are required")
	}
	if _, err := generator.ParseFormat(filepath.Ext(cfg.Output)); err != nil {
		return nil, err
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	engine := cfg.Engine
	if engine == nil {
		var err error
		engine, err = compose.NewHeadless(compose.Config{Logger: cfg.Logger})
		if err != nil {
			return nil, err
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = render.Logger()
	}
	return &Watcher{cfg: cfg, engine: engine, logger: logger, files: make(map[string]bool)}, nil
}

// Last returns the last successfully rendered frame, or nil.
func (w *Watcher) Last() *image.RGBA {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

// RenderOnce loads the document and fields, renders and writes the output.
// On failure the output file and Last are left untouched.
func (w *Watcher) RenderOnce(ctx context.Context) error {
	img, err := w.render(ctx)
	if err == nil {
		err = w.write(img)
	}

	w.mu.Lock()
	if err == nil {
		w.last = img
	}
	last := w.last
	w.mu.Unlock()

	if err != nil {
		w.logger.Error("render failed, keeping last frame", "err", err)
	} else {
		w.logger.Info("rendered", "output", w.cfg.Output)
	}
	if w.cfg.OnRender != nil {
		if last == nil {
			w.cfg.OnRender(nil, err)
		} else {
			w.cfg.OnRender(last, err)
		}
	}
	return err
}

func (w *Watcher) render(ctx context.Context) (*image.RGBA, error) {
	doc, cleanup, err := document.Load(w.cfg.DocPath)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var fields document.FieldValues
	if w.cfg.FieldsPath != "" {
		var warnings []string
		fields, warnings, err = document.LoadFields(w.cfg.FieldsPath)
		if err != nil {
			return nil, err
		}
		for _, msg := range append(warnings, document.ValidateFields(fields, doc)...) {
			w.logger.Warn(msg)
		}
	}
	w.trackImages(doc)

	return w.engine.Render(ctx, doc, fields, compose.RenderOptions{
		Scale:      w.cfg.Scale,
		Background: w.cfg.Background,
	})
}

// write replaces the output file atomically so viewers never see a
// partial image.
func (w *Watcher) write(img image.Image) error {
	dir, base := filepath.Split(w.cfg.Output)
	tmp := filepath.Join(dir, "."+base+".tmp"+filepath.Ext(base))
	if err := generator.Generate(tmp, img, generator.Config{}); err != nil {
		return err
	}
	if err := os.Rename(tmp, w.cfg.Output); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", w.cfg.Output, err)
	}
	return nil
}

// trackImages records the local image files of doc so edits to them also
// trigger a render.
func (w *Watcher) trackImages(doc *document.Document) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, l := range doc.Layers {
		if l.Type.ImageCapable() && filepath.IsAbs(l.FileURL) {
			w.files[filepath.Clean(l.FileURL)] = true
		}
	}
}

func (w *Watcher) watched(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[filepath.Clean(name)]
}

// Run renders once, then again after every change to the watched files,
// until ctx is cancelled. Render failures are logged and do not stop it.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer fw.Close()

	// Editors often save by renaming over the target, so directories are
	// watched rather than files.
	dirs := make(map[string]bool)
	addFile := func(path string) error {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		w.mu.Lock()
		w.files[abs] = true
		w.mu.Unlock()
		dir := filepath.Dir(abs)
		if dirs[dir] {
			return nil
		}
		dirs[dir] = true
		return fw.Add(dir)
	}
	for _, p := range []string{w.cfg.DocPath, w.cfg.FieldsPath} {
		if p == "" {
			continue
		}
		if err := addFile(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
	}

	w.RenderOnce(ctx)
	w.watchImageDirs(fw, dirs)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 || !w.watched(ev.Name) {
				continue
			}
			w.logger.Debug("file changed", "name", ev.Name, "op", ev.Op.String())
			w.engine.Cache().Forget(filepath.Clean(ev.Name))
			timer.Reset(w.cfg.Debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "err", err)

		case <-timer.C:
			w.RenderOnce(ctx)
			w.watchImageDirs(fw, dirs)
		}
	}
}

// watchImageDirs adds the directories of newly tracked image files.
func (w *Watcher) watchImageDirs(fw *fsnotify.Watcher, dirs map[string]bool) {
	w.mu.Lock()
	var add []string
	for f := range w.files {
		if dir := filepath.Dir(f); !dirs[dir] {
			dirs[dir] = true
			add = append(add, dir)
		}
	}
	w.mu.Unlock()
	for _, dir := range add {
		if err := fw.Add(dir); err != nil {
			w.logger.Warn("cannot watch image directory", "dir", dir, "err", err)
		}
	}
}

// RunWatch parses flags and runs a watcher until ctx is cancelled.
func RunWatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	var (
		cfg      Config
		logLevel string
		fontDir  string
	)
	fs.StringVar(&cfg.DocPath, "doc", "", "Path to document JSON or .skbundle")
	fs.StringVar(&cfg.FieldsPath, "fields", "", "Path to fields JSON (optional)")
	fs.StringVar(&cfg.Output, "o", "preview.png", "Output image path")
	fs.Float64Var(&cfg.Scale, "scale", 1, "Scale factor")
	fs.StringVar(&cfg.Background, "bg", "", "Background color override")
	fs.DurationVar(&cfg.Debounce, "debounce", DefaultDebounce, "Delay before re-rendering after a change")
	fs.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fs.StringVar(&fontDir, "fonts", "", "Font directory to load")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cfg.DocPath == "" {
		return errors.New("--doc is required for watch command")
	}

	logger, err := compose.InstallLogger(os.Stderr, logLevel)
	if err != nil {
		return err
	}
	ecfg := compose.Config{Logger: logger}
	if fontDir != "" {
		ecfg.FontDirs = []string{fontDir}
	}
	if cfg.Engine, err = compose.NewHeadless(ecfg); err != nil {
		return err
	}
	cfg.Logger = logger

	w, err := New(cfg)
	if err != nil {
		return err
	}
	logger.Info("watching", "doc", cfg.DocPath, "fields", cfg.FieldsPath, "output", cfg.Output)
	return w.Run(ctx)
}
