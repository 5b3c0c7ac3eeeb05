// Package compose wires the rendering engine to concrete fonts, image
// loaders and a raster surface for the two execution environments:
// headless (CLI, server, watch) and interactive (browser preview).
//
// Both environments run the same render.Renderer on a canvas.Canvas, so a
// document renders to the same pixels in either one given the same fonts
// and images.
package compose

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/xob0t/stencilkit/pkg/assets"
	"github.com/xob0t/stencilkit/pkg/canvas"
	"github.com/xob0t/stencilkit/pkg/document"
	"github.com/xob0t/stencilkit/pkg/fonts"
	"github.com/xob0t/stencilkit/pkg/render"
)

// MaxPixels bounds the output size of a single render.
const MaxPixels = 64 << 20

// Config holds engine parameters. Zero values select defaults.
type Config struct {
	Fonts    *fonts.Registry // nil: builtin Go fonts
	FontDirs []string        // extra font directories loaded at start

	Store   *assets.Store // interactive only; nil: a new empty store
	Fetcher assets.FetcherOptions
	Cache   *assets.Cache // nil: a new cache, shared by all renders

	// AvailableFonts seeds the interactive font checker. nil means the
	// registry's families.
	AvailableFonts []string
	FallbackFont   string

	Logger *slog.Logger // nil: render.Logger()
}

// RenderOptions are per-render settings.
type RenderOptions struct {
	Scale      float64 // <= 0 means 1
	Background string  // overrides the document background when set
}

// Engine renders documents to images. It is safe for concurrent use; each
// Render gets its own surface.
type Engine struct {
	fonts   *fonts.Registry
	store   *assets.Store
	cache   *assets.Cache
	loader  render.ImageLoader
	checker render.FontChecker
	match   *fonts.MatchChecker
	logger  *slog.Logger
}

func newEngine(cfg Config) (*Engine, error) {
	reg := cfg.Fonts
	if reg == nil {
		reg = fonts.New()
	}
	for _, dir := range cfg.FontDirs {
		names, err := reg.LoadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("load fonts from %s: %w", dir, err)
		}
		render.Logger().Debug("fonts loaded", "dir", dir, "families", names)
	}
	cache := cfg.Cache
	if cache == nil {
		cache = assets.NewCache()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = render.Logger()
	}
	return &Engine{fonts: reg, cache: cache, logger: logger}, nil
}

// NewHeadless returns an engine that checks fonts against the registry and
// loads images over HTTP, from data URLs and from the local filesystem.
func NewHeadless(cfg Config) (*Engine, error) {
	e, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}
	e.checker = e.fonts
	e.store = cfg.Store
	fetcher := assets.NewFetcher(cfg.Fetcher)
	if e.store != nil {
		e.loader = assets.Chain{e.store, fetcher}
	} else {
		e.loader = fetcher
	}
	return e, nil
}

// NewInteractive returns an engine that resolves images from an in-memory
// asset store before falling back to the network, and validates fonts by
// fuzzy matching against a client-reported family list.
func NewInteractive(cfg Config) (*Engine, error) {
	e, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}
	e.store = cfg.Store
	if e.store == nil {
		e.store = assets.NewStore()
	}
	available := cfg.AvailableFonts
	if available == nil {
		available = e.fonts.Families()
	}
	e.match = fonts.NewMatchChecker(available, cfg.FallbackFont)
	e.checker = e.match
	e.loader = assets.Chain{e.store, assets.NewFetcher(cfg.Fetcher)}
	return e, nil
}

// Fonts returns the font registry used for drawing.
func (e *Engine) Fonts() *fonts.Registry { return e.fonts }

// Assets returns the asset store, or nil for a headless engine without one.
func (e *Engine) Assets() *assets.Store { return e.store }

// Cache returns the image cache shared by renders.
func (e *Engine) Cache() *assets.Cache { return e.cache }

// RegisterFont adds font data to the registry and, for an interactive
// engine, to the list of available families.
func (e *Engine) RegisterFont(name string, data []byte) (string, error) {
	family, err := e.fonts.Register(name, data)
	if err != nil {
		return "", err
	}
	if e.match != nil {
		e.match.SetAvailable(e.fonts.Families())
	}
	e.logger.Info("font registered", "family", family)
	return family, nil
}

// SetAvailableFonts replaces the family list of an interactive engine. It is
// a no-op for headless engines.
func (e *Engine) SetAvailableFonts(families []string) {
	if e.match != nil {
		e.match.SetAvailable(families)
	}
}

// Render draws doc with fields applied and returns the image. On error no
// image is returned.
func (e *Engine) Render(ctx context.Context, doc *document.Document, fields document.FieldValues, opts RenderOptions) (*image.RGBA, error) {
	if doc == nil {
		return nil, render.ErrNilDocument
	}
	r := render.NewRenderer(render.Options{
		ScaleFactor:     opts.Scale,
		ImageLoader:     e.loader,
		ImageCache:      e.cache,
		FontChecker:     e.checker,
		BackgroundColor: opts.Background,
		Logger:          e.logger,
	})

	w, h := r.CanvasSize(doc)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", w, h)
	}
	if w*h > MaxPixels {
		return nil, fmt.Errorf("canvas %dx%d exceeds %d pixels", w, h, MaxPixels)
	}

	c := canvas.New(w, h, e.fonts)
	if err := r.Render(ctx, c, doc, fields); err != nil {
		return nil, err
	}
	e.logger.Debug("rendered", "width", w, "height", h, "layers", len(doc.Layers))
	return c.Image(), nil
}
