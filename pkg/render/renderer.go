// Package render paints a document onto a Surface. Painting is
// deterministic: the same document, fields, assets and surface produce the
// same drawing calls in the same order.
package render

import (
	"context"
	"log/slog"
	"math"

	"github.com/xob0t/stencilkit/pkg/document"
)

// Options configures a Renderer. The zero value renders at scale 1 with a
// per-render image cache, no image loader and no font checking.
type Options struct {
	// ScaleFactor multiplies every geometric quantity. Zero means 1.
	ScaleFactor float64
	ImageLoader ImageLoader
	// ImageCache is shared across renders when set.
	ImageCache  ImageCache
	FontChecker FontChecker
	// BackgroundColor, when set, replaces the document canvas background.
	BackgroundColor string
	Logger          *slog.Logger
}

// Renderer paints documents. It holds no per-render state and is safe for
// concurrent use when its adapters are.
type Renderer struct {
	opts Options
}

// NewRenderer returns a renderer with defaults applied.
func NewRenderer(opts Options) *Renderer {
	if opts.ScaleFactor <= 0 || math.IsNaN(opts.ScaleFactor) || math.IsInf(opts.ScaleFactor, 0) {
		opts.ScaleFactor = 1
	}
	return &Renderer{opts: opts}
}

// Scale returns the effective scale factor.
func (r *Renderer) Scale() float64 { return r.opts.ScaleFactor }

// CanvasSize returns the pixel size of doc at the renderer's scale.
func (r *Renderer) CanvasSize(doc *document.Document) (w, h int) {
	s := r.opts.ScaleFactor
	return int(math.Round(doc.Canvas.Width * s)), int(math.Round(doc.Canvas.Height * s))
}

// painter draws one resolved layer. The surface origin is the layer's
// top-left corner and g holds the scaled box.
type painter func(ctx context.Context, s Surface, env *renderEnv, l *document.Layer, g geometry) error

var painters = map[document.LayerType]painter{
	document.LayerText:     paintText,
	document.LayerImage:    paintImage,
	document.LayerLogo:     paintImage,
	document.LayerElement:  paintElement,
	document.LayerGradient: paintGradient,
}

// renderEnv is the state of a single Render call.
type renderEnv struct {
	cache  ImageCache
	loader ImageLoader
	fonts  FontChecker
	logger *slog.Logger

	families map[string]string // requested -> checked family
}

// fontFamily returns the family to measure and draw with. Each family is
// checked once per render.
func (env *renderEnv) fontFamily(ctx context.Context, family string) string {
	if family == "" {
		return DefaultFontFamily
	}
	if f, ok := env.families[family]; ok {
		return f
	}

	resolved := family
	if env.fonts != nil {
		v := env.fonts.CheckFont(ctx, family)
		if !v.IsValid {
			resolved = v.FallbackFont
			if resolved == "" {
				resolved = DefaultFontFamily
			}
			env.logger.Debug("font fallback", "family", family, "fallback", resolved, "confidence", v.Confidence)
		}
	}
	env.families[family] = resolved
	return resolved
}

// Render paints doc with fields applied onto s. The document is not
// modified. Layers are painted in ascending order; the first painter error
// aborts the render and is returned as a *LayerError. When ctx is cancelled
// between layers Render returns ctx.Err() and s holds a partial frame.
func (r *Renderer) Render(ctx context.Context, s Surface, doc *document.Document, fields document.FieldValues) error {
	if doc == nil {
		return ErrNilDocument
	}
	if s == nil {
		return ErrNilSurface
	}

	env := &renderEnv{
		cache:    r.opts.ImageCache,
		loader:   r.opts.ImageLoader,
		fonts:    r.opts.FontChecker,
		logger:   r.opts.Logger,
		families: make(map[string]string),
	}
	if env.cache == nil {
		env.cache = newRenderCache()
	}
	if env.logger == nil {
		env.logger = Logger()
	}

	scale := r.opts.ScaleFactor
	r.paintBackground(s, env, doc, scale)

	for _, layer := range doc.SortedLayers() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !layer.IsVisible() {
			continue
		}
		paint, ok := painters[layer.Type]
		if !ok {
			env.logger.Debug("skipping layer of unknown type", "layer", layer.ID, "type", layer.Type)
			continue
		}

		resolved := document.Resolve(layer, fields)
		if err := paintLayer(ctx, s, env, &resolved, scale, paint); err != nil {
			return &LayerError{ID: layer.ID, Type: layer.Type, Err: err}
		}
	}
	return nil
}

func (r *Renderer) paintBackground(s Surface, env *renderEnv, doc *document.Document, scale float64) {
	bg := doc.Canvas.BackgroundColor
	if r.opts.BackgroundColor != "" {
		bg = r.opts.BackgroundColor
	}
	if bg == "" {
		return
	}
	c, err := document.ParseColor(bg)
	if err != nil {
		env.logger.Warn("invalid background color, background skipped", "color", bg)
		return
	}
	s.FillRect(Rect{W: doc.Canvas.Width * scale, H: doc.Canvas.Height * scale}, 0, c)
}

// paintLayer brackets a painter with Save and a deferred Restore so the
// surface state is balanced on every exit path.
func paintLayer(ctx context.Context, s Surface, env *renderEnv, l *document.Layer, scale float64, paint painter) error {
	g := layerGeometry(l, scale)
	s.Save()
	defer s.Restore()

	applyLayerState(s, env, l, g)
	return paint(ctx, s, env, l, g)
}
