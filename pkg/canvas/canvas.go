// Package canvas implements render.Surface on a raster image using
// fogleman/gg. gg supplies paths, fills, strokes, gradients and transformed
// text and images; global alpha, drop shadows and pixel filters are applied
// by drawing into a scratch image and compositing the touched region.
package canvas

import (
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/xob0t/stencilkit/pkg/fonts"
	"github.com/xob0t/stencilkit/pkg/render"
)

// FaceSource creates font faces. *fonts.Registry implements it.
type FaceSource interface {
	NewFace(f render.Font) (font.Face, error)
}

var defaultFaces = sync.OnceValue(func() FaceSource { return fonts.New() })

type opKind int

const (
	opTranslate opKind = iota
	opRotate
	opScale
)

// op is one transform step, replayed onto gg contexts before each draw.
type op struct {
	kind opKind
	x, y float64 // rotate uses x as the angle
}

type state struct {
	ops    []op
	alpha  float64
	shadow render.Shadow
	filter []filterOp
}

func (s state) clone() state {
	s.ops = append([]op(nil), s.ops...)
	return s
}

// Canvas is a raster render.Surface. It is not safe for concurrent use.
type Canvas struct {
	img *image.RGBA
	dc  *gg.Context

	// scratch is allocated on the first effect draw and kept transparent
	// between draws.
	scratch    *gg.Context
	scratchImg *image.RGBA

	faces     FaceSource
	faceCache map[render.Font]font.Face

	st    state
	stack []state
}

var _ render.Surface = (*Canvas)(nil)

// New returns a transparent w×h canvas. A nil faces uses the builtin Go fonts.
func New(w, h int, faces FaceSource) *Canvas {
	return NewFromRGBA(image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0))), faces)
}

// NewFromRGBA draws into img, whose bounds must start at the origin.
func NewFromRGBA(img *image.RGBA, faces FaceSource) *Canvas {
	if faces == nil {
		faces = defaultFaces()
	}
	return &Canvas{
		img:       img,
		dc:        gg.NewContextForRGBA(img),
		faces:     faces,
		faceCache: make(map[render.Font]font.Face),
		st:        state{alpha: 1},
	}
}

// Image returns the backing image.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.img.Bounds().Dx() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.img.Bounds().Dy() }

// ── State ──

func (c *Canvas) Save() {
	c.stack = append(c.stack, c.st.clone())
}

// Restore pops the saved state; an unbalanced Restore is ignored.
func (c *Canvas) Restore() {
	if len(c.stack) == 0 {
		return
	}
	c.st = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
}

func (c *Canvas) Translate(x, y float64) {
	c.st.ops = append(c.st.ops, op{kind: opTranslate, x: x, y: y})
}

func (c *Canvas) Rotate(radians float64) {
	c.st.ops = append(c.st.ops, op{kind: opRotate, x: radians})
}

func (c *Canvas) SetGlobalAlpha(alpha float64) {
	if math.IsNaN(alpha) {
		return
	}
	c.st.alpha = math.Min(math.Max(alpha, 0), 1)
}

func (c *Canvas) SetShadow(s render.Shadow) { c.st.shadow = s }

func (c *Canvas) SetFilter(filter string) { c.st.filter = parseFilter(filter) }

// matrix returns the current user-to-device transform.
func (c *Canvas) matrix() gg.Matrix {
	m := gg.Identity()
	for _, o := range c.st.ops {
		switch o.kind {
		case opTranslate:
			m = m.Translate(o.x, o.y)
		case opRotate:
			m = m.Rotate(o.x)
		case opScale:
			m = m.Scale(o.x, o.y)
		}
	}
	return m
}

// apply resets dc to the current transform followed by extra.
func (c *Canvas) apply(dc *gg.Context, extra []op) {
	dc.Identity()
	for _, ops := range [][]op{c.st.ops, extra} {
		for _, o := range ops {
			switch o.kind {
			case opTranslate:
				dc.Translate(o.x, o.y)
			case opRotate:
				dc.Rotate(o.x)
			case opScale:
				dc.Scale(o.x, o.y)
			}
		}
	}
}

// ── Primitives ──

func (c *Canvas) FillRect(r render.Rect, radius float64, col color.Color) {
	if r.W <= 0 || r.H <= 0 {
		return
	}
	c.draw(r, nil, func(dc *gg.Context) {
		rectPath(dc, r, radius)
		dc.SetColor(col)
		dc.Fill()
	})
}

// FillGradient fills r with g. gg evaluates patterns in device space, so
// the gradient geometry is transformed here.
func (c *Canvas) FillGradient(r render.Rect, g render.Gradient) {
	if r.W <= 0 || r.H <= 0 || len(g.Stops) == 0 {
		return
	}
	m := c.matrix()
	var grad gg.Gradient
	switch g.Kind {
	case render.GradientRadial:
		cx, cy := m.TransformPoint(g.X0, g.Y0)
		grad = gg.NewRadialGradient(cx, cy, g.R0, cx, cy, g.R1)
	default:
		x0, y0 := m.TransformPoint(g.X0, g.Y0)
		x1, y1 := m.TransformPoint(g.X1, g.Y1)
		grad = gg.NewLinearGradient(x0, y0, x1, y1)
	}
	for _, s := range g.Stops {
		grad.AddColorStop(s.Offset, s.Color)
	}

	c.draw(r, nil, func(dc *gg.Context) {
		dc.DrawRectangle(r.X, r.Y, r.W, r.H)
		dc.SetFillStyle(grad)
		dc.Fill()
	})
}

func (c *Canvas) StrokeRect(r render.Rect, radius, width float64, col color.Color) {
	if width <= 0 || r.W <= 0 || r.H <= 0 {
		return
	}
	half := width / 2
	bounds := render.Rect{X: r.X - half, Y: r.Y - half, W: r.W + width, H: r.H + width}
	c.draw(bounds, nil, func(dc *gg.Context) {
		rectPath(dc, r, radius)
		dc.SetLineWidth(width)
		dc.SetColor(col)
		dc.Stroke()
	})
}

func rectPath(dc *gg.Context, r render.Rect, radius float64) {
	if radius > 0 {
		dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, radius)
		return
	}
	dc.DrawRectangle(r.X, r.Y, r.W, r.H)
}
