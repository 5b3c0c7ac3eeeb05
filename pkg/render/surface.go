// surface.go - Drawing surface and text measurement interfaces.
package render

import (
	"image"
	"image/color"
)

// Rect is an axis-aligned rectangle in the surface's current user space.
type Rect struct {
	X, Y, W, H float64
}

// Font selects a face by family and size in surface pixels.
type Font struct {
	Family string
	Size   float64
	Weight string // "normal", "bold", "100".."900"
	Style  string // "normal", "italic"
}

// TextAlign is the horizontal anchor of a text line.
type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// Shadow is the drop shadow applied to subsequent drawing. Offsets and blur
// are in device pixels and are not affected by the current transform.
type Shadow struct {
	Color   color.NRGBA
	Blur    float64
	OffsetX float64
	OffsetY float64
}

// Visible reports whether drawing with this shadow produces shadow pixels.
func (s Shadow) Visible() bool {
	return s.Color.A > 0 && (s.Blur > 0 || s.OffsetX != 0 || s.OffsetY != 0)
}

// GradientKind selects linear or radial interpolation.
type GradientKind int

const (
	GradientLinear GradientKind = iota
	GradientRadial
)

// Stop is a gradient color stop; Offset is in [0,1].
type Stop struct {
	Offset float64
	Color  color.NRGBA
}

// Gradient is a gradient paint in user space. Linear gradients use the axis
// (X0,Y0)→(X1,Y1); radial gradients use centre (X0,Y0) and radii R0→R1.
type Gradient struct {
	Kind   GradientKind
	X0, Y0 float64
	X1, Y1 float64
	R0, R1 float64
	Stops  []Stop
}

// Measurer measures the advance width of a single line of text.
type Measurer interface {
	MeasureText(f Font, text string) float64
}

// Surface is the caller-owned drawing target. It models a 2D canvas: an
// affine transform stack plus alpha, shadow and filter state, all of which
// are saved and restored together.
type Surface interface {
	Measurer

	Save()
	Restore()
	Translate(x, y float64)
	Rotate(radians float64)

	SetGlobalAlpha(alpha float64)
	SetShadow(s Shadow)
	// SetFilter sets a CSS-like pixel filter ("" or "none" is neutral).
	SetFilter(filter string)

	// FillRect fills r; radius > 0 rounds the corners.
	FillRect(r Rect, radius float64, c color.Color)
	FillGradient(r Rect, g Gradient)
	// StrokeRect strokes r centred on its edge; radius > 0 rounds the corners.
	StrokeRect(r Rect, radius, width float64, c color.Color)
	// DrawImage draws the src region of img (relative to its bounds origin)
	// scaled into dst.
	DrawImage(img image.Image, src, dst Rect)
	// FillText draws one line whose em box top is at y. Lines wider than
	// maxWidth are condensed horizontally to fit when maxWidth > 0.
	FillText(text string, x, y float64, f Font, align TextAlign, maxWidth float64, c color.Color)
}
