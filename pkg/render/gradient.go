// gradient.go - Gradient synthesis and gradient layer painting.
package render

import (
	"context"
	"image/color"
	"math"
	"strings"

	"github.com/xob0t/stencilkit/pkg/document"
)

// SynthesizeGradient builds the gradient paint for a w×h box from a style.
// It returns false when the style has no color stops.
//
// Linear gradients follow the CSS angle convention (0° points up, 90° right,
// 180° down). The axis runs through the box centre along (cosθ, sinθ) with
// θ = angle−90°, scaled by half the width and half the height independently,
// so on non-square boxes the axis is skewed rather than rotated.
// Radial gradients are centred with radius max(w,h)/2.
func SynthesizeGradient(st document.Style, w, h float64) (Gradient, bool) {
	if len(st.ColorStops) == 0 {
		return Gradient{}, false
	}

	g := Gradient{Stops: make([]Stop, 0, len(st.ColorStops))}
	for _, cs := range st.ColorStops {
		g.Stops = append(g.Stops, Stop{
			Offset: math.Min(math.Max(cs.Position, 0), 1),
			Color:  document.ColorOr(cs.Color, color.NRGBA{}),
		})
	}

	cx, cy := w/2, h/2
	if strings.EqualFold(st.GradientType, "radial") {
		g.Kind = GradientRadial
		g.X0, g.Y0 = cx, cy
		g.X1, g.Y1 = cx, cy
		g.R0, g.R1 = 0, math.Max(w, h)/2
		return g, true
	}

	theta := (st.Angle - 90) * math.Pi / 180
	dx, dy := math.Cos(theta)*w/2, math.Sin(theta)*h/2
	g.Kind = GradientLinear
	g.X0, g.Y0 = cx-dx, cy-dy
	g.X1, g.Y1 = cx+dx, cy+dy
	return g, true
}

// paintGradient fills the layer box; a layer without stops paints nothing.
func paintGradient(_ context.Context, s Surface, _ *renderEnv, l *document.Layer, g geometry) error {
	grad, ok := SynthesizeGradient(l.Style, g.W, g.H)
	if !ok {
		return nil
	}
	s.FillGradient(Rect{W: g.W, H: g.H}, grad)
	return nil
}
