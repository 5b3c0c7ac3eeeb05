// transform.go - Layer geometry, rotation, shadow and alpha state.
package render

import (
	"math"

	"github.com/xob0t/stencilkit/pkg/document"
)

// geometry is a layer box scaled to surface pixels.
type geometry struct {
	X, Y  float64
	W, H  float64
	Scale float64
}

func layerGeometry(l *document.Layer, scale float64) geometry {
	return geometry{
		X:     l.Position.X * scale,
		Y:     l.Position.Y * scale,
		W:     l.Size.Width * scale,
		H:     l.Size.Height * scale,
		Scale: scale,
	}
}

// applyLayerState moves the origin to the layer's top-left corner, rotates
// about the box centre and sets shadow and alpha. The caller owns the
// surrounding Save/Restore.
func applyLayerState(s Surface, env *renderEnv, l *document.Layer, g geometry) {
	s.Translate(g.X, g.Y)
	if l.Rotation != 0 {
		cx, cy := g.W/2, g.H/2
		s.Translate(cx, cy)
		s.Rotate(l.Rotation * math.Pi / 180)
		s.Translate(-cx, -cy)
	}
	if sh, ok := layerShadow(env, l, g.Scale); ok {
		s.SetShadow(sh)
	}
	s.SetGlobalAlpha(l.Alpha())
}

func layerShadow(env *renderEnv, l *document.Layer, scale float64) (Shadow, bool) {
	st := l.Style
	if st.ShadowColor == "" {
		return Shadow{}, false
	}
	c, err := document.ParseColor(st.ShadowColor)
	if err != nil {
		env.logger.Warn("invalid shadow color, shadow disabled", "layer", l.ID, "color", st.ShadowColor)
		return Shadow{}, false
	}
	sh := Shadow{
		Color:   c,
		Blur:    math.Max(st.ShadowBlur, 0) * scale,
		OffsetX: st.ShadowOffsetX * scale,
		OffsetY: st.ShadowOffsetY * scale,
	}
	return sh, sh.Visible()
}
