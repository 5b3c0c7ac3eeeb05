// element.go - Filled rectangle layer painting.
package render

import (
	"context"

	"github.com/xob0t/stencilkit/pkg/document"
)

// paintElement draws a filled and optionally stroked rectangle.
func paintElement(_ context.Context, s Surface, env *renderEnv, l *document.Layer, g geometry) error {
	st := l.Style
	radius := clampRadius(st.BorderRadius*g.Scale, g.W, g.H)
	if st.BackgroundColor != "" {
		c, err := document.ParseColor(st.BackgroundColor)
		if err != nil {
			env.logger.Warn("invalid background color, fill skipped", "layer", l.ID, "color", st.BackgroundColor)
		} else {
			s.FillRect(Rect{W: g.W, H: g.H}, radius, c)
		}
	}
	strokeBorder(s, env, l, g)
	return nil
}
