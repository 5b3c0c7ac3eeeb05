// text.go - Text layer painting.
package render

import (
	"context"
	"image/color"
	"strings"

	"github.com/xob0t/stencilkit/pkg/document"
)

var defaultTextColor = color.NRGBA{0, 0, 0, 255}

// paintText lays out the text in document units and draws it scaled, so
// line breaks do not depend on the scale factor.
func paintText(ctx context.Context, s Surface, env *renderEnv, l *document.Layer, g geometry) error {
	if l.Content == "" {
		return nil
	}
	st := l.Style

	f := Font{
		Family: env.fontFamily(ctx, st.FontFamily),
		Size:   st.FontSize,
		Weight: st.FontWeight,
		Style:  st.FontStyle,
	}
	if f.Size <= 0 {
		f.Size = DefaultFontSize
	}

	content := TransformText(l.Content, st.TextTransform)
	layout := LayoutText(s, content, l.Size.Width, l.Size.Height, textParams(l, f))

	col := defaultTextColor
	if st.Color != "" {
		c, err := document.ParseColor(st.Color)
		if err != nil {
			env.logger.Warn("invalid text color, using default", "layer", l.ID, "color", st.Color)
		} else {
			col = c
		}
	}

	align, x := textAnchor(st.TextAlign, g.W)
	drawFont := withSize(f, layout.FontSize*g.Scale)
	for _, line := range layout.Lines {
		if line.Text == "" {
			continue
		}
		s.FillText(line.Text, x, line.Y*g.Scale, drawFont, align, g.W, col)
	}
	return nil
}

// textParams derives layout parameters from the layer's textbox config.
func textParams(l *document.Layer, f Font) TextParams {
	p := TextParams{
		Font:       f,
		LineHeight: l.Style.LineHeight,
		Break:      document.BreakWord,
		Anchor:     document.AnchorTop,
	}

	cfg := l.TextboxConfig
	if cfg == nil {
		return p
	}

	switch cfg.TextMode {
	case document.TextModeResizeSingle, document.TextModeResizeMulti:
		p.Mode = cfg.TextMode
	default:
		p.Mode = document.TextModeWrapFixed
	}
	p.WordBreak = cfg.WordBreak
	if cfg.Anchor != "" {
		p.Anchor = cfg.Anchor
	}
	if aw := cfg.AutoWrap; aw != nil {
		if aw.BreakMode != "" {
			p.Break = aw.BreakMode
		}
		if aw.LineHeight > 0 {
			p.LineHeight = aw.LineHeight
		}
		p.AutoExpand = aw.AutoExpand
	}
	p.MinSize, p.MaxSize = DefaultMinFontSize, DefaultMaxFontSize
	if ar := cfg.AutoResize; ar != nil {
		if ar.MinFontSize > 0 {
			p.MinSize = ar.MinFontSize
		}
		if ar.MaxFontSize > 0 {
			p.MaxSize = ar.MaxFontSize
		}
	}
	return p
}

// textAnchor maps text-align to the draw alignment and its x origin.
func textAnchor(align string, width float64) (TextAlign, float64) {
	switch strings.ToLower(align) {
	case "center":
		return AlignCenter, width / 2
	case "right", "end":
		return AlignRight, width
	}
	return AlignLeft, 0
}
