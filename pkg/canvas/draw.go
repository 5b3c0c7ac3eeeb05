// draw.go - Image and text drawing.
package canvas

import (
	"image"
	"image/color"
	"math"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/xob0t/stencilkit/pkg/render"
)

// DrawImage crops src out of img, resamples it to the destination size in
// device pixels and draws it at dst under the current transform.
func (c *Canvas) DrawImage(img image.Image, src, dst render.Rect) {
	if img == nil || src.W <= 0 || src.H <= 0 || dst.W <= 0 || dst.H <= 0 {
		return
	}
	b := img.Bounds()
	crop := image.Rect(
		b.Min.X+int(math.Round(src.X)), b.Min.Y+int(math.Round(src.Y)),
		b.Min.X+int(math.Round(src.X+src.W)), b.Min.Y+int(math.Round(src.Y+src.H)),
	)
	part := imaging.Crop(img, crop)
	if part.Bounds().Empty() {
		return
	}
	w, h := max(1, int(math.Round(dst.W))), max(1, int(math.Round(dst.H)))
	if part.Bounds().Dx() != w || part.Bounds().Dy() != h {
		part = imaging.Resize(part, w, h, imaging.Lanczos)
	}

	c.draw(dst, []op{{kind: opTranslate, x: dst.X, y: dst.Y}}, func(dc *gg.Context) {
		dc.DrawImage(part, 0, 0)
	})
}

// MeasureText returns the advance width of text.
func (c *Canvas) MeasureText(f render.Font, text string) float64 {
	face, err := c.face(f)
	if err != nil {
		// Keep layout usable with an approximate em-based width.
		return float64(utf8.RuneCountInString(text)) * f.Size * 0.6
	}
	return float64(font.MeasureString(face, text)) / 64
}

// FillText draws one line with its em box top at y. A line wider than
// maxWidth is condensed horizontally.
func (c *Canvas) FillText(text string, x, y float64, f render.Font, align render.TextAlign, maxWidth float64, col color.Color) {
	if text == "" || f.Size <= 0 {
		return
	}
	face, err := c.face(f)
	if err != nil {
		return
	}

	width := float64(font.MeasureString(face, text)) / 64
	drawn, sx := width, 1.0
	if maxWidth > 0 && width > maxWidth {
		drawn, sx = maxWidth, maxWidth/width
	}
	left := x
	switch align {
	case render.AlignCenter:
		left -= drawn / 2
	case render.AlignRight:
		left -= drawn
	}

	m := face.Metrics()
	ascent := float64(m.Ascent) / 64
	descent := float64(m.Descent) / 64

	var extra []op
	if sx != 1 {
		extra = []op{
			{kind: opTranslate, x: left},
			{kind: opScale, x: sx, y: 1},
			{kind: opTranslate, x: -left},
		}
	}
	bounds := render.Rect{X: left, Y: y, W: drawn, H: ascent + descent}
	c.draw(bounds, extra, func(dc *gg.Context) {
		dc.SetFontFace(face)
		dc.SetColor(col)
		dc.DrawString(text, left, y+ascent)
	})
}

func (c *Canvas) face(f render.Font) (font.Face, error) {
	if face, ok := c.faceCache[f]; ok {
		return face, nil
	}
	face, err := c.faces.NewFace(f)
	if err != nil {
		render.Logger().Warn("font face unavailable", "family", f.Family, "size", f.Size, "err", err)
		return nil, err
	}
	c.faceCache[f] = face
	return face, nil
}
