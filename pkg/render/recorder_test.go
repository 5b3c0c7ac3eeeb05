package render

import (
	"fmt"
	"image"
	"image/color"
	"unicode/utf8"
)

// mono measures every rune as 0.6 em, so widths are easy to reason about.
type mono struct{}

func (mono) MeasureText(f Font, text string) float64 {
	return float64(utf8.RuneCountInString(text)) * f.Size * 6 / 10
}

type textCall struct {
	Text     string
	X, Y     float64
	Font     Font
	Align    TextAlign
	MaxWidth float64
	Color    color.Color
}

type imageCall struct {
	Src, Dst Rect
	Filter   string
}

// recorder is a Surface that logs every call.
type recorder struct {
	mono

	calls    []string
	texts    []textCall
	images   []imageCall
	depth    int
	maxDepth int
	filter   []string
}

func newRecorder() *recorder {
	return &recorder{filter: []string{""}}
}

func (r *recorder) log(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) Save() {
	r.depth++
	r.maxDepth = max(r.maxDepth, r.depth)
	r.filter = append(r.filter, r.filter[len(r.filter)-1])
	r.log("save")
}

func (r *recorder) Restore() {
	r.depth--
	r.filter = r.filter[:len(r.filter)-1]
	r.log("restore")
}

func (r *recorder) Translate(x, y float64) { r.log("translate %g %g", x, y) }
func (r *recorder) Rotate(a float64)       { r.log("rotate %.4f", a) }
func (r *recorder) SetGlobalAlpha(a float64) {
	r.log("alpha %g", a)
}
func (r *recorder) SetShadow(s Shadow) {
	r.log("shadow %v %g %g %g", s.Color, s.Blur, s.OffsetX, s.OffsetY)
}
func (r *recorder) SetFilter(f string) {
	r.filter[len(r.filter)-1] = f
	r.log("filter %q", f)
}

func (r *recorder) FillRect(rect Rect, radius float64, c color.Color) {
	r.log("fillRect %v %g %v", rect, radius, c)
}

func (r *recorder) FillGradient(rect Rect, g Gradient) {
	r.log("fillGradient %v %v", rect, g)
}

func (r *recorder) StrokeRect(rect Rect, radius, width float64, c color.Color) {
	r.log("strokeRect %v %g %g %v", rect, radius, width, c)
}

func (r *recorder) DrawImage(img image.Image, src, dst Rect) {
	r.images = append(r.images, imageCall{Src: src, Dst: dst, Filter: r.filter[len(r.filter)-1]})
	r.log("drawImage %v %v", src, dst)
}

func (r *recorder) FillText(text string, x, y float64, f Font, align TextAlign, maxWidth float64, c color.Color) {
	r.texts = append(r.texts, textCall{Text: text, X: x, Y: y, Font: f, Align: align, MaxWidth: maxWidth, Color: c})
	r.log("fillText %q %g %g %v %d %g %v", text, x, y, f, align, maxWidth, c)
}
