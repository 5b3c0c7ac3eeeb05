// filter.go - CSS-like filter parsing and color matrices.
package canvas

import (
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

// filterOp is one function of a CSS filter list, e.g. grayscale(0.5).
type filterOp struct {
	name   string
	amount float64
}

// parseFilter parses a CSS filter list. Unknown functions and malformed
// arguments are dropped; "none" and "" yield nil.
func parseFilter(s string) []filterOp {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "none" {
		return nil
	}

	var ops []filterOp
	for s != "" {
		open := strings.IndexByte(s, '(')
		end := strings.IndexByte(s, ')')
		if open <= 0 || end < open {
			break
		}
		name := strings.TrimSpace(s[:open])
		arg := strings.TrimSpace(s[open+1 : end])
		s = strings.TrimSpace(s[end+1:])

		if amount, ok := filterAmount(name, arg); ok {
			ops = append(ops, filterOp{name: name, amount: amount})
		}
	}
	return ops
}

func filterAmount(name, arg string) (float64, bool) {
	switch name {
	case "blur":
		if arg == "" {
			return 0, true
		}
		v, err := strconv.ParseFloat(strings.TrimSuffix(arg, "px"), 64)
		return math.Max(v, 0), err == nil
	case "hue-rotate":
		if arg == "" {
			return 0, true
		}
		unit := 1.0
		switch {
		case strings.HasSuffix(arg, "deg"):
			arg = strings.TrimSuffix(arg, "deg")
		case strings.HasSuffix(arg, "turn"):
			arg, unit = strings.TrimSuffix(arg, "turn"), 360
		case strings.HasSuffix(arg, "rad"):
			arg, unit = strings.TrimSuffix(arg, "rad"), 180/math.Pi
		}
		v, err := strconv.ParseFloat(arg, 64)
		return v * unit, err == nil
	case "brightness", "contrast", "saturate", "grayscale", "sepia", "invert", "opacity":
		if arg == "" {
			return 1, true
		}
		scale := 1.0
		if strings.HasSuffix(arg, "%") {
			arg, scale = strings.TrimSuffix(arg, "%"), 0.01
		}
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil || v < 0 {
			return 0, false
		}
		v *= scale
		switch name {
		case "grayscale", "sepia", "invert", "opacity":
			v = math.Min(v, 1)
		}
		return v, true
	}
	return 0, false
}

// filterSpread is how far the filters can move pixels, in device pixels.
func filterSpread(ops []filterOp) float64 {
	var spread float64
	for _, o := range ops {
		if o.name == "blur" {
			spread += 3 * o.amount
		}
	}
	return spread
}

// applyFilters runs the filter list over img in order.
func applyFilters(img *image.NRGBA, ops []filterOp) *image.NRGBA {
	for _, o := range ops {
		switch o.name {
		case "blur":
			if o.amount > 0 {
				img = imaging.Blur(img, o.amount)
			}
		case "opacity":
			a := o.amount
			img = imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
				c.A = uint8(float64(c.A)*a + 0.5)
				return c
			})
		default:
			if m, ok := colorMatrix(o); ok {
				img = imaging.AdjustFunc(img, m.apply)
			}
		}
	}
	return img
}

// matrix is an RGB transform with offset, on channels in [0,1].
type matrix struct {
	m   [3][3]float64
	off float64
}

func (m matrix) apply(c color.NRGBA) color.NRGBA {
	r, g, b := float64(c.R)/255, float64(c.G)/255, float64(c.B)/255
	var out [3]float64
	for i := range out {
		out[i] = m.m[i][0]*r + m.m[i][1]*g + m.m[i][2]*b + m.off
	}
	return color.NRGBA{R: channel(out[0]), G: channel(out[1]), B: channel(out[2]), A: c.A}
}

func channel(v float64) uint8 {
	return uint8(math.Min(math.Max(v, 0), 1)*255 + 0.5)
}

// colorMatrix returns the Filter Effects matrix for a color function.
func colorMatrix(o filterOp) (matrix, bool) {
	a := o.amount
	switch o.name {
	case "brightness":
		return matrix{m: [3][3]float64{{a, 0, 0}, {0, a, 0}, {0, 0, a}}}, true
	case "contrast":
		return matrix{m: [3][3]float64{{a, 0, 0}, {0, a, 0}, {0, 0, a}}, off: 0.5 - 0.5*a}, true
	case "invert":
		d := 1 - 2*a
		return matrix{m: [3][3]float64{{d, 0, 0}, {0, d, 0}, {0, 0, d}}, off: a}, true
	case "grayscale":
		k := 1 - a
		return matrix{m: [3][3]float64{
			{0.2126 + 0.7874*k, 0.7152 - 0.7152*k, 0.0722 - 0.0722*k},
			{0.2126 - 0.2126*k, 0.7152 + 0.2848*k, 0.0722 - 0.0722*k},
			{0.2126 - 0.2126*k, 0.7152 - 0.7152*k, 0.0722 + 0.9278*k},
		}}, true
	case "sepia":
		k := 1 - a
		return matrix{m: [3][3]float64{
			{0.393 + 0.607*k, 0.769 - 0.769*k, 0.189 - 0.189*k},
			{0.349 - 0.349*k, 0.686 + 0.314*k, 0.168 - 0.168*k},
			{0.272 - 0.272*k, 0.534 - 0.534*k, 0.131 + 0.869*k},
		}}, true
	case "saturate":
		return matrix{m: [3][3]float64{
			{0.213 + 0.787*a, 0.715 - 0.715*a, 0.072 - 0.072*a},
			{0.213 - 0.213*a, 0.715 + 0.285*a, 0.072 - 0.072*a},
			{0.213 - 0.213*a, 0.715 - 0.715*a, 0.072 + 0.928*a},
		}}, true
	case "hue-rotate":
		sin, cos := math.Sincos(a * math.Pi / 180)
		return matrix{m: [3][3]float64{
			{0.213 + cos*0.787 - sin*0.213, 0.715 - cos*0.715 - sin*0.715, 0.072 - cos*0.072 + sin*0.928},
			{0.213 - cos*0.213 + sin*0.143, 0.715 + cos*0.285 + sin*0.140, 0.072 - cos*0.072 - sin*0.283},
			{0.213 - cos*0.213 - sin*0.787, 0.715 - cos*0.715 + sin*0.715, 0.072 + cos*0.928 + sin*0.072},
		}}, true
	}
	return matrix{}, false
}
