package canvas

import (
	"errors"
	"image"
	"image/color"
	"reflect"
	"testing"

	"golang.org/x/image/font"

	"github.com/xob0t/stencilkit/pkg/render"
)

type brokenFaces struct{}

func (brokenFaces) NewFace(render.Font) (font.Face, error) { return nil, errors.New("no fonts") }

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in   string
		want []filterOp
	}{
		{"", nil},
		{"none", nil},
		{"grayscale(1)", []filterOp{{"grayscale", 1}}},
		{"blur(2px) brightness(120%)", []filterOp{{"blur", 2}, {"brightness", 1.2}}},
		{"sepia(2) invert()", []filterOp{{"sepia", 1}, {"invert", 1}}},
		{"hue-rotate(0.5turn)", []filterOp{{"hue-rotate", 180}}},
		{"drop-shadow(1px 1px red) contrast(2)", []filterOp{{"contrast", 2}}},
		{"brightness(-1) saturate(abc)", nil},
		{"grayscale(1", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseFilter(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseFilter(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestColorMatrixNeutral(t *testing.T) {
	c := color.NRGBA{200, 100, 50, 255}
	neutral := []filterOp{
		{"brightness", 1}, {"contrast", 1}, {"invert", 0}, {"grayscale", 0},
		{"sepia", 0}, {"saturate", 1}, {"hue-rotate", 0},
	}
	for _, o := range neutral {
		m, ok := colorMatrix(o)
		if !ok {
			t.Fatalf("%s: no matrix", o.name)
		}
		got := m.apply(c)
		if !near(got.R, c.R, 1) || !near(got.G, c.G, 1) || !near(got.B, c.B, 1) || got.A != c.A {
			t.Errorf("%s(%g) changed %v to %v", o.name, o.amount, c, got)
		}
	}
}

func TestApplyFilters(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{200, 100, 50, 200})

	out := applyFilters(img, parseFilter("invert(1) opacity(0.5)"))
	got := out.NRGBAAt(0, 0)
	if want := (color.NRGBA{55, 155, 205, 100}); got != want {
		t.Errorf("invert+opacity = %v, want %v", got, want)
	}
	if s := filterSpread(parseFilter("blur(2px) blur(1px)")); s != 9 {
		t.Errorf("spread = %g, want 9", s)
	}
}
