package render

import (
	"context"
	"image/color"
	"math"
	"testing"

	"github.com/xob0t/stencilkit/pkg/document"
)

func stops(cs ...string) []document.ColorStop {
	out := make([]document.ColorStop, len(cs))
	for i, c := range cs {
		out[i] = document.ColorStop{Position: float64(i) / float64(max(len(cs)-1, 1)), Color: c}
	}
	return out
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSynthesizeLinear(t *testing.T) {
	tests := []struct {
		angle          float64
		x0, y0, x1, y1 float64
	}{
		{180, 150, 0, 150, 100}, // top to bottom
		{0, 150, 100, 150, 0},   // bottom to top
		{90, 0, 50, 300, 50},    // left to right
		{270, 300, 50, 0, 50},
	}

	for _, tt := range tests {
		st := document.Style{Angle: tt.angle, ColorStops: stops("#000000", "#ffffff")}
		g, ok := SynthesizeGradient(st, 300, 100)
		if !ok || g.Kind != GradientLinear {
			t.Fatalf("angle %g: ok=%v kind=%v", tt.angle, ok, g.Kind)
		}
		if !near(g.X0, tt.x0) || !near(g.Y0, tt.y0) || !near(g.X1, tt.x1) || !near(g.Y1, tt.y1) {
			t.Errorf("angle %g: axis (%g,%g)->(%g,%g), want (%g,%g)->(%g,%g)",
				tt.angle, g.X0, g.Y0, g.X1, g.Y1, tt.x0, tt.y0, tt.x1, tt.y1)
		}
	}
}

func TestSynthesizeSkewedAxis(t *testing.T) {
	// A diagonal on a 2:1 box keeps the independent width/height scaling.
	g, _ := SynthesizeGradient(document.Style{Angle: 135, ColorStops: stops("red", "blue")}, 200, 100)
	dx, dy := g.X1-g.X0, g.Y1-g.Y0
	if !near(dx, 2*math.Cos(math.Pi/4)*100) || !near(dy, 2*math.Sin(math.Pi/4)*50) {
		t.Errorf("axis delta = (%g,%g)", dx, dy)
	}
}

func TestSynthesizeRadial(t *testing.T) {
	st := document.Style{GradientType: "radial", ColorStops: stops("#fff", "#000")}
	g, ok := SynthesizeGradient(st, 300, 100)
	if !ok || g.Kind != GradientRadial {
		t.Fatalf("ok=%v kind=%v", ok, g.Kind)
	}
	if g.X0 != 150 || g.Y0 != 50 || g.R0 != 0 || g.R1 != 150 {
		t.Errorf("radial = %+v", g)
	}
}

func TestSynthesizeStops(t *testing.T) {
	st := document.Style{ColorStops: []document.ColorStop{
		{Position: 1.5, Color: "#ffffff"},
		{Position: -1, Color: "not a color"},
	}}
	g, _ := SynthesizeGradient(st, 10, 10)
	want := []Stop{
		{Offset: 1, Color: color.NRGBA{255, 255, 255, 255}},
		{Offset: 0, Color: color.NRGBA{}},
	}
	if len(g.Stops) != 2 || g.Stops[0] != want[0] || g.Stops[1] != want[1] {
		t.Errorf("stops = %+v, want %+v", g.Stops, want)
	}

	if _, ok := SynthesizeGradient(document.Style{}, 10, 10); ok {
		t.Error("gradient without stops reported ok")
	}
}

func TestPaintGradientWithoutStops(t *testing.T) {
	rec := newRecorder()
	l := &document.Layer{ID: "g", Type: document.LayerGradient}
	if err := paintGradient(context.Background(), rec, nil, l, geometry{W: 10, H: 10, Scale: 1}); err != nil {
		t.Fatal(err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("calls = %q, want none", rec.calls)
	}
}
