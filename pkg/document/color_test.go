package document

import (
	"image/color"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#000000", color.NRGBA{0, 0, 0, 255}, false},
		{"#FF8000", color.NRGBA{255, 128, 0, 255}, false},
		{"#f80", color.NRGBA{255, 136, 0, 255}, false},
		{"#f808", color.NRGBA{255, 136, 0, 136}, false},
		{"#00000080", color.NRGBA{0, 0, 0, 128}, false},
		{"rgb(10, 20, 30)", color.NRGBA{10, 20, 30, 255}, false},
		{"rgba(0,0,0,0.5)", color.NRGBA{0, 0, 0, 128}, false},
		{"rgb(300, -5, 0)", color.NRGBA{255, 0, 0, 255}, false},
		{"White", color.NRGBA{255, 255, 255, 255}, false},
		{"transparent", color.NRGBA{}, false},
		{"", color.NRGBA{}, true},
		{"#12", color.NRGBA{}, true},
		{"#gggggg", color.NRGBA{}, true},
		{"rgb(1,2)", color.NRGBA{}, true},
		{"hsl(0, 100%, 50%)", color.NRGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestColorOr(t *testing.T) {
	def := color.NRGBA{1, 2, 3, 255}
	if got := ColorOr("bogus", def); got != def {
		t.Errorf("ColorOr(bogus) = %v, want default", got)
	}
	if got := ColorOr("#fff", def); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("ColorOr(#fff) = %v", got)
	}
}
