package generator

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func halfTransparent() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 2; x++ {
			img.SetRGBA(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	return img
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{".png", PNG, false},
		{"PNG", PNG, false},
		{".jpg", JPEG, false},
		{"jpeg", JPEG, false},
		{".bmp", BMP, false},
		{".tif", TIFF, false},
		{".avi", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
	if JPEG.Ext() != ".jpg" || PNG.ContentType() != "image/png" {
		t.Error("format metadata mismatch")
	}
}

func TestGenerateToWriter(t *testing.T) {
	src := halfTransparent()
	decoders := map[Format]func([]byte) (image.Image, error){
		PNG:  func(b []byte) (image.Image, error) { return png.Decode(bytes.NewReader(b)) },
		JPEG: func(b []byte) (image.Image, error) { return jpeg.Decode(bytes.NewReader(b)) },
		BMP:  func(b []byte) (image.Image, error) { return bmp.Decode(bytes.NewReader(b)) },
		TIFF: func(b []byte) (image.Image, error) { return tiff.Decode(bytes.NewReader(b)) },
	}
	for format, decode := range decoders {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := GenerateToWriter(&buf, format, src, Config{}); err != nil {
				t.Fatalf("encode: %v", err)
			}
			img, err := decode(buf.Bytes())
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 4 {
				t.Errorf("bounds = %v", img.Bounds())
			}
		})
	}

	if err := GenerateToWriter(&bytes.Buffer{}, PNG, nil, Config{}); err == nil {
		t.Error("nil image should fail")
	}
}

func TestFlatten(t *testing.T) {
	out := flatten(halfTransparent(), nil)
	r, g, b, a := out.At(3, 0).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 || a>>8 != 255 {
		t.Errorf("transparent pixel = %v, want white", out.At(3, 0))
	}
	r, g, _, _ = out.At(0, 0).RGBA()
	if r>>8 != 255 || g>>8 != 0 {
		t.Errorf("opaque pixel = %v, want red", out.At(0, 0))
	}

	black := flatten(halfTransparent(), color.Black)
	if r, _, _, _ := black.At(3, 3).RGBA(); r != 0 {
		t.Errorf("custom background = %v, want black", black.At(3, 3))
	}

	opaque := image.NewGray(image.Rect(0, 0, 2, 2))
	if flatten(opaque, nil) != image.Image(opaque) {
		t.Error("opaque image should pass through")
	}
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "frame.png")
	if err := Generate(out, halfTransparent(), Config{}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if fi, err := os.Stat(out); err != nil || fi.Size() == 0 {
		t.Fatalf("output missing: %v", err)
	}

	bad := filepath.Join(dir, "frame.avi")
	if err := Generate(bad, halfTransparent(), Config{}); err == nil {
		t.Error("unsupported extension should fail")
	}
	if _, err := os.Stat(bad); !os.IsNotExist(err) {
		t.Error("no file should be created for an unsupported format")
	}

	partial := filepath.Join(dir, "nil.jpg")
	if err := Generate(partial, nil, Config{}); err == nil {
		t.Error("nil image should fail")
	}
	if _, err := os.Stat(partial); !os.IsNotExist(err) {
		t.Error("failed encode left a file behind")
	}
}
