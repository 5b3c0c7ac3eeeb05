package watch

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeDoc(t *testing.T, path, bg string) {
	t.Helper()
	doc := `{"canvas":{"width":16,"height":8,"backgroundColor":"` + bg + `"},"layers":[]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
}

func pixel(img image.Image) color.RGBA {
	return color.RGBAModel.Convert(img.At(1, 1)).(color.RGBA)
}

func TestNewValidates(t *testing.T) {
	if _, err := New(Config{Output: "x.png"}); err == nil {
		t.Error("missing document path should fail")
	}
	if _, err := New(Config{DocPath: "d.json", Output: "x.avi"}); err == nil {
		t.Error("unsupported output format should fail")
	}
}

func TestRenderOnceKeepsLastGoodFrame(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "document.json")
	out := filepath.Join(dir, "preview.png")
	writeDoc(t, docPath, "#ff0000")

	var calls int
	w, err := New(Config{
		DocPath:  docPath,
		Output:   out,
		OnRender: func(image.Image, error) { calls++ },
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := w.RenderOnce(context.Background()); err != nil {
		t.Fatalf("RenderOnce: %v", err)
	}
	good := w.Last()
	if good == nil || pixel(good) != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("first frame = %v", good)
	}
	before, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(docPath, []byte(`{"canvas":`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := w.RenderOnce(context.Background()); err == nil {
		t.Fatal("broken document should fail")
	}
	if w.Last() != good {
		t.Error("failed render replaced the last frame")
	}
	after, err := os.ReadFile(out)
	if err != nil || string(after) != string(before) {
		t.Error("failed render touched the output file")
	}
	if calls != 2 {
		t.Errorf("OnRender calls = %d, want 2", calls)
	}
	if _, err := os.Stat(filepath.Join(dir, ".preview.png.tmp.png")); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}

func TestRunRerendersOnChange(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "document.json")
	writeDoc(t, docPath, "#0000ff")

	frames := make(chan color.RGBA, 16)
	w, err := New(Config{
		DocPath:  docPath,
		Output:   filepath.Join(dir, "out.png"),
		Debounce: 20 * time.Millisecond,
		OnRender: func(img image.Image, err error) {
			if err == nil {
				frames <- pixel(img)
			}
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run: %v", err)
		}
	}()

	want := []color.RGBA{{0, 0, 255, 255}, {0, 255, 0, 255}}
	for i, c := range want {
		if i > 0 {
			writeDoc(t, docPath, "#00ff00")
		}
		deadline := time.After(5 * time.Second)
	wait:
		for {
			select {
			case got := <-frames:
				if got == c {
					break wait
				}
			case <-deadline:
				t.Fatalf("frame %d: timed out waiting for %v", i, c)
			}
		}
	}
}
