package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/xob0t/stencilkit/pkg/render"
)

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestStore(t *testing.T) {
	s := NewStore()
	data := pngBytes(t, 3, 2, color.White)
	id := s.Add("photo.png", data, "")

	a, ok := s.Get(id)
	if !ok || a.Mime != "image/png" || a.Name != "photo.png" {
		t.Fatalf("Get = %+v, %v", a, ok)
	}

	for _, src := range []string{id, "asset:" + id, "/api/assets/" + id} {
		if !s.Claims(src) {
			t.Errorf("Claims(%q) = false", src)
		}
		img, err := s.LoadImage(context.Background(), src)
		if err != nil {
			t.Fatalf("LoadImage(%q): %v", src, err)
		}
		if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
			t.Errorf("bounds = %v", b)
		}
	}

	if _, err := s.LoadImage(context.Background(), "asset:missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing asset err = %v", err)
	}

	s.Add("a-font.ttf", []byte("x"), "font/ttf")
	list := s.List()
	if len(list) != 2 || list[0].Name != "a-font.ttf" || list[1].Size != len(data) {
		t.Errorf("List = %+v", list)
	}
	files := s.Files()
	if _, ok := files[id+".png"]; !ok {
		t.Errorf("Files missing %s.png: %v", id, len(files))
	}

	if !s.Remove(id) || s.Remove(id) {
		t.Error("Remove should succeed once")
	}
	if s.Claims(id) {
		t.Error("removed asset still claimed")
	}
}

func TestRewriteShareURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://drive.google.com/file/d/abc_123-X/view?usp=sharing", "https://drive.google.com/uc?export=download&id=abc_123-X"},
		{"https://drive.google.com/open?id=xyz", "https://drive.google.com/uc?export=download&id=xyz"},
		{"https://drive.google.com/drive/folders/f", "https://drive.google.com/drive/folders/f"},
		{"https://www.dropbox.com/s/abc/a.png?dl=0", "https://www.dropbox.com/s/abc/a.png?dl=1"},
		{"https://dropbox.com/s/abc/a.png", "https://dropbox.com/s/abc/a.png?dl=1"},
		{"https://example.com/a.png?dl=0", "https://example.com/a.png?dl=0"},
		{"relative/path.png", "relative/path.png"},
	}
	for _, tt := range tests {
		if got := RewriteShareURL(tt.in); got != tt.want {
			t.Errorf("RewriteShareURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScheme(t *testing.T) {
	tests := map[string]string{
		"https://x/y":     "https",
		"HTTP://x":        "http",
		"data:image/png,": "data",
		"file:///tmp/a":   "file",
		"C:\\img\\a.png":  "",
		"img/a.png":       "",
		"/abs/a.png":      "",
		"asset:abc":       "asset",
	}
	for in, want := range tests {
		if got := scheme(in); got != want {
			t.Errorf("scheme(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFetcherHTTP(t *testing.T) {
	data := pngBytes(t, 4, 4, color.Black)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(data)
		case "/big.png":
			w.Write(make([]byte, 2048))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewFetcher(FetcherOptions{})
	img, err := f.LoadImage(context.Background(), srv.URL+"/ok.png")
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if img.Bounds().Dx() != 4 {
		t.Errorf("bounds = %v", img.Bounds())
	}

	if _, err := f.LoadImage(context.Background(), srv.URL+"/missing.png"); err == nil {
		t.Error("404 should fail")
	}

	small := NewFetcher(FetcherOptions{MaxBytes: 1024})
	if _, err := small.LoadImage(context.Background(), srv.URL+"/big.png"); !errors.Is(err, ErrTooLarge) {
		t.Errorf("oversized err = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	before := hits.Load()
	if _, err := f.LoadImage(ctx, srv.URL+"/ok.png"); err == nil {
		t.Error("cancelled context should fail")
	}
	if hits.Load() != before {
		t.Error("cancelled request reached the server")
	}
}

func TestFetcherLocal(t *testing.T) {
	dir := t.TempDir()
	data := pngBytes(t, 2, 5, color.White)
	if err := os.WriteFile(filepath.Join(dir, "a.png"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	f := NewFetcher(FetcherOptions{BaseDir: dir})
	for _, src := range []string{"a.png", filepath.Join(dir, "a.png"), "file://" + filepath.ToSlash(filepath.Join(dir, "a.png"))} {
		img, err := f.LoadImage(context.Background(), src)
		if err != nil {
			t.Fatalf("LoadImage(%q): %v", src, err)
		}
		if img.Bounds().Dy() != 5 {
			t.Errorf("bounds = %v", img.Bounds())
		}
	}

	locked := NewFetcher(FetcherOptions{BaseDir: dir, DisableLocal: true})
	if locked.Claims("a.png") {
		t.Error("DisableLocal fetcher claims a path")
	}
	if _, err := locked.LoadImage(context.Background(), "a.png"); !errors.Is(err, ErrUnsupportedSource) {
		t.Errorf("local load err = %v", err)
	}
	if _, err := f.LoadImage(context.Background(), "ftp://host/a.png"); !errors.Is(err, ErrUnsupportedSource) {
		t.Errorf("ftp err = %v", err)
	}
}

func TestFetcherDataURL(t *testing.T) {
	data := pngBytes(t, 1, 1, color.Black)
	f := NewFetcher(FetcherOptions{DisableLocal: true})
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
	if !f.Claims(src) {
		t.Fatal("data URL not claimed")
	}
	img, err := f.LoadImage(context.Background(), src)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if img.Bounds().Dx() != 1 {
		t.Errorf("bounds = %v", img.Bounds())
	}
	if _, err := decodeDataURL("data:image/png;base64"); err == nil {
		t.Error("missing comma should fail")
	}
	if got, _ := decodeDataURL("data:,a%20b"); string(got) != "a b" {
		t.Errorf("plain data = %q", got)
	}
}

func TestChain(t *testing.T) {
	store := NewStore()
	id := store.Add("x.png", pngBytes(t, 7, 7, color.White), "")

	var fallback atomic.Int32
	tail := render.ImageLoaderFunc(func(_ context.Context, src string) (image.Image, error) {
		fallback.Add(1)
		return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
	})
	c := Chain{store, tail}

	img, err := c.LoadImage(context.Background(), "asset:"+id)
	if err != nil || img.Bounds().Dx() != 7 {
		t.Fatalf("store source: %v, %v", img, err)
	}
	if fallback.Load() != 0 {
		t.Error("tail loader used for a store asset")
	}
	if _, err := c.LoadImage(context.Background(), "https://example.com/a.png"); err != nil {
		t.Fatalf("tail source: %v", err)
	}
	if fallback.Load() != 1 {
		t.Errorf("tail calls = %d", fallback.Load())
	}

	only := Chain{store}
	if _, err := only.LoadImage(context.Background(), "nope"); !errors.Is(err, ErrUnsupportedSource) {
		t.Errorf("unclaimed err = %v", err)
	}
	if only.Claims("nope") || !c.Claims("nope") {
		t.Error("Claims mismatch")
	}
}

func TestCache(t *testing.T) {
	c := NewCache()
	first := image.NewRGBA(image.Rect(0, 0, 1, 1))
	second := image.NewRGBA(image.Rect(0, 0, 2, 2))

	if _, ok := c.Get("a"); ok {
		t.Fatal("empty cache hit")
	}
	c.Put("a", first)
	c.Put("a", second)
	c.Put("b", nil)
	got, ok := c.Get("a")
	if !ok || got != image.Image(first) {
		t.Error("first Put should win")
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d", c.Len())
	}
	c.Forget("a")
	c.Forget("a")
	if c.Len() != 0 {
		t.Errorf("Len after Forget = %d", c.Len())
	}
	c.Put("x", first)
	c.Put("y", first)
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
}

var (
	_ render.ImageLoader = (*Store)(nil)
	_ render.ImageLoader = (*Fetcher)(nil)
	_ render.ImageLoader = Chain(nil)
	_ render.ImageCache  = (*Cache)(nil)
)
