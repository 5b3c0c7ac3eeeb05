// adapters.go - Font checker, image loader and cache interfaces.
package render

import (
	"context"
	"image"
	"sync"
)

// FontValidation is the result of a font availability check.
type FontValidation struct {
	IsValid      bool
	FallbackUsed bool
	FallbackFont string
	Confidence   float64
}

// FontChecker reports whether a font family is usable in the current
// environment and which family to use instead when it is not.
type FontChecker interface {
	CheckFont(ctx context.Context, family string) FontValidation
}

// FontCheckerFunc adapts a function to FontChecker.
type FontCheckerFunc func(ctx context.Context, family string) FontValidation

func (f FontCheckerFunc) CheckFont(ctx context.Context, family string) FontValidation {
	return f(ctx, family)
}

// ImageLoader resolves a source string to a decoded image. It may block on
// I/O; timeouts are the loader's concern.
type ImageLoader interface {
	LoadImage(ctx context.Context, src string) (image.Image, error)
}

// ImageLoaderFunc adapts a function to ImageLoader.
type ImageLoaderFunc func(ctx context.Context, src string) (image.Image, error)

func (f ImageLoaderFunc) LoadImage(ctx context.Context, src string) (image.Image, error) {
	return f(ctx, src)
}

// ImageCache holds decoded images keyed by their exact source string.
// Implementations must be safe for concurrent use when shared between renders.
type ImageCache interface {
	Get(src string) (image.Image, bool)
	Put(src string, img image.Image)
}

// renderCache is the per-render cache used when the caller supplies none.
type renderCache struct {
	mu     sync.Mutex
	images map[string]image.Image
}

func newRenderCache() *renderCache {
	return &renderCache{images: make(map[string]image.Image)}
}

func (c *renderCache) Get(src string) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	img, ok := c.images[src]
	return img, ok
}

func (c *renderCache) Put(src string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.images[src]; !ok {
		c.images[src] = img
	}
}
