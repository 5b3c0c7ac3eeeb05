// chain.go - Ordered image loader chain.
package assets

import (
	"context"
	"fmt"
	"image"

	"github.com/xob0t/stencilkit/pkg/render"
)

// Claimer is implemented by loaders that only handle some sources.
type Claimer interface {
	Claims(src string) bool
}

// Chain tries loaders in order. A loader that implements Claimer is skipped
// for sources it does not claim; the first remaining loader is used and its
// result returned as is.
type Chain []render.ImageLoader

// LoadImage implements render.ImageLoader.
func (c Chain) LoadImage(ctx context.Context, src string) (image.Image, error) {
	for _, l := range c {
		if cl, ok := l.(Claimer); ok && !cl.Claims(src) {
			continue
		}
		return l.LoadImage(ctx, src)
	}
	return nil, fmt.Errorf("%q: %w", src, ErrUnsupportedSource)
}

// Claims reports whether any loader in the chain handles src.
func (c Chain) Claims(src string) bool {
	for _, l := range c {
		cl, ok := l.(Claimer)
		if !ok || cl.Claims(src) {
			return true
		}
	}
	return false
}
