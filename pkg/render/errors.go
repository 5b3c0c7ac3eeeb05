// errors.go - Render errors.
package render

import (
	"errors"
	"fmt"

	"github.com/xob0t/stencilkit/pkg/document"
)

var (
	// ErrNilDocument is returned when Render is called without a document.
	ErrNilDocument = errors.New("render: nil document")
	// ErrNilSurface is returned when Render is called without a surface.
	ErrNilSurface = errors.New("render: nil surface")
	// ErrNoImageLoader is returned when an image layer needs a load but no
	// loader was configured.
	ErrNoImageLoader = errors.New("render: no image loader configured")
)

// LayerError reports the layer whose painting aborted a render.
type LayerError struct {
	ID   string
	Type document.LayerType
	Err  error
}

func (e *LayerError) Error() string {
	return fmt.Sprintf("layer %q (%s): %v", e.ID, e.Type, e.Err)
}

func (e *LayerError) Unwrap() error { return e.Err }
