// decode.go - Image decoding and loader errors.
package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrNotFound is returned for a reference to a missing asset.
	ErrNotFound = errors.New("asset not found")
	// ErrUnsupportedSource is returned when no loader handles a source.
	ErrUnsupportedSource = errors.New("unsupported image source")
	// ErrTooLarge is returned when a download exceeds the size limit.
	ErrTooLarge = errors.New("image too large")
)

// Decode decodes PNG, JPEG, GIF, WebP, BMP or TIFF data.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
