// Package generator encodes rendered images to files and writers.
//
// The format is chosen by file extension or name: PNG, JPEG, BMP or TIFF.
// Formats without an alpha channel are flattened onto a background color.
package generator

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format is an output image format.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

// DefaultJPEGQuality is used when Config.Quality is out of range.
const DefaultJPEGQuality = 90

// Config holds encoding parameters.
type Config struct {
	Quality    int         // JPEG quality 1..100 (default: 90)
	Background color.Color // fill behind transparent pixels for JPEG/BMP (default: white)
}

// ParseFormat maps a format name or file extension ("png", ".jpg", ...) to
// a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	}
	return "", fmt.Errorf("unsupported format %q: use png, jpeg, bmp or tiff", s)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	return "image/" + string(f)
}

// Ext returns the canonical file extension of f.
func (f Format) Ext() string {
	if f == JPEG {
		return ".jpg"
	}
	return "." + string(f)
}

// Generate writes img to output, inferring the format from the extension.
// On failure the partially written file is removed.
func Generate(output string, img image.Image, cfg Config) error {
	format, err := ParseFormat(filepath.Ext(output))
	if err != nil {
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	if err := GenerateToWriter(f, format, img, cfg); err != nil {
		f.Close()
		os.Remove(output)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(output)
		return fmt.Errorf("close %s: %w", output, err)
	}
	return nil
}

// GenerateToWriter encodes img to w in the given format.
func GenerateToWriter(w io.Writer, format Format, img image.Image, cfg Config) error {
	if img == nil {
		return fmt.Errorf("encode %s: nil image", format)
	}
	var err error
	switch format {
	case PNG:
		err = encodePNG(w, img)
	case JPEG:
		q := cfg.Quality
		if q < 1 || q > 100 {
			q = DefaultJPEGQuality
		}
		err = jpeg.Encode(w, flatten(img, cfg.Background), &jpeg.Options{Quality: q})
	case BMP:
		err = bmp.Encode(w, flatten(img, cfg.Background))
	case TIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	return nil
}
