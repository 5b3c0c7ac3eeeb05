// color.go - Background flattening for formats without alpha.
package generator

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// flatten composites img over a solid background. Opaque images are
// returned unchanged.
func flatten(img image.Image, bg color.Color) image.Image {
	if isOpaque(img) {
		return img
	}
	if bg == nil {
		bg = color.White
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Over)
	return out
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}
