// image.go - Object-fit math and image layer painting.
package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/xob0t/stencilkit/pkg/document"
)

// ObjectFit is the policy mapping an image into its box.
type ObjectFit string

const (
	FitFill    ObjectFit = "fill"
	FitCover   ObjectFit = "cover"
	FitContain ObjectFit = "contain"
)

var defaultBorderColor = color.NRGBA{0, 0, 0, 255}

// Fit returns the source region of an imgW×imgH image and the destination
// rectangle within a boxW×boxH box.
//
//   - fill stretches the whole image to the box.
//   - cover scales by max(boxW/imgW, boxH/imgH) and crops the centre.
//   - contain scales by min(boxW/imgW, boxH/imgH) and centres the result.
func Fit(mode ObjectFit, imgW, imgH, boxW, boxH float64) (src, dst Rect) {
	if imgW <= 0 || imgH <= 0 || boxW <= 0 || boxH <= 0 {
		return Rect{}, Rect{}
	}
	full := Rect{W: imgW, H: imgH}
	box := Rect{W: boxW, H: boxH}

	switch mode {
	case FitCover:
		scale := math.Max(boxW/imgW, boxH/imgH)
		sw, sh := boxW/scale, boxH/scale
		return Rect{X: (imgW - sw) / 2, Y: (imgH - sh) / 2, W: sw, H: sh}, box
	case FitContain:
		scale := math.Min(boxW/imgW, boxH/imgH)
		dw, dh := imgW*scale, imgH*scale
		return full, Rect{X: (boxW - dw) / 2, Y: (boxH - dh) / 2, W: dw, H: dh}
	}
	return full, box
}

func objectFit(s string, t document.LayerType) ObjectFit {
	switch ObjectFit(strings.ToLower(s)) {
	case FitFill:
		return FitFill
	case FitCover:
		return FitCover
	case FitContain:
		return FitContain
	}
	if t == document.LayerLogo {
		return FitContain
	}
	return FitCover
}

// paintImage draws an image or logo layer: the fitted image, then its border.
func paintImage(ctx context.Context, s Surface, env *renderEnv, l *document.Layer, g geometry) error {
	st := l.Style

	if src := strings.TrimSpace(l.FileURL); src != "" {
		img, err := env.image(ctx, src)
		if err != nil {
			return err
		}
		b := img.Bounds()
		srcR, dstR := Fit(objectFit(st.ObjectFit, l.Type), float64(b.Dx()), float64(b.Dy()), g.W, g.H)
		if dstR.W > 0 && dstR.H > 0 {
			filtered := st.Filter != "" && st.Filter != "none"
			if filtered {
				s.SetFilter(st.Filter)
			}
			s.DrawImage(img, srcR, dstR)
			if filtered {
				s.SetFilter("")
			}
		}
	}

	strokeBorder(s, env, l, g)
	return nil
}

// strokeBorder strokes the layer box when a border width is set. The radius
// is clamped to half the shorter side.
func strokeBorder(s Surface, env *renderEnv, l *document.Layer, g geometry) {
	st := l.Style
	if st.BorderWidth <= 0 {
		return
	}
	col := defaultBorderColor
	if st.BorderColor != "" {
		c, err := document.ParseColor(st.BorderColor)
		if err != nil {
			env.logger.Warn("invalid border color, using default", "layer", l.ID, "color", st.BorderColor)
		} else {
			col = c
		}
	}
	s.StrokeRect(Rect{W: g.W, H: g.H}, clampRadius(st.BorderRadius*g.Scale, g.W, g.H), st.BorderWidth*g.Scale, col)
}

func clampRadius(r, w, h float64) float64 {
	if r <= 0 {
		return 0
	}
	return math.Min(r, math.Min(w, h)/2)
}

// image returns the image for src from the cache, loading and caching it on
// a miss. Load errors are returned to abort the render.
func (env *renderEnv) image(ctx context.Context, src string) (image.Image, error) {
	if img, ok := env.cache.Get(src); ok {
		env.logger.Debug("image cache hit", "src", src)
		return img, nil
	}
	if env.loader == nil {
		return nil, ErrNoImageLoader
	}
	img, err := env.loader.LoadImage(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("load image %q: %w", src, err)
	}
	if img == nil {
		return nil, fmt.Errorf("load image %q: loader returned no image", src)
	}
	env.cache.Put(src, img)
	return img, nil
}
