// effects.go - Scratch compositing for alpha, shadows and filters.
package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/xob0t/stencilkit/pkg/render"
)

// draw runs paint with the current transform (plus extra) applied. Plain
// draws go straight to the canvas. With alpha, shadow or filter state the
// primitive is painted on the scratch image and the device region covering
// bounds (user space) is composited.
func (c *Canvas) draw(bounds render.Rect, extra []op, paint func(dc *gg.Context)) {
	if c.st.alpha <= 0 {
		return
	}
	if c.st.alpha >= 1 && !c.st.shadow.Visible() && len(c.st.filter) == 0 {
		c.apply(c.dc, extra)
		paint(c.dc)
		return
	}

	c.ensureScratch()
	c.apply(c.scratch, extra)
	paint(c.scratch)
	c.composite(c.deviceBounds(bounds))
}

func (c *Canvas) ensureScratch() {
	if c.scratch != nil {
		return
	}
	c.scratchImg = image.NewRGBA(c.img.Bounds())
	c.scratch = gg.NewContextForRGBA(c.scratchImg)
}

// deviceBounds maps a user-space rectangle to the pixel region it can
// touch, padded for antialiasing and filter blur.
func (c *Canvas) deviceBounds(r render.Rect) image.Rectangle {
	m := c.matrix()
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range [4][2]float64{{r.X, r.Y}, {r.X + r.W, r.Y}, {r.X, r.Y + r.H}, {r.X + r.W, r.Y + r.H}} {
		x, y := m.TransformPoint(p[0], p[1])
		minX, minY = math.Min(minX, x), math.Min(minY, y)
		maxX, maxY = math.Max(maxX, x), math.Max(maxY, y)
	}

	pad := 2.0 + filterSpread(c.st.filter)
	return image.Rect(
		int(math.Floor(minX-pad)), int(math.Floor(minY-pad)),
		int(math.Ceil(maxX+pad)), int(math.Ceil(maxY+pad)),
	).Intersect(c.img.Bounds())
}

// composite moves region b of the scratch image onto the canvas with the
// current filter, shadow and alpha, then clears it.
func (c *Canvas) composite(b image.Rectangle) {
	if b.Empty() {
		return
	}
	defer draw.Draw(c.scratchImg, b, image.Transparent, image.Point{}, draw.Src)

	layer := applyFilters(imaging.Crop(c.scratchImg, b), c.st.filter)
	mask := image.NewUniform(color.Alpha{A: uint8(c.st.alpha*255 + 0.5)})

	if sh := c.st.shadow; sh.Visible() {
		c.drawShadow(layer, b.Min, sh, mask)
	}
	draw.DrawMask(c.img, b, layer, image.Point{}, mask, image.Point{}, draw.Over)
}

// drawShadow paints the shadow of layer, whose top-left device position is
// at. The shadow is the layer's alpha tinted with the shadow color, blurred
// with sigma blur/2 and offset in device pixels.
func (c *Canvas) drawShadow(layer *image.NRGBA, at image.Point, sh render.Shadow, mask image.Image) {
	pad := int(math.Ceil(sh.Blur * 1.5))
	lb := layer.Bounds()
	shadow := image.NewNRGBA(image.Rect(0, 0, lb.Dx()+2*pad, lb.Dy()+2*pad))

	for y := 0; y < lb.Dy(); y++ {
		row := layer.Pix[y*layer.Stride : y*layer.Stride+lb.Dx()*4]
		for x := 0; x < lb.Dx(); x++ {
			a := row[x*4+3]
			if a == 0 {
				continue
			}
			i := (y+pad)*shadow.Stride + (x+pad)*4
			shadow.Pix[i+0] = sh.Color.R
			shadow.Pix[i+1] = sh.Color.G
			shadow.Pix[i+2] = sh.Color.B
			shadow.Pix[i+3] = uint8(uint32(a) * uint32(sh.Color.A) / 255)
		}
	}

	var src image.Image = shadow
	if sh.Blur > 0 {
		src = imaging.Blur(shadow, sh.Blur/2)
	}
	off := image.Pt(int(math.Round(sh.OffsetX))-pad, int(math.Round(sh.OffsetY))-pad)
	dst := shadow.Bounds().Add(at).Add(off)
	draw.DrawMask(c.img, dst, src, image.Point{}, mask, image.Point{}, draw.Over)
}
