// png.go - PNG encoding with a reusable buffer pool.
package generator

import (
	"image"
	"image/png"
	"io"
	"sync"
)

// bufferPool recycles encoder buffers between PNG encodes.
type bufferPool struct {
	pool sync.Pool
}

func (p *bufferPool) Get() *png.EncoderBuffer {
	b, _ := p.pool.Get().(*png.EncoderBuffer)
	return b
}

func (p *bufferPool) Put(b *png.EncoderBuffer) { p.pool.Put(b) }

var pngEncoder = &png.Encoder{BufferPool: &bufferPool{}}

func encodePNG(w io.Writer, img image.Image) error {
	return pngEncoder.Encode(w, img)
}
