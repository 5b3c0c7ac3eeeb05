// cache.go - Write-once image cache shared across renders.
package assets

import (
	"image"
	"sync"
	"sync/atomic"
)

// Cache is a write-once image cache keyed by source string. The first image
// stored for a key wins. It implements render.ImageCache and is safe for
// concurrent use, so one cache may be shared by many renders.
type Cache struct {
	m sync.Map
	n atomic.Int64
}

// NewCache returns an empty cache.
func NewCache() *Cache { return &Cache{} }

func (c *Cache) Get(src string) (image.Image, bool) {
	v, ok := c.m.Load(src)
	if !ok {
		return nil, false
	}
	return v.(image.Image), true
}

func (c *Cache) Put(src string, img image.Image) {
	if img == nil {
		return
	}
	if _, loaded := c.m.LoadOrStore(src, img); !loaded {
		c.n.Add(1)
	}
}

// Len returns the number of cached images.
func (c *Cache) Len() int { return int(c.n.Load()) }

// Forget drops one entry, so the next render reloads it.
func (c *Cache) Forget(src string) {
	if _, loaded := c.m.LoadAndDelete(src); loaded {
		c.n.Add(-1)
	}
}

// Clear drops all entries.
func (c *Cache) Clear() {
	c.m.Range(func(k, _ any) bool {
		c.Forget(k.(string))
		return true
	})
}
