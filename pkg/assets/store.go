// store.go - In-memory asset store for uploaded images and fonts.
// Assets are addressed by a random id, as "<id>", "asset:<id>" or
// "/api/assets/<id>" in document fileUrl values.
package assets

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"image"
	"mime"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// SchemePrefix marks a store reference in a source string.
const SchemePrefix = "asset:"

// APIPrefix is the URL path under which the server serves store assets.
const APIPrefix = "/api/assets/"

// Asset is one stored file.
type Asset struct {
	Name string
	Data []byte
	Mime string
}

// Info describes an asset without its data.
type Info struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Mime string `json:"mime"`
	Size int    `json:"size"`
}

// Store holds assets in memory. It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	assets map[string]*Asset
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{assets: make(map[string]*Asset)}
}

// Add stores data and returns its id. An empty mime type is derived from
// the file extension.
func (s *Store) Add(name string, data []byte, mimeType string) string {
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(name))
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	id := randomID()
	s.mu.Lock()
	s.assets[id] = &Asset{Name: name, Data: data, Mime: mimeType}
	s.mu.Unlock()
	return id
}

// Get returns the asset with the given id.
func (s *Store) Get(id string) (*Asset, bool) {
	s.mu.RLock()
	a, ok := s.assets[id]
	s.mu.RUnlock()
	return a, ok
}

// List returns all assets ordered by name, then id.
func (s *Store) List() []Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Info, 0, len(s.assets))
	for id, a := range s.assets {
		out = append(out, Info{ID: id, Name: a.Name, Mime: a.Mime, Size: len(a.Data)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Remove deletes an asset and reports whether it existed.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assets[id]; !ok {
		return false
	}
	delete(s.assets, id)
	return true
}

// Files returns the stored data keyed by "<id><ext>", for bundling.
func (s *Store) Files() map[string][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]byte, len(s.assets))
	for id, a := range s.assets {
		out[id+extensionFor(a)] = a.Data
	}
	return out
}

// ID extracts the asset id from a source string, if it refers to the store.
func (s *Store) ID(src string) (string, bool) {
	src = strings.TrimSpace(src)
	switch {
	case strings.HasPrefix(src, SchemePrefix):
		src = strings.TrimPrefix(src, SchemePrefix)
	case strings.HasPrefix(src, APIPrefix):
		src = strings.TrimPrefix(src, APIPrefix)
	}
	_, ok := s.Get(src)
	return src, ok
}

// Claims reports whether src names an asset in the store.
func (s *Store) Claims(src string) bool {
	_, ok := s.ID(src)
	return ok
}

// LoadImage decodes the referenced asset. It implements render.ImageLoader.
func (s *Store) LoadImage(_ context.Context, src string) (image.Image, error) {
	id, ok := s.ID(src)
	if !ok {
		return nil, fmt.Errorf("asset %q: %w", src, ErrNotFound)
	}
	a, _ := s.Get(id)
	img, err := Decode(a.Data)
	if err != nil {
		return nil, fmt.Errorf("asset %s (%s): %w", id, a.Name, err)
	}
	return img, nil
}

func randomID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func extensionFor(a *Asset) string {
	if ext := filepath.Ext(a.Name); ext != "" {
		return strings.ToLower(ext)
	}
	switch {
	case strings.Contains(a.Mime, "font"), strings.Contains(a.Mime, "ttf"):
		return ".ttf"
	case strings.Contains(a.Mime, "png"):
		return ".png"
	case strings.Contains(a.Mime, "jpeg"), strings.Contains(a.Mime, "jpg"):
		return ".jpg"
	case strings.Contains(a.Mime, "webp"):
		return ".webp"
	}
	return ""
}
