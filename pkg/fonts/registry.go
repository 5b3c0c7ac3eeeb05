// registry.go - Font registry: builtin Go fonts plus custom TTF/OTF files.
// Families are looked up case-insensitively; variants are chosen by nearest
// weight and italic flag. Unknown families fall back to DefaultFamily.
package fonts

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"

	"github.com/xob0t/stencilkit/pkg/render"
)

// DefaultFamily is the family used for unknown or empty requests.
const DefaultFamily = "Go"

// Registry holds parsed fonts by family. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	families map[string]*family // keyed by normalized name
	aliases  map[string]string  // normalized alias -> normalized family
}

type family struct {
	name  string
	fonts map[variant]*opentype.Font
}

type variant struct {
	weight int
	italic bool
}

// New returns a registry preloaded with the Go font families and the
// generic CSS family aliases.
func New() *Registry {
	r := newRegistry()
	for _, b := range builtins {
		f, err := opentype.Parse(b.ttf)
		if err != nil {
			panic(fmt.Sprintf("fonts: builtin %s: %v", b.family, err))
		}
		r.add(b.family, variant{b.weight, b.italic}, f)
	}
	for alias, target := range genericAliases {
		r.aliases[normalize(alias)] = normalize(target)
	}
	return r
}

func newRegistry() *Registry {
	return &Registry{
		families: make(map[string]*family),
		aliases:  make(map[string]string),
	}
}

func (r *Registry) add(name string, v variant, f *opentype.Font) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := normalize(name)
	fam, ok := r.families[key]
	if !ok {
		fam = &family{name: name, fonts: make(map[variant]*opentype.Font)}
		r.families[key] = fam
	}
	fam.fonts[v] = f
}

// Register parses font data and adds it under name. An empty name uses the
// family recorded in the font's name table. The variant is taken from the
// subfamily name ("Bold Italic", "Medium", ...). It returns the family name.
func (r *Registry) Register(name string, data []byte) (string, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return "", fmt.Errorf("parse font: %w", err)
	}
	if name == "" {
		name, err = f.Name(nil, sfnt.NameIDFamily)
		if err != nil || strings.TrimSpace(name) == "" {
			return "", fmt.Errorf("font has no family name")
		}
	}
	sub, _ := f.Name(nil, sfnt.NameIDSubfamily)
	r.add(name, subfamilyVariant(sub), f)
	return name, nil
}

// LoadFile registers the font file at path under its own family name.
func (r *Registry) LoadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read font %s: %w", path, err)
	}
	name, err := r.Register("", data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return name, nil
}

// LoadDir registers every .ttf and .otf file below dir and returns the
// family names added, sorted and deduplicated.
func (r *Registry) LoadDir(dir string) ([]string, error) {
	seen := make(map[string]struct{})
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".ttf", ".otf":
		default:
			return nil
		}
		name, err := r.LoadFile(path)
		if err != nil {
			return err
		}
		seen[name] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// Families returns the registered family names, sorted.
func (r *Registry) Families() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.families))
	for _, f := range r.families {
		names = append(names, f.name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the registered name of family, following generic aliases.
func (r *Registry) Lookup(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if f := r.lookup(name); f != nil {
		return f.name, true
	}
	return "", false
}

func (r *Registry) lookup(name string) *family {
	key := normalize(name)
	if f, ok := r.families[key]; ok {
		return f
	}
	if target, ok := r.aliases[key]; ok {
		return r.families[target]
	}
	return nil
}

// Font returns the closest variant of family for the CSS weight and style,
// falling back to DefaultFamily. It returns nil only for an empty registry.
func (r *Registry) Font(name, weight, style string) *opentype.Font {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fam := r.lookup(name)
	if fam == nil {
		fam = r.lookup(DefaultFamily)
	}
	if fam == nil {
		return nil
	}
	return fam.closest(variant{ParseWeight(weight), isItalic(style)})
}

// NewFace returns a new unhinted face for f, with Size in pixels. Faces are
// not safe for concurrent use; callers cache them per goroutine.
func (r *Registry) NewFace(f render.Font) (font.Face, error) {
	ot := r.Font(f.Family, f.Weight, f.Style)
	if ot == nil {
		return nil, fmt.Errorf("no fonts registered")
	}
	size := f.Size
	if size <= 0 {
		size = render.DefaultFontSize
	}
	face, err := opentype.NewFace(ot, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	return face, nil
}

// CheckFont reports whether family is registered. Unknown families fall back
// to DefaultFamily.
func (r *Registry) CheckFont(_ context.Context, name string) render.FontValidation {
	if canonical, ok := r.Lookup(name); ok {
		return render.FontValidation{IsValid: true, FallbackFont: canonical, Confidence: 1}
	}
	return render.FontValidation{FallbackUsed: true, FallbackFont: DefaultFamily}
}

// closest picks the variant with matching italic flag and nearest weight;
// ties go to the lighter weight.
func (f *family) closest(want variant) *opentype.Font {
	var (
		best       *opentype.Font
		bestCost   int
		bestWeight int
	)
	for v, ot := range f.fonts {
		cost := abs(v.weight - want.weight)
		if v.italic != want.italic {
			cost += 1000
		}
		if best == nil || cost < bestCost || (cost == bestCost && v.weight < bestWeight) {
			best, bestCost, bestWeight = ot, cost, v.weight
		}
	}
	return best
}

// ParseWeight maps a CSS font-weight to its numeric value (default 400).
func ParseWeight(s string) int {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal", "regular":
		return 400
	case "bold", "bolder":
		return 700
	case "lighter", "light":
		return 300
	case "medium":
		return 500
	case "semibold":
		return 600
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 1000 {
		return 400
	}
	return n
}

func isItalic(style string) bool {
	switch strings.ToLower(strings.TrimSpace(style)) {
	case "italic", "oblique":
		return true
	}
	return false
}

// subfamilyVariant reads weight and slant from a subfamily name.
func subfamilyVariant(sub string) variant {
	s := strings.ToLower(sub)
	v := variant{weight: 400, italic: strings.Contains(s, "italic") || strings.Contains(s, "oblique")}
	for _, w := range []struct {
		word   string
		weight int
	}{
		{"thin", 100}, {"extralight", 200}, {"light", 300}, {"medium", 500},
		{"semibold", 600}, {"extrabold", 800}, {"bold", 700}, {"black", 900},
	} {
		if strings.Contains(strings.ReplaceAll(s, " ", ""), w.word) {
			v.weight = w.weight
			break
		}
	}
	return v
}

// normalize folds case, strips CSS quotes and collapses whitespace.
func normalize(name string) string {
	name = strings.Trim(strings.TrimSpace(name), `"'`)
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
