// merge.go - Merge per-render field values onto a layer.
package document

import (
	"net/url"
	"sort"
	"strings"
)

// Resolve returns the layer with its field-value overrides applied. The input
// layer is never modified; the result shares no mutable state with it.
//
//   - fields[layer.ID], when textual, replaces Content. For image-capable
//     layers it also replaces FileURL if it parses as an absolute URL.
//   - fields["<layer.ID>_<styleField>"] overrides that style field.
//
// Keys are matched by plain prefix, so a layer "a" and a layer "a_color"
// can shadow each other's keys; ids should avoid underscores.
func Resolve(layer Layer, fields FieldValues) Layer {
	out := layer.Clone()
	if len(fields) == 0 {
		return out
	}

	if v, ok := fields[layer.ID]; ok {
		if text, ok := asString(v); ok {
			out.Content = text
			if layer.Type.ImageCapable() && IsAbsoluteURL(text) {
				out.FileURL = text
			}
		}
	}

	// Apply style overrides in key order so repeated renders are identical.
	prefix := layer.ID + "_"
	var keys []string
	for key := range fields {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		if s, ok := out.Style.With(strings.TrimPrefix(key, prefix), fields[key]); ok {
			out.Style = s
		}
	}

	return out
}

// IsAbsoluteURL reports whether s is usable as an image source: a URL with
// scheme and host, or a data URL. Anything else is plain text.
func IsAbsoluteURL(s string) bool {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		return len(s) > len("data:")
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// Clone returns a deep copy of the layer.
func (l Layer) Clone() Layer {
	if l.Visible != nil {
		v := *l.Visible
		l.Visible = &v
	}
	if l.Opacity != nil {
		o := *l.Opacity
		l.Opacity = &o
	}
	if l.TextboxConfig != nil {
		cfg := *l.TextboxConfig
		if cfg.AutoWrap != nil {
			aw := *cfg.AutoWrap
			cfg.AutoWrap = &aw
		}
		if cfg.AutoResize != nil {
			ar := *cfg.AutoResize
			cfg.AutoResize = &ar
		}
		l.TextboxConfig = &cfg
	}
	l.Style = l.Style.Clone()
	return l
}

// SortedLayers returns the layers in paint order: ascending Order, ties in
// array order. The document's slice is not reordered.
func (d *Document) SortedLayers() []Layer {
	out := make([]Layer, len(d.Layers))
	copy(out, d.Layers)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}
