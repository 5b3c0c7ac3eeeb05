// validator.go - Validate field values against a document.
package document

import (
	"fmt"
	"sort"
	"strings"
)

// ValidateFields checks that every key addresses a layer id or a
// "<layerId>_<styleField>" pair. Returns warnings (never fatal errors);
// unknown keys are ignored at render time.
func ValidateFields(fields FieldValues, doc *Document) []string {
	if len(fields) == 0 || doc == nil {
		return nil
	}

	known := make(map[string]struct{}, len(doc.Layers))
	for _, l := range doc.Layers {
		known[l.ID] = struct{}{}
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var warnings []string
	for _, key := range keys {
		if _, ok := known[key]; ok {
			continue
		}
		if id, field, ok := splitStyleKey(key, known); ok {
			if _, ok := (Style{}).With(field, fields[key]); !ok {
				warnings = append(warnings, fmt.Sprintf("field %q: value %v is not valid for %s.%s; ignored", key, fields[key], id, field))
			}
			continue
		}
		warnings = append(warnings, fmt.Sprintf("field %q matches no layer or style field; ignored", key))
	}

	return warnings
}

// splitStyleKey finds a known layer id that prefixes key followed by "_" and
// a style field name.
func splitStyleKey(key string, known map[string]struct{}) (id, field string, ok bool) {
	for i := strings.IndexByte(key, '_'); i >= 0; {
		id, field = key[:i], key[i+1:]
		if _, ok := known[id]; ok && IsStyleField(field) {
			return id, field, true
		}
		next := strings.IndexByte(key[i+1:], '_')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return "", "", false
}

// FormatFields returns a human-readable list of the fields a document can be
// instantiated with.
func FormatFields(doc *Document) string {
	var b strings.Builder
	name := doc.Meta.Name
	if name == "" {
		name = "(untitled)"
	}
	fmt.Fprintf(&b, "Document: %s", name)
	if doc.Meta.Version != "" {
		fmt.Fprintf(&b, " (v%s)", doc.Meta.Version)
	}
	if doc.Meta.Author != "" {
		fmt.Fprintf(&b, " by %s", doc.Meta.Author)
	}
	fmt.Fprintf(&b, "\nCanvas: %gx%g\n", doc.Canvas.Width, doc.Canvas.Height)
	if doc.Meta.Description != "" {
		b.WriteString(doc.Meta.Description + "\n")
	}

	b.WriteString("\nLayers:\n")
	for _, l := range doc.SortedLayers() {
		fmt.Fprintf(&b, "\n  [%s] %s, order %d", l.ID, l.Type, l.Order)
		if !l.IsVisible() {
			b.WriteString(", hidden")
		}
		b.WriteString("\n")
		switch {
		case l.Type == LayerText:
			fmt.Fprintf(&b, "    %-28s %s\n", l.ID+":", "text content")
		case l.Type.ImageCapable():
			fmt.Fprintf(&b, "    %-28s %s\n", l.ID+":", "image URL (absolute) or text")
		}
		for _, field := range fieldsFor(l.Type) {
			fmt.Fprintf(&b, "    %-28s style override\n", l.ID+"_"+field+":")
		}
	}

	return b.String()
}

func fieldsFor(t LayerType) []string {
	common := []string{"shadowColor", "shadowBlur", "shadowOffsetX", "shadowOffsetY"}
	switch t {
	case LayerText:
		return append([]string{"fontFamily", "fontSize", "fontWeight", "fontStyle", "color", "textAlign", "lineHeight", "textTransform"}, common...)
	case LayerImage, LayerLogo:
		return append([]string{"objectFit", "filter", "borderWidth", "borderColor", "borderRadius"}, common...)
	case LayerElement:
		return append([]string{"backgroundColor", "borderWidth", "borderColor", "borderRadius"}, common...)
	case LayerGradient:
		return append([]string{"gradientType", "angle", "colorStops"}, common...)
	}
	return nil
}
