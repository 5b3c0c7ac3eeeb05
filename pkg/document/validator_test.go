package document

import (
	"reflect"
	"strings"
	"testing"
)

func TestValidateFields(t *testing.T) {
	doc := &Document{Layers: []Layer{
		{ID: "title", Type: LayerText},
		{ID: "hero_img", Type: LayerImage},
	}}
	fields := FieldValues{
		"title":                "Hi",
		"title_color":          "#fff",
		"hero_img_borderWidth": 4.0,
		"title_fontSize":       "huge",
		"subtitle":             "missing",
		"title_sparkle":        true,
	}

	got := ValidateFields(fields, doc)
	if len(got) != 3 {
		t.Fatalf("warnings = %q, want 3", got)
	}
	for i, key := range []string{"subtitle", "title_fontSize", "title_sparkle"} {
		if !strings.Contains(got[i], key) {
			t.Errorf("warning %d = %q, want it to name %q", i, got[i], key)
		}
	}

	if w := ValidateFields(nil, doc); w != nil {
		t.Errorf("nil fields: %q", w)
	}
}

func TestSplitStyleKey(t *testing.T) {
	known := map[string]struct{}{"hero": {}, "hero_img": {}}
	tests := []struct {
		key       string
		id, field string
		ok        bool
	}{
		{"hero_color", "hero", "color", true},
		{"hero_img_borderWidth", "hero_img", "borderWidth", true},
		{"hero_img", "", "", false},
		{"villain_color", "", "", false},
	}
	for _, tt := range tests {
		id, field, ok := splitStyleKey(tt.key, known)
		if id != tt.id || field != tt.field || ok != tt.ok {
			t.Errorf("splitStyleKey(%q) = %q, %q, %v", tt.key, id, field, ok)
		}
	}
}

func TestFormatFields(t *testing.T) {
	hidden := false
	doc := &Document{
		Meta:   Meta{Name: "Promo", Version: "2"},
		Canvas: Canvas{Width: 1080, Height: 1080},
		Layers: []Layer{
			{ID: "logo", Type: LayerLogo, Order: 1, Visible: &hidden},
			{ID: "title", Type: LayerText},
		},
	}

	out := FormatFields(doc)
	for _, want := range []string{
		"Document: Promo (v2)",
		"Canvas: 1080x1080",
		"[title] text, order 0",
		"[logo] logo, order 1, hidden",
		"title_color:",
		"logo_objectFit:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "[title]") > strings.Index(out, "[logo]") {
		t.Error("layers not listed in paint order")
	}
}

func TestStyleFields(t *testing.T) {
	names := StyleFields()
	if len(names) != 21 {
		t.Errorf("StyleFields() has %d names", len(names))
	}
	for _, typ := range []LayerType{LayerText, LayerImage, LayerElement, LayerGradient} {
		for _, f := range fieldsFor(typ) {
			if !IsStyleField(f) {
				t.Errorf("%s lists unknown field %q", typ, f)
			}
		}
	}
	if s, ok := (Style{}).With("angle", "45"); !ok || s.Angle != 45 {
		t.Errorf("With(angle, \"45\") = %+v, %v", s, ok)
	}
	if !reflect.DeepEqual((Style{}).Clone(), Style{}) {
		t.Error("Clone of zero style is not zero")
	}
}
