// style.go - Field-name addressed style overrides.
package document

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// styleSetter assigns a coerced value to one style field. It returns false
// when the value cannot be coerced; the style is then left unchanged.
type styleSetter func(s *Style, v any) bool

// styleSetters is keyed by the JSON name of each Style field.
var styleSetters = map[string]styleSetter{
	"fontFamily":      setString(func(s *Style) *string { return &s.FontFamily }),
	"fontSize":        setFloat(func(s *Style) *float64 { return &s.FontSize }),
	"fontWeight":      setString(func(s *Style) *string { return &s.FontWeight }),
	"fontStyle":       setString(func(s *Style) *string { return &s.FontStyle }),
	"color":           setString(func(s *Style) *string { return &s.Color }),
	"textAlign":       setString(func(s *Style) *string { return &s.TextAlign }),
	"lineHeight":      setFloat(func(s *Style) *float64 { return &s.LineHeight }),
	"textTransform":   setString(func(s *Style) *string { return &s.TextTransform }),
	"objectFit":       setString(func(s *Style) *string { return &s.ObjectFit }),
	"filter":          setString(func(s *Style) *string { return &s.Filter }),
	"backgroundColor": setString(func(s *Style) *string { return &s.BackgroundColor }),
	"borderWidth":     setFloat(func(s *Style) *float64 { return &s.BorderWidth }),
	"borderColor":     setString(func(s *Style) *string { return &s.BorderColor }),
	"borderRadius":    setFloat(func(s *Style) *float64 { return &s.BorderRadius }),
	"gradientType":    setString(func(s *Style) *string { return &s.GradientType }),
	"angle":           setFloat(func(s *Style) *float64 { return &s.Angle }),
	"colorStops":      setStops,
	"shadowColor":     setString(func(s *Style) *string { return &s.ShadowColor }),
	"shadowBlur":      setFloat(func(s *Style) *float64 { return &s.ShadowBlur }),
	"shadowOffsetX":   setFloat(func(s *Style) *float64 { return &s.ShadowOffsetX }),
	"shadowOffsetY":   setFloat(func(s *Style) *float64 { return &s.ShadowOffsetY }),
}

// StyleFields returns the overridable style field names, sorted.
func StyleFields() []string {
	names := make([]string, 0, len(styleSetters))
	for name := range styleSetters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsStyleField reports whether name is an overridable style field.
func IsStyleField(name string) bool {
	_, ok := styleSetters[name]
	return ok
}

// With returns a copy of s with the named field set to v. The second result
// is false when the field is unknown or v cannot be coerced to its type.
func (s Style) With(field string, v any) (Style, bool) {
	set, ok := styleSetters[field]
	if !ok {
		return s, false
	}
	out := s.Clone()
	if !set(&out, v) {
		return s, false
	}
	return out, true
}

// Clone returns a deep copy of s.
func (s Style) Clone() Style {
	if s.ColorStops != nil {
		s.ColorStops = append([]ColorStop(nil), s.ColorStops...)
	}
	return s
}

func setString(field func(*Style) *string) styleSetter {
	return func(s *Style, v any) bool {
		str, ok := asString(v)
		if !ok {
			return false
		}
		*field(s) = str
		return true
	}
}

func setFloat(field func(*Style) *float64) styleSetter {
	return func(s *Style, v any) bool {
		f, ok := asFloat(v)
		if !ok {
			return false
		}
		*field(s) = f
		return true
	}
}

func setStops(s *Style, v any) bool {
	var stops []ColorStop
	switch t := v.(type) {
	case []ColorStop:
		stops = append(stops, t...)
	case string:
		if err := json.Unmarshal([]byte(t), &stops); err != nil {
			return false
		}
	case []any:
		// Decoded JSON: re-encode and decode into the typed form.
		raw, err := json.Marshal(t)
		if err != nil {
			return false
		}
		if err := json.Unmarshal(raw, &stops); err != nil {
			return false
		}
	default:
		return false
	}
	s.ColorStops = stops
	return true
}

// asString renders a primitive field value as text.
func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(t), "px"), 64)
		return f, err == nil
	}
	return 0, false
}
