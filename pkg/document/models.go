// Package document defines the declarative design model: a canvas plus an
// ordered list of visual layers, and the per-render field values that
// instantiate it as a template.
package document

// ── Document types ──

// Document is the top-level structure of a document.json file.
// It is resolution-independent: all geometry may be rescaled at render time.
type Document struct {
	Meta   Meta    `json:"meta,omitempty"`
	Canvas Canvas  `json:"canvas"`
	Layers []Layer `json:"layers"`
}

// Meta holds document metadata.
type Meta struct {
	Name        string `json:"name,omitempty"`
	Version     string `json:"version,omitempty"`
	Author      string `json:"author,omitempty"`
	Description string `json:"description,omitempty"`
}

// Canvas defines the logical dimensions. A known Preset overrides Width/Height.
type Canvas struct {
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	BackgroundColor string  `json:"backgroundColor,omitempty"`
	Preset          string  `json:"preset,omitempty"`
}

// ── Layer types ──

// LayerType selects the painter used for a layer.
type LayerType string

const (
	LayerText     LayerType = "text"
	LayerImage    LayerType = "image"
	LayerLogo     LayerType = "logo"
	LayerElement  LayerType = "element"
	LayerGradient LayerType = "gradient"
)

// ImageCapable reports whether a layer of this type draws from FileURL.
func (t LayerType) ImageCapable() bool {
	return t == LayerImage || t == LayerLogo
}

// Layer is one positioned, styled visual element.
type Layer struct {
	ID            string         `json:"id"`
	Type          LayerType      `json:"type"`
	Order         int            `json:"order"`
	Position      Position       `json:"position"`
	Size          Size           `json:"size"`
	Rotation      float64        `json:"rotation,omitempty"` // degrees
	Visible       *bool          `json:"visible,omitempty"`  // nil = visible
	Opacity       *float64       `json:"opacity,omitempty"`  // nil = 1
	Style         Style          `json:"style"`
	Content       string         `json:"content,omitempty"`
	FileURL       string         `json:"fileUrl,omitempty"`
	TextboxConfig *TextBoxConfig `json:"textboxConfig,omitempty"`
}

// Position is the top-left corner of a layer in canvas units.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is the layer box in canvas units.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// IsVisible reports whether the layer should be painted.
func (l *Layer) IsVisible() bool {
	return l.Visible == nil || *l.Visible
}

// Alpha returns the layer opacity clamped to [0,1].
func (l *Layer) Alpha() float64 {
	if l.Opacity == nil {
		return 1
	}
	return clamp01(*l.Opacity)
}

// ── Text box configuration ──

// TextMode selects the text sizing strategy.
type TextMode string

const (
	TextModeWrapFixed    TextMode = "auto-wrap-fixed"
	TextModeResizeSingle TextMode = "auto-resize-single"
	TextModeResizeMulti  TextMode = "auto-resize-multi"
)

// BreakMode selects the line-wrapping strategy.
type BreakMode string

const (
	BreakWord   BreakMode = "word"
	BreakChar   BreakMode = "char"
	BreakHybrid BreakMode = "hybrid"
)

// Anchor is the vertical placement of a text block in its box.
type Anchor string

const (
	AnchorTop    Anchor = "top"
	AnchorMiddle Anchor = "middle"
	AnchorBottom Anchor = "bottom"
)

// TextBoxConfig controls wrapping and auto-sizing of a text layer.
// A nil config means simple rendering: hard newlines only.
type TextBoxConfig struct {
	TextMode   TextMode    `json:"textMode,omitempty"`
	AutoWrap   *AutoWrap   `json:"autoWrap,omitempty"`
	AutoResize *AutoResize `json:"autoResize,omitempty"`
	WordBreak  bool        `json:"wordBreak,omitempty"`
	Anchor     Anchor      `json:"anchor,omitempty"`
}

// AutoWrap configures wrapping for the fixed-size and multi-line modes.
type AutoWrap struct {
	BreakMode  BreakMode `json:"breakMode,omitempty"`
	LineHeight float64   `json:"lineHeight,omitempty"` // multiplier, overrides style
	AutoExpand bool      `json:"autoExpand,omitempty"`
}

// AutoResize bounds the binary search of the auto-resize modes.
type AutoResize struct {
	MinFontSize float64 `json:"minFontSize,omitempty"`
	MaxFontSize float64 `json:"maxFontSize,omitempty"`
}

// ── Style ──

// Style is the union of all per-type style fields. Each painter reads only
// the fields meaningful for its layer type; missing fields take defaults.
type Style struct {
	// text
	FontFamily    string  `json:"fontFamily,omitempty"`
	FontSize      float64 `json:"fontSize,omitempty"`
	FontWeight    string  `json:"fontWeight,omitempty"` // "normal", "bold", "100".."900"
	FontStyle     string  `json:"fontStyle,omitempty"`  // "normal", "italic"
	Color         string  `json:"color,omitempty"`
	TextAlign     string  `json:"textAlign,omitempty"`  // "left", "center", "right"
	LineHeight    float64 `json:"lineHeight,omitempty"` // multiplier
	TextTransform string  `json:"textTransform,omitempty"`

	// image, logo
	ObjectFit string `json:"objectFit,omitempty"` // "fill", "cover", "contain"
	Filter    string `json:"filter,omitempty"`    // e.g. "grayscale(1) blur(2px)"

	// element, image, logo
	BackgroundColor string  `json:"backgroundColor,omitempty"`
	BorderWidth     float64 `json:"borderWidth,omitempty"`
	BorderColor     string  `json:"borderColor,omitempty"`
	BorderRadius    float64 `json:"borderRadius,omitempty"`

	// gradient
	GradientType string      `json:"gradientType,omitempty"` // "linear", "radial"
	Angle        float64     `json:"angle,omitempty"`        // degrees
	ColorStops   []ColorStop `json:"colorStops,omitempty"`

	// any layer
	ShadowColor   string  `json:"shadowColor,omitempty"`
	ShadowBlur    float64 `json:"shadowBlur,omitempty"`
	ShadowOffsetX float64 `json:"shadowOffsetX,omitempty"`
	ShadowOffsetY float64 `json:"shadowOffsetY,omitempty"`
}

// ColorStop is one gradient stop. Position is in [0,1].
type ColorStop struct {
	Position float64 `json:"position"`
	Color    string  `json:"color"`
}

// ── Field values ──

// FieldValues maps a layer id, or "<layerId>_<styleField>", to an override.
// Values are primitives: string, float64/int, bool.
type FieldValues map[string]any

// ── Presets for common sizes ──

// Presets maps preset names to [width, height].
var Presets = map[string][2]float64{
	"720p":             {1280, 720},
	"1080p":            {1920, 1080},
	"4k":               {3840, 2160},
	"instagram_square": {1080, 1080},
	"instagram_post":   {1080, 1350},
	"instagram_story":  {1080, 1920},
	"youtube_thumb":    {1280, 720},
	"facebook_cover":   {820, 312},
	"a4_300dpi":        {2480, 3508},
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
