// textlayout.go - Pure text layout: wrapping, auto-resize and anchoring.
package render

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/xob0t/stencilkit/pkg/document"
)

// Text defaults, in document units.
const (
	DefaultFontFamily  = "Go"
	DefaultFontSize    = 16
	DefaultLineHeight  = 1.2
	DefaultMinFontSize = 8
	DefaultMaxFontSize = 72
)

// TextParams is the layout input derived from a text layer's style and
// textbox config. A zero Mode selects simple layout.
type TextParams struct {
	Font       Font // Size is the fixed font size
	Mode       document.TextMode
	Break      document.BreakMode
	WordBreak  bool
	LineHeight float64 // multiplier
	MinSize    float64
	MaxSize    float64
	Anchor     document.Anchor
	AutoExpand bool
}

// TextLine is one laid out line. Y is the top of the line, box-relative.
type TextLine struct {
	Text string
	Y    float64
}

// TextLayout is the result of laying out a text box.
type TextLayout struct {
	FontSize    float64
	LineHeight  float64 // multiplier
	Lines       []TextLine
	BlockHeight float64
}

// LayoutText lays out content in a w×h box. It is a pure function of its
// inputs: the measurer is only used to measure candidate lines.
func LayoutText(m Measurer, content string, w, h float64, p TextParams) TextLayout {
	lh := p.LineHeight
	if lh <= 0 {
		lh = DefaultLineHeight
	}

	var (
		size  float64
		lines []string
	)

	switch p.Mode {
	case "":
		size = floorSize(p.Font.Size)
		lines = strings.Split(content, "\n")
		return placeLines(lines, size, lh, h, document.AnchorTop, false)

	case document.TextModeResizeSingle:
		// Paragraphs are joined into one line before measuring.
		line := strings.ReplaceAll(content, "\n", " ")
		size = searchLargest(p.MinSize, p.MaxSize, func(size float64) bool {
			return m.MeasureText(withSize(p.Font, size), line) <= w
		})
		lines = []string{line}

	case document.TextModeResizeMulti:
		size = searchLargest(p.MinSize, p.MaxSize, func(size float64) bool {
			wrapped := WrapText(m, withSize(p.Font, size), content, w, p.Break, p.WordBreak)
			return float64(len(wrapped))*size*lh <= h
		})
		lines = WrapText(m, withSize(p.Font, size), content, w, p.Break, p.WordBreak)

	default:
		size = floorSize(p.Font.Size)
		lines = WrapText(m, withSize(p.Font, size), content, w, p.Break, p.WordBreak)
	}

	return placeLines(lines, size, lh, h, p.Anchor, p.AutoExpand)
}

// placeLines positions lines by anchor and drops lines that overflow the box.
// The first line is always kept.
func placeLines(lines []string, size, lh, h float64, anchor document.Anchor, autoExpand bool) TextLayout {
	step := size * lh
	block := float64(len(lines)) * step
	limit := h
	if autoExpand {
		limit = math.Max(h, block)
	}

	var startY float64
	if block <= limit {
		switch anchor {
		case document.AnchorMiddle:
			startY = (limit - block) / 2
		case document.AnchorBottom:
			startY = limit - block
		}
	}

	out := TextLayout{FontSize: size, LineHeight: lh}
	for i, text := range lines {
		y := startY + float64(i)*step
		if i > 0 && y+step > limit+1e-9 {
			break
		}
		out.Lines = append(out.Lines, TextLine{Text: text, Y: y})
	}
	out.BlockHeight = float64(len(out.Lines)) * step
	return out
}

// searchLargest returns the largest integer size in [lo,hi] for which fits
// holds, assuming fits is monotonic. When nothing fits it returns lo.
func searchLargest(lo, hi float64, fits func(size float64) bool) float64 {
	if lo <= 0 {
		lo = DefaultMinFontSize
	}
	if hi <= 0 {
		hi = DefaultMaxFontSize
	}
	low, high := int(floorSize(lo)), int(floorSize(hi))
	if high < low {
		high = low
	}

	best := low
	for low <= high {
		mid := low + (high-low)/2
		if fits(float64(mid)) {
			best = mid
			low = mid + 1
		} else {
			high = mid - 1
		}
	}
	return float64(best)
}

// floorSize floors a font size to whole pixels, minimum 1.
func floorSize(size float64) float64 {
	if math.IsNaN(size) || size < 1 {
		return 1
	}
	return math.Floor(size)
}

func withSize(f Font, size float64) Font {
	f.Size = size
	return f
}

// WrapText breaks text into lines no wider than maxWidth. Hard newlines
// always start a new paragraph; a blank paragraph yields an empty line.
//
//   - word: greedy by words; an over-wide word stays whole on its own line
//     unless wordBreak is set, in which case it is split by characters.
//   - char: greedy by characters, ignoring word boundaries.
//   - hybrid: word wrapping with over-wide words split by characters.
func WrapText(m Measurer, f Font, text string, maxWidth float64, mode document.BreakMode, wordBreak bool) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		para = strings.TrimRight(para, "\r")
		if strings.TrimSpace(para) == "" {
			lines = append(lines, "")
			continue
		}
		if maxWidth <= 0 {
			lines = append(lines, para)
			continue
		}
		switch mode {
		case document.BreakChar:
			lines = append(lines, wrapChars(m, f, para, maxWidth)...)
		case document.BreakHybrid:
			lines = append(lines, wrapWords(m, f, para, maxWidth, true)...)
		default:
			lines = append(lines, wrapWords(m, f, para, maxWidth, wordBreak)...)
		}
	}
	return lines
}

func wrapWords(m Measurer, f Font, para string, maxWidth float64, splitLong bool) []string {
	var (
		lines   []string
		current string
	)

	startLine := func(word string) {
		if splitLong && m.MeasureText(f, word) > maxWidth {
			pieces := wrapChars(m, f, word, maxWidth)
			lines = append(lines, pieces[:len(pieces)-1]...)
			current = pieces[len(pieces)-1]
			return
		}
		current = word
	}

	for _, word := range strings.Fields(para) {
		if current == "" {
			startLine(word)
			continue
		}
		candidate := current + " " + word
		if m.MeasureText(f, candidate) <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = ""
		startLine(word)
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// wrapChars packs runes greedily. Whitespace at the start of a continuation
// line is dropped. Always returns at least one line for non-empty input.
func wrapChars(m Measurer, f Font, s string, maxWidth float64) []string {
	var (
		lines   []string
		current strings.Builder
	)
	for _, r := range s {
		if current.Len() > 0 && m.MeasureText(f, current.String()+string(r)) > maxWidth {
			lines = append(lines, current.String())
			current.Reset()
			if unicode.IsSpace(r) {
				continue
			}
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 || len(lines) == 0 {
		lines = append(lines, current.String())
	}
	return lines
}

// TransformText applies a CSS-like text-transform.
func TransformText(s, transform string) string {
	switch strings.ToLower(transform) {
	case "uppercase":
		return cases.Upper(language.Und).String(s)
	case "lowercase":
		return cases.Lower(language.Und).String(s)
	case "capitalize":
		return cases.Title(language.Und, cases.NoLower).String(s)
	}
	return s
}
