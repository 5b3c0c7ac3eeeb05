// match.go - Near-match font checking against a client font list.
package fonts

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/xob0t/stencilkit/pkg/render"
)

// DefaultMatchThreshold is the minimum similarity for a near match.
const DefaultMatchThreshold = 0.8

// MatchChecker validates families against the list of fonts a client
// reports as installed. A family that is not listed exactly falls back to
// the most similar listed family when it is close enough, otherwise to the
// configured fallback.
type MatchChecker struct {
	mu        sync.RWMutex
	available []string
	fallback  string
	threshold float64
}

// NewMatchChecker returns a checker for the given families. An empty
// fallback means DefaultFamily.
func NewMatchChecker(available []string, fallback string) *MatchChecker {
	if fallback == "" {
		fallback = DefaultFamily
	}
	m := &MatchChecker{fallback: fallback, threshold: DefaultMatchThreshold}
	m.SetAvailable(available)
	return m
}

// SetAvailable replaces the client-reported family list.
func (m *MatchChecker) SetAvailable(families []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.available = append([]string(nil), families...)
}

// SetThreshold sets the similarity in (0,1] a near match must reach.
func (m *MatchChecker) SetThreshold(t float64) {
	if t <= 0 || t > 1 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.threshold = t
}

// CheckFont implements render.FontChecker.
func (m *MatchChecker) CheckFont(_ context.Context, family string) render.FontValidation {
	m.mu.RLock()
	defer m.mu.RUnlock()

	want := squash(family)
	if want == "" {
		return render.FontValidation{FallbackUsed: true, FallbackFont: m.fallback}
	}
	if _, ok := genericAliases[normalize(family)]; ok {
		return render.FontValidation{IsValid: true, Confidence: 1}
	}

	var (
		best      string
		bestScore float64
	)
	for _, name := range m.available {
		score := similarity(want, squash(name))
		if score == 1 {
			return render.FontValidation{IsValid: true, Confidence: 1}
		}
		if score > bestScore {
			best, bestScore = name, score
		}
	}

	if best != "" && bestScore >= m.threshold {
		return render.FontValidation{FallbackUsed: true, FallbackFont: best, Confidence: bestScore}
	}
	return render.FontValidation{FallbackUsed: true, FallbackFont: m.fallback, Confidence: bestScore}
}

// squash folds case and drops quotes, spaces, hyphens and underscores, so
// "Open Sans", "open-sans" and "OpenSans" compare equal.
func squash(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '-', '_', '"', '\'', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// similarity is 1 minus the normalized Levenshtein distance.
func similarity(a, b string) float64 {
	n := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if n == 0 {
		return 1
	}
	return 1 - float64(levenshtein([]rune(a), []rune(b)))/float64(n)
}

func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
