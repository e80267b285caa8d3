package compass

import (
	"strings"

	"github.com/ppiankov/valuecompass/internal/model"
)

const (
	contextBefore = 30 // bytes inspected before a match
	contextAfter  = 10 // bytes inspected after the matched variant

	ConfidenceBare     = 0.6  // keyword present, no modifier nearby
	ConfidenceModifier = 0.9  // explicit modifier found
	ConfidenceCoercive = 0.95 // coercive phrase override
)

// AnalyzeContext decides whether a match at position reads as support or
// opposition by looking for modifiers in a small window around it.
// Position is an offset into the lower-cased text, as returned by the
// matcher. The caller inverts the polarity for oppose-list keywords.
func AnalyzeContext(text string, position int, matchedVariant string) model.PolarityContext {
	return Default().AnalyzeContext(text, position, matchedVariant)
}

// AnalyzeContext runs the context analysis against this taxonomy's modifier lists
func (t *Taxonomy) AnalyzeContext(text string, position int, matchedVariant string) model.PolarityContext {
	window := contextWindow(strings.ToLower(text), position, len(matchedVariant))

	for _, mod := range t.negative {
		if strings.Contains(window, mod) {
			return model.PolarityContext{Polarity: -1, ModifierWord: mod, Confidence: ConfidenceModifier}
		}
	}
	for _, mod := range t.positive {
		if strings.Contains(window, mod) {
			return model.PolarityContext{Polarity: 1, ModifierWord: mod, Confidence: ConfidenceModifier}
		}
	}

	// Support keyword lists are curated to be positive-valence, so bare
	// presence counts as weak support.
	return model.PolarityContext{Polarity: 1, Confidence: ConfidenceBare}
}

func contextWindow(lower string, position, matchLen int) string {
	if position < 0 {
		position = 0
	}
	if position > len(lower) {
		position = len(lower)
	}
	start := position - contextBefore
	if start < 0 {
		start = 0
	}
	end := position + matchLen + contextAfter
	if end > len(lower) {
		end = len(lower)
	}
	return lower[start:end]
}
