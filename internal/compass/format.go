package compass

import (
	"fmt"
	"strings"

	"github.com/ppiankov/valuecompass/internal/model"
)

// NoHintsMessage is returned by FormatKeywordHintsForPrompt for an empty list
const NoHintsMessage = "KEYWORD HINTS: none detected. Proceed with your own analysis of the action."

// HintsHeader precedes the hint lines in a non-empty prompt block
const HintsHeader = "KEYWORD HINTS (pre-detected from the action text; treat as starting points and verify against context):"

// FormatKeywordHintsForPrompt renders hints as a prompt block, one line per hint
func FormatKeywordHintsForPrompt(hints []model.Hint) string {
	if len(hints) == 0 {
		return NoHintsMessage
	}

	var b strings.Builder
	b.WriteString(HintsHeader)
	for _, h := range hints {
		fmt.Fprintf(&b, "\n%s (polarity: %+d, confidence: %.2f, keywords: %s)",
			h.Key(), h.Polarity, h.Confidence, strings.Join(h.MatchedKeywords, ", "))
	}
	return b.String()
}
