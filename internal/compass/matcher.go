package compass

import (
	"strings"

	"github.com/ppiankov/valuecompass/internal/model"
)

// Variants expands a keyword into its morphological variants in search
// order. The lower-cased original always comes first so exact matches win
// over generated forms.
func Variants(keyword string) []string {
	base := strings.ToLower(strings.TrimSpace(keyword))
	if base == "" {
		return nil
	}

	stem := base
	if strings.HasSuffix(base, "e") {
		stem = strings.TrimSuffix(base, "e")
	}

	candidates := []string{base}

	// plural / singular
	if strings.HasSuffix(base, "s") {
		candidates = append(candidates, strings.TrimSuffix(base, "s"))
	} else {
		candidates = append(candidates, base+"s")
	}

	// gerund
	candidates = append(candidates, stem+"ing")

	// past tense
	if strings.HasSuffix(base, "e") {
		candidates = append(candidates, base+"d")
	} else {
		candidates = append(candidates, base+"ed")
	}

	// nominalizations
	candidates = append(candidates, stem+"ation", stem+"ion", base+"ment")

	if strings.Contains(base, "-") {
		candidates = append(candidates,
			strings.ReplaceAll(base, "-", " "),
			strings.ReplaceAll(base, "-", ""),
		)
	}

	seen := make(map[string]bool, len(candidates))
	variants := make([]string, 0, len(candidates))
	for _, v := range candidates {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		variants = append(variants, v)
	}
	return variants
}

// FindKeywordMatch returns the first variant of keyword found in text.
// Single-word variants must sit on word boundaries ("art" never matches
// inside "party"); variants containing a space are searched as phrases.
func FindKeywordMatch(text, keyword string) (model.KeywordMatch, bool) {
	if text == "" {
		return model.KeywordMatch{}, false
	}
	lower := strings.ToLower(text)

	for _, variant := range Variants(keyword) {
		var pos int
		if strings.Contains(variant, " ") {
			pos = strings.Index(lower, variant)
		} else {
			pos = indexWord(lower, variant)
		}
		if pos >= 0 {
			return model.KeywordMatch{
				Keyword:        keyword,
				MatchedVariant: variant,
				Position:       pos,
			}, true
		}
	}
	return model.KeywordMatch{}, false
}

// FindPhraseMatch is a plain case-insensitive substring search without
// morphological expansion. Used for the coercive phrase list.
func FindPhraseMatch(text, phrase string) (model.KeywordMatch, bool) {
	needle := strings.ToLower(strings.TrimSpace(phrase))
	if text == "" || needle == "" {
		return model.KeywordMatch{}, false
	}
	pos := strings.Index(strings.ToLower(text), needle)
	if pos < 0 {
		return model.KeywordMatch{}, false
	}
	return model.KeywordMatch{
		Keyword:        phrase,
		MatchedVariant: needle,
		Position:       pos,
	}, true
}

// indexWord finds the first occurrence of word in s that is not
// adjacent to another word character on either side. A single trailing
// "s" is allowed so generated nouns also match their plurals
// ("regulation" in "regulations").
func indexWord(s, word string) int {
	if word == "" {
		return -1
	}
	offset := 0
	for offset <= len(s)-len(word) {
		i := strings.Index(s[offset:], word)
		if i < 0 {
			return -1
		}
		start := offset + i
		end := start + len(word)
		if (start == 0 || !isWordByte(s[start-1])) && wordEnds(s, end) {
			return start
		}
		offset = start + 1
	}
	return -1
}

func wordEnds(s string, end int) bool {
	if end == len(s) || !isWordByte(s[end]) {
		return true
	}
	return s[end] == 's' && (end+1 == len(s) || !isWordByte(s[end+1]))
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
