package compass

import "strings"

// strongThreshold lifts any modifier-backed match to magnitude 2
const strongThreshold = 0.85

// Strength scales a ±1 polarity to a signed magnitude of 1 or 2
func Strength(polarity int, confidence float64, modifier string) int {
	return Default().Strength(polarity, confidence, modifier)
}

// Strength applies the magnitude rule using this taxonomy's strong-modifier set.
// Containment is checked in both directions so compound phrasing still counts.
func (t *Taxonomy) Strength(polarity int, confidence float64, modifier string) int {
	sign := 1
	if polarity < 0 {
		sign = -1
	}
	if confidence >= strongThreshold {
		return sign * 2
	}
	if modifier != "" {
		for _, sm := range t.strong {
			if strings.Contains(modifier, sm) || strings.Contains(sm, modifier) {
				return sign * 2
			}
		}
	}
	return sign
}
