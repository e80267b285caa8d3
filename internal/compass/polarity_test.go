package compass

import (
	"strings"
	"testing"
)

func TestAnalyzeContext_Negative(t *testing.T) {
	text := "ban the festival"
	pc := AnalyzeContext(text, strings.Index(text, "festival"), "festival")

	if pc.Polarity != -1 {
		t.Errorf("Expected polarity -1, got %d", pc.Polarity)
	}
	if pc.ModifierWord != "ban" {
		t.Errorf("Expected modifier 'ban', got %q", pc.ModifierWord)
	}
	if pc.Confidence != ConfidenceModifier {
		t.Errorf("Expected confidence %.2f, got %.2f", ConfidenceModifier, pc.Confidence)
	}
}

func TestAnalyzeContext_Positive(t *testing.T) {
	text := "Expand the festival"
	pc := AnalyzeContext(text, strings.Index(strings.ToLower(text), "festival"), "festival")

	if pc.Polarity != 1 || pc.ModifierWord != "expand" || pc.Confidence != ConfidenceModifier {
		t.Errorf("Expected (+1, expand, 0.9), got %+v", pc)
	}
}

func TestAnalyzeContext_NegativeBeforePositive(t *testing.T) {
	text := "stop and expand the festival"
	pc := AnalyzeContext(text, strings.Index(text, "festival"), "festival")

	if pc.Polarity != -1 || pc.ModifierWord != "stop" {
		t.Errorf("Expected negative modifier to win, got %+v", pc)
	}
}

func TestAnalyzeContext_Bare(t *testing.T) {
	text := "the festival"
	pc := AnalyzeContext(text, 4, "festival")

	if pc.Polarity != 1 {
		t.Errorf("Expected default polarity +1, got %d", pc.Polarity)
	}
	if pc.ModifierWord != "" {
		t.Errorf("Expected no modifier, got %q", pc.ModifierWord)
	}
	if pc.Confidence != ConfidenceBare {
		t.Errorf("Expected confidence %.2f, got %.2f", ConfidenceBare, pc.Confidence)
	}
}

func TestAnalyzeContext_WindowBounds(t *testing.T) {
	// Modifier more than 30 bytes before the match is out of range.
	text := "increase" + strings.Repeat(" x", 20) + " festival"
	pc := AnalyzeContext(text, strings.Index(text, "festival"), "festival")
	if pc.ModifierWord != "" {
		t.Errorf("Expected modifier outside window to be ignored, got %q", pc.ModifierWord)
	}

	// Up to 10 bytes after the match are inspected.
	text = "festival and then expand"
	pc = AnalyzeContext(text, 0, "festival")
	if pc.ModifierWord != "" {
		t.Errorf("Expected partial modifier after window to be ignored, got %q", pc.ModifierWord)
	}
	text = "festival, expand"
	pc = AnalyzeContext(text, 0, "festival")
	if pc.ModifierWord != "expand" {
		t.Errorf("Expected modifier within 10 bytes after match, got %q", pc.ModifierWord)
	}
}

func TestAnalyzeContext_OutOfRangePosition(t *testing.T) {
	pc := AnalyzeContext("short", 500, "festival")
	if pc.Confidence != ConfidenceBare {
		t.Errorf("Expected bare confidence for out-of-range position, got %.2f", pc.Confidence)
	}
}

func TestStrength(t *testing.T) {
	tests := []struct {
		name       string
		polarity   int
		confidence float64
		modifier   string
		want       int
	}{
		{"bare support", 1, 0.6, "", 1},
		{"bare oppose", -1, 0.6, "", -1},
		{"modifier confidence", 1, 0.9, "increase", 2},
		{"negative modifier confidence", -1, 0.9, "reduce", -2},
		{"strong modifier low confidence", -1, 0.6, "ban", -2},
		{"compound strong modifier", 1, 0.6, "fully fund", 2},
		{"short modifier inside strong word", 1, 0.6, "im", 2},
		{"weak modifier low confidence", 1, 0.6, "increase", 1},
		{"coercive", 1, 0.95, "", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Strength(tt.polarity, tt.confidence, tt.modifier)
			if got != tt.want {
				t.Errorf("Strength(%d, %.2f, %q) = %d, want %d", tt.polarity, tt.confidence, tt.modifier, got, tt.want)
			}
		})
	}
}
