package score

import (
	"testing"

	"github.com/ppiankov/valuecompass/internal/compass"
	"github.com/ppiankov/valuecompass/internal/model"
)

func protestHints() []model.Hint {
	return compass.DetectKeywordHints("Ban public protests", "Impose martial law to restore order")
}

func TestScorer_Calculate_Mixed(t *testing.T) {
	scorer := NewScorer()

	effects := []model.Effect{
		{Axis: "how:6", Polarity: 2},
		{Axis: "what:6", Polarity: 1},
		{Axis: "how:2", Polarity: 1},
		{Axis: "whither:4", Polarity: 1},
	}

	result := scorer.Calculate(protestHints(), effects)

	// coverage 2/4 -> 25, conflicts 1/4 -> 23, unhinted 1/4 -> 15
	if result.Index != 63 {
		t.Errorf("Expected index 63, got %d", result.Index)
	}
	if !result.Conflict {
		t.Error("Expected conflict to be flagged")
	}
	if result.Confidence != "medium" {
		t.Errorf("Expected medium confidence, got %s", result.Confidence)
	}

	wantTypes := []model.SignalType{
		model.SignalHintCoverage,
		model.SignalPolarityConflict,
		model.SignalUnhintedEffects,
		model.SignalCoerciveOverride,
	}
	if len(result.Signals) != len(wantTypes) {
		t.Fatalf("Expected %d signals, got %d", len(wantTypes), len(result.Signals))
	}
	for i, want := range wantTypes {
		if result.Signals[i].Type != want {
			t.Errorf("Signal %d: expected %s, got %s", i, want, result.Signals[i].Type)
		}
		if want != model.SignalCoerciveOverride && result.Signals[i].Data["formula"] == nil {
			t.Errorf("Signal %s: expected formula in data", want)
		}
	}

	axes, _ := result.Signals[1].Data["axes"].([]string)
	if len(axes) != 1 || axes[0] != "how:2" {
		t.Errorf("Expected how:2 conflict, got %v", result.Signals[1].Data["axes"])
	}
	if result.Signals[3].Severity != model.SeverityInfo {
		t.Errorf("Expected confirmed coercive override to be info, got %s", result.Signals[3].Severity)
	}
}

func TestScorer_Calculate_FullAgreement(t *testing.T) {
	hints := protestHints()
	var effects []model.Effect
	for _, h := range hints {
		effects = append(effects, model.Effect{Axis: h.Key().String(), Polarity: h.Polarity})
	}

	result := NewScorer().Calculate(hints, effects)

	if result.Index != 100 {
		t.Errorf("Expected index 100, got %d", result.Index)
	}
	if result.Conflict {
		t.Error("Expected no conflict")
	}
	if result.Confidence != "high" {
		t.Errorf("Expected high confidence, got %s", result.Confidence)
	}
}

func TestScorer_Calculate_NoEffects(t *testing.T) {
	result := NewScorer().Calculate(protestHints(), nil)

	if result.Index != 0 || result.Confidence != "low" {
		t.Errorf("Expected 0/low without effects, got %d/%s", result.Index, result.Confidence)
	}
	if len(result.Signals) != 2 {
		t.Fatalf("Expected coverage warning and coercive signal, got %+v", result.Signals)
	}
	if result.Signals[0].Severity != model.SeverityWarning {
		t.Errorf("Expected warning, got %s", result.Signals[0].Severity)
	}
	if result.Signals[1].Type != model.SignalCoerciveOverride || result.Signals[1].Data["phrase"] != "martial law" {
		t.Errorf("Expected coercive signal for martial law, got %+v", result.Signals[1])
	}
}

func TestScorer_Calculate_NoHints(t *testing.T) {
	effects := []model.Effect{{Axis: "what:0", Polarity: 1}}
	result := NewScorer().Calculate(nil, effects)

	// neutral coverage 25 + no conflicts 30 + all unhinted 0
	if result.Index != 55 {
		t.Errorf("Expected index 55, got %d", result.Index)
	}
	if result.Confidence != "medium" {
		t.Errorf("Expected medium confidence, got %s", result.Confidence)
	}
	if result.Signals[2].Severity != model.SeverityWarning {
		t.Errorf("Expected unhinted warning, got %s", result.Signals[2].Severity)
	}
}

func TestScorer_CoerciveNotConfirmed(t *testing.T) {
	hints := protestHints()
	effects := []model.Effect{{Axis: "what:6", Polarity: 2}}

	result := NewScorer().Calculate(hints, effects)

	var found bool
	for _, s := range result.Signals {
		if s.Type == model.SignalCoerciveOverride {
			found = true
			if s.Severity != model.SeverityWarning {
				t.Errorf("Expected warning when the model omits Enforce, got %s", s.Severity)
			}
		}
	}
	if !found {
		t.Error("Expected coercive override signal")
	}
}

func TestScorer_DetermineConfidence(t *testing.T) {
	s := NewScorer()

	tests := []struct {
		index    int
		hints    int
		conflict bool
		want     string
	}{
		{90, 3, false, "high"},
		{90, 1, false, "medium"},
		{90, 3, true, "medium"},
		{45, 3, false, "medium"},
		{10, 3, false, "low"},
	}

	for _, tt := range tests {
		if got := s.determineConfidence(tt.index, tt.hints, tt.conflict); got != tt.want {
			t.Errorf("determineConfidence(%d, %d, %v) = %s, want %s", tt.index, tt.hints, tt.conflict, got, tt.want)
		}
	}
}
