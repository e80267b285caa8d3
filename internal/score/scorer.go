package score

import (
	"fmt"
	"math"

	"github.com/ppiankov/valuecompass/internal/compass"
	"github.com/ppiankov/valuecompass/internal/model"
)

// Scorer measures how well model effects agree with keyword hints.
// The result is diagnostic only; hints and effects are never changed.
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Calculate compares hints with effects and generates diagnostic signals
func (s *Scorer) Calculate(hints []model.Hint, effects []model.Effect) model.Score {
	var signals []model.Signal

	byAxis := effectsByAxis(effects)

	// Coercive override is reported whether or not a model ran
	coerciveSignal, hasCoercive := s.coerciveOverride(hints, byAxis, len(effects) > 0)
	if hasCoercive {
		signals = append(signals, coerciveSignal)
	}

	if len(effects) == 0 {
		signals = append([]model.Signal{{
			Type:        model.SignalHintCoverage,
			Severity:    model.SeverityWarning,
			Description: "No model effects to compare with keyword hints",
			Data: map[string]interface{}{
				"hints":   len(hints),
				"effects": 0,
			},
		}}, signals...)
		return model.Score{
			Index:      0,
			Confidence: "low",
			Signals:    signals,
		}
	}

	// 1. Hint coverage (0-50 points)
	coverageScore, coverageSignal := s.calculateCoverage(hints, byAxis)

	// 2. Polarity conflicts (0-30 points)
	conflictScore, conflicts, conflictSignal := s.calculateConflicts(hints, byAxis)

	// 3. Unhinted effects (0-20 points)
	unhintedScore, unhintedSignal := s.calculateUnhinted(hints, effects)

	signals = append([]model.Signal{coverageSignal, conflictSignal, unhintedSignal}, signals...)

	total := coverageScore + conflictScore + unhintedScore
	if total > 100 {
		total = 100
	}

	return model.Score{
		Index:      total,
		Confidence: s.determineConfidence(total, len(hints), conflicts > 0),
		Conflict:   conflicts > 0,
		Signals:    signals,
	}
}

func effectsByAxis(effects []model.Effect) map[model.AxisKey]model.Effect {
	out := make(map[model.AxisKey]model.Effect, len(effects))
	for _, e := range effects {
		key, err := e.Key()
		if err != nil {
			continue
		}
		if _, dup := out[key]; !dup {
			out[key] = e
		}
	}
	return out
}

// calculateCoverage scores the share of hints confirmed by a same-sign effect (0-50 points)
func (s *Scorer) calculateCoverage(hints []model.Hint, byAxis map[model.AxisKey]model.Effect) (int, model.Signal) {
	if len(hints) == 0 {
		return 25, model.Signal{
			Type:        model.SignalHintCoverage,
			Severity:    model.SeverityInfo,
			Description: "No keyword hints; coverage is neutral",
			Data: map[string]interface{}{
				"hints":   0,
				"score":   25,
				"formula": "25 when there are no hints",
			},
		}
	}

	confirmed := 0
	for _, h := range hints {
		if e, ok := byAxis[h.Key()]; ok && sign(e.Polarity) == sign(h.Polarity) {
			confirmed++
		}
	}

	ratio := float64(confirmed) / float64(len(hints))
	score := int(math.Round(ratio * 50))

	severity := model.SeverityInfo
	if ratio < 0.34 {
		severity = model.SeverityCritical
	} else if ratio < 0.67 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalHintCoverage,
		Severity:    severity,
		Description: fmt.Sprintf("%d of %d keyword hints confirmed by the model", confirmed, len(hints)),
		Data: map[string]interface{}{
			"hints":     len(hints),
			"confirmed": confirmed,
			"ratio":     ratio,
			"score":     score,
			"formula":   "round(confirmed / hints * 50)",
		},
	}
}

// calculateConflicts penalises hints contradicted by an opposite-sign effect (0-30 points)
func (s *Scorer) calculateConflicts(hints []model.Hint, byAxis map[model.AxisKey]model.Effect) (int, int, model.Signal) {
	var axes []string
	for _, h := range hints {
		if e, ok := byAxis[h.Key()]; ok && sign(e.Polarity) != sign(h.Polarity) {
			axes = append(axes, h.Key().String())
		}
	}

	conflicts := len(axes)
	score := 30
	if len(hints) > 0 {
		score = int(math.Round(30 * (1 - float64(conflicts)/float64(len(hints)))))
	}

	severity := model.SeverityInfo
	description := "No polarity conflicts between hints and effects"
	if conflicts > 0 {
		severity = model.SeverityWarning
		if conflicts*2 >= len(hints) {
			severity = model.SeverityCritical
		}
		description = fmt.Sprintf("%d hint(s) contradicted by the model", conflicts)
	}

	return score, conflicts, model.Signal{
		Type:        model.SignalPolarityConflict,
		Severity:    severity,
		Description: description,
		Data: map[string]interface{}{
			"conflicts": conflicts,
			"axes":      axes,
			"score":     score,
			"formula":   "round(30 * (1 - conflicts / hints))",
		},
	}
}

// calculateUnhinted scores the share of effects backed by a keyword hint (0-20 points)
func (s *Scorer) calculateUnhinted(hints []model.Hint, effects []model.Effect) (int, model.Signal) {
	hinted := make(map[model.AxisKey]bool, len(hints))
	for _, h := range hints {
		hinted[h.Key()] = true
	}

	var axes []string
	for _, e := range effects {
		key, err := e.Key()
		if err != nil || !hinted[key] {
			axes = append(axes, e.Axis)
		}
	}

	unhinted := len(axes)
	score := int(math.Round(20 * (1 - float64(unhinted)/float64(len(effects)))))

	severity := model.SeverityInfo
	if unhinted*2 > len(effects) {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalUnhintedEffects,
		Severity:    severity,
		Description: fmt.Sprintf("%d of %d model effects have no keyword evidence", unhinted, len(effects)),
		Data: map[string]interface{}{
			"effects":  len(effects),
			"unhinted": unhinted,
			"axes":     axes,
			"score":    score,
			"formula":  "round(20 * (1 - unhinted / effects))",
		},
	}
}

// coerciveOverride reports a forced Enforce hint and whether the model agreed
func (s *Scorer) coerciveOverride(hints []model.Hint, byAxis map[model.AxisKey]model.Effect, haveEffects bool) (model.Signal, bool) {
	for _, h := range hints {
		if h.Key() != compass.EnforceKey || h.Confidence < compass.ConfidenceCoercive {
			continue
		}

		phrase := ""
		if len(h.MatchedKeywords) > 0 {
			phrase = h.MatchedKeywords[0]
		}

		severity := model.SeverityInfo
		description := fmt.Sprintf("Coercive phrase %q forced %s", phrase, compass.EnforceKey)
		if haveEffects {
			if e, ok := byAxis[compass.EnforceKey]; !ok || e.Polarity <= 0 {
				severity = model.SeverityWarning
				description += "; the model did not confirm it"
			}
		}

		return model.Signal{
			Type:        model.SignalCoerciveOverride,
			Severity:    severity,
			Description: description,
			Data: map[string]interface{}{
				"phrase": phrase,
				"axis":   compass.EnforceKey.String(),
			},
		}, true
	}
	return model.Signal{}, false
}

// determineConfidence determines the confidence level of the agreement index
func (s *Scorer) determineConfidence(index, hintCount int, conflict bool) string {
	if index >= 70 && hintCount >= 2 && !conflict {
		return "high"
	}
	if index >= 40 {
		return "medium"
	}
	return "low"
}

func sign(p int) int {
	switch {
	case p > 0:
		return 1
	case p < 0:
		return -1
	}
	return 0
}
