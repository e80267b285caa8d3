package model

import "time"

// Report is the complete evaluation of a single action
type Report struct {
	ID          string    `json:"id"`
	Action      Action    `json:"action"`
	EvaluatedAt time.Time `json:"evaluated_at"`

	Hints       []Hint `json:"hints"`        // Keyword hints, highest confidence first
	HintsPrompt string `json:"hints_prompt"` // Prompt block built from the hints

	LLM *LLMEvaluation `json:"llm,omitempty"` // Optional model evaluation (never alters hints)

	Score    Score    `json:"score"`              // Hint/effect agreement diagnostics
	Warnings []string `json:"warnings,omitempty"` // Non-fatal problems met while evaluating
}

// LLMEvaluation contains the language model's proposed compass effects
type LLMEvaluation struct {
	Enabled    bool     `json:"enabled"`
	Provider   string   `json:"provider,omitempty"`
	Model      string   `json:"model,omitempty"`
	StrictAxes bool     `json:"strict_axes"`        // Whether unknown axes fail the evaluation
	Effects    []Effect `json:"effects,omitempty"`  // Validated effects
	Raw        string   `json:"raw,omitempty"`      // Raw reply text
	TokensUsed int      `json:"tokens_used,omitempty"`
	Cached     bool     `json:"cached,omitempty"`   // Served from cache
	Warnings   []string `json:"warnings,omitempty"` // e.g. dropped effects in non-strict mode
}

// Score is the transparent agreement breakdown between hints and effects
type Score struct {
	Index      int      `json:"index"`      // Agreement index (0-100)
	Confidence string   `json:"confidence"` // "low", "medium", "high"
	Conflict   bool     `json:"conflict"`   // Any hint contradicted by an effect
	Signals    []Signal `json:"signals"`
}

// Signal is a diagnostic signal with transparent scoring data
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies a diagnostic signal
type SignalType string

const (
	SignalHintCoverage     SignalType = "hint_coverage"     // Hints confirmed by effects
	SignalPolarityConflict SignalType = "polarity_conflict" // Hint and effect disagree on sign
	SignalUnhintedEffects  SignalType = "unhinted_effects"  // Effects with no keyword evidence
	SignalCoerciveOverride SignalType = "coercive_override" // Enforce axis forced by a coercive phrase
)

// SignalSeverity indicates the importance of a signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)
