package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ppiankov/valuecompass/internal/compass"
	"github.com/ppiankov/valuecompass/internal/model"
	"github.com/ppiankov/valuecompass/internal/validate"
	"go.uber.org/zap"
)

// ErrAxisLeak is returned in strict-axes mode when the model names an axis
// or polarity the compass does not have
var ErrAxisLeak = errors.New("AXIS LEAK")

// Evaluator asks a language model for compass effects, seeded with keyword hints
type Evaluator struct {
	provider Provider
	config   Config
	taxonomy *compass.Taxonomy
	logger   *zap.Logger

	mu        sync.Mutex
	available bool // set once a check succeeds; failures are retried
}

// NewEvaluator creates an evaluator; an empty provider yields a disabled evaluator
func NewEvaluator(config Config, logger *zap.Logger) (*Evaluator, error) {
	provider, err := NewProvider(config, logger)
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}
	return NewEvaluatorWithProvider(provider, config, logger), nil
}

// NewEvaluatorWithProvider wraps an existing provider
func NewEvaluatorWithProvider(provider Provider, config Config, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{
		provider: provider,
		config:   config,
		taxonomy: compass.Default(),
		logger:   logger,
	}
}

// IsEnabled reports whether a provider is configured
func (e *Evaluator) IsEnabled() bool {
	return e.provider != nil
}

// ProviderName returns the configured provider name, or "" when disabled
func (e *Evaluator) ProviderName() string {
	if e.provider == nil {
		return ""
	}
	return e.provider.Name()
}

// Close releases the provider's client when it holds one
func (e *Evaluator) Close() error {
	if c, ok := e.provider.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Check verifies the provider answers
func (e *Evaluator) Check(ctx context.Context) error {
	if e.provider == nil {
		return fmt.Errorf("no LLM provider configured")
	}
	if !e.isAvailable(ctx) {
		return fmt.Errorf("LLM provider %s is not available", e.provider.Name())
	}
	return nil
}

func (e *Evaluator) isAvailable(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.available {
		return true
	}
	if ctx.Err() != nil {
		return false
	}
	e.available = e.provider.IsAvailable(ctx) && ctx.Err() == nil
	return e.available
}

// Evaluate requests effects for one action. Provider failures degrade to
// warnings on the returned evaluation; only ErrAxisLeak is returned as an
// error. A disabled evaluator returns nil, nil.
func (e *Evaluator) Evaluate(ctx context.Context, action model.Action, hints []model.Hint) (*model.LLMEvaluation, error) {
	if e.provider == nil {
		return nil, nil
	}

	eval := &model.LLMEvaluation{
		Enabled:    true,
		Provider:   e.provider.Name(),
		Model:      e.config.Model,
		StrictAxes: e.config.StrictAxes,
	}

	if !e.isAvailable(ctx) {
		eval.Enabled = false
		eval.Warnings = append(eval.Warnings, fmt.Sprintf("LLM provider %s is not available", eval.Provider))
		return eval, nil
	}

	tax := e.taxonomy
	if tax == nil {
		tax = compass.Default()
	}

	resp, err := e.provider.Complete(ctx, CompletionRequest{
		System: SystemPrompt,
		Prompt: BuildPrompt(action, hints, tax),
	})
	if err != nil {
		e.log().Warn("LLM evaluation failed", zap.String("provider", eval.Provider), zap.Error(err))
		eval.Warnings = append(eval.Warnings, fmt.Sprintf("LLM evaluation failed: %v", err))
		return eval, nil
	}

	if resp.Model != "" {
		eval.Model = resp.Model
	}
	eval.Raw = resp.Text
	eval.TokensUsed = resp.TokensUsed

	effects, err := ParseEffects(resp.Text)
	if err != nil {
		eval.Warnings = append(eval.Warnings, fmt.Sprintf("LLM reply could not be parsed: %v", err))
		return eval, nil
	}

	valid, problems := validate.Effects(effects, tax)
	if len(problems) > 0 {
		if e.config.StrictAxes {
			return nil, fmt.Errorf("%w: %s", ErrAxisLeak, strings.Join(problems, "; "))
		}
		for _, p := range problems {
			eval.Warnings = append(eval.Warnings, "Dropped "+p)
		}
	}

	eval.Effects = valid
	eval.Warnings = append(eval.Warnings,
		fmt.Sprintf("Tokens used: %d", resp.TokensUsed),
		fmt.Sprintf("Accepted %d of %d effects", len(valid), len(effects)),
	)

	e.log().Debug("LLM evaluation",
		zap.String("provider", eval.Provider),
		zap.String("model", eval.Model),
		zap.Int("effects", len(valid)),
		zap.Int("tokens", resp.TokensUsed))

	return eval, nil
}

func (e *Evaluator) log() *zap.Logger {
	if e.logger == nil {
		return zap.NewNop()
	}
	return e.logger
}

type effectsReply struct {
	Effects []model.Effect `json:"effects"`
}

// ParseEffects decodes the JSON reply, tolerating markdown code fences and
// prose around the object
func ParseEffects(reply string) ([]model.Effect, error) {
	clean := strings.TrimSpace(reply)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	if start, end := strings.IndexByte(clean, '{'), strings.LastIndexByte(clean, '}'); start >= 0 && end > start {
		clean = clean[start : end+1]
	}

	var out effectsReply
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return nil, fmt.Errorf("decode effects: %w", err)
	}
	return out.Effects, nil
}
