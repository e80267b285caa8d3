package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/valuecompass/internal/cache"
	"github.com/ppiankov/valuecompass/internal/compass"
	"github.com/ppiankov/valuecompass/internal/extract"
	"github.com/ppiankov/valuecompass/internal/llm"
	"github.com/ppiankov/valuecompass/internal/model"
	"github.com/ppiankov/valuecompass/internal/score"
	"github.com/ppiankov/valuecompass/internal/store"
	"github.com/ppiankov/valuecompass/internal/validate"
)

var (
	// ErrEvaluatorDisabled is returned by operations that need a language model
	// when no provider is configured
	ErrEvaluatorDisabled = errors.New("LLM evaluator is disabled")

	// ErrJournalDisabled is returned by history lookups when no journal is open
	ErrJournalDisabled = errors.New("evaluation journal is disabled")
)

// Limiter throttles model calls per provider name
type Limiter interface {
	Wait(ctx context.Context, key string) error
}

// Pipeline orchestrates the complete evaluation of an action
type Pipeline struct {
	detector  *compass.Detector
	evaluator *llm.Evaluator // Optional (nil if disabled)
	scorer    *score.Scorer
	cache     cache.Cache  // Optional
	journal   *store.Store // Optional
	limiter   Limiter      // Optional
	renderer  *Renderer
	config    *model.Config
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithEvaluator sets the LLM evaluator; nil disables model evaluation
func WithEvaluator(e *llm.Evaluator) Option {
	return func(p *Pipeline) { p.evaluator = e }
}

// WithCache sets the evaluation cache; nil disables caching
func WithCache(c cache.Cache) Option {
	return func(p *Pipeline) { p.cache = c }
}

// WithStore sets the evaluation journal
func WithStore(s *store.Store) Option {
	return func(p *Pipeline) { p.journal = s }
}

// WithLimiter throttles model calls that miss the cache
func WithLimiter(l Limiter) Option {
	return func(p *Pipeline) { p.limiter = l }
}

// WithClock overrides the report timestamp source
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a pipeline with only the parts passed in opts. The hint
// engine is always present.
func New(cfg *model.Config, logger *zap.Logger, opts ...Option) *Pipeline {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	detectorOpts := []compass.Option{compass.WithLimit(cfg.Detection.MaxHints)}
	if cfg.Detection.Trace {
		detectorOpts = append(detectorOpts, compass.WithLogger(logger.Named("compass")))
	}

	p := &Pipeline{
		detector: compass.NewDetector(detectorOpts...),
		scorer:   score.NewScorer(),
		renderer: NewRenderer(cfg.Output.IncludeFooter),
		config:   cfg,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewPipeline builds every configured part: LLM evaluator, cache and journal.
// A provider that fails to initialise is logged and skipped, like any other
// optional stage. extra options are applied last.
func NewPipeline(cfg *model.Config, logger *zap.Logger, extra ...Option) (*Pipeline, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts []Option

	// 1. LLM evaluator
	if cfg.LLM.Provider != "" {
		evaluator, err := llm.NewEvaluator(llm.ConfigFromModel(cfg), logger.Named("llm"))
		if err != nil {
			logger.Warn("failed to initialize LLM provider", zap.String("provider", cfg.LLM.Provider), zap.Error(err))
		} else {
			opts = append(opts, WithEvaluator(evaluator))
		}
	}

	// 2. Cache
	if c := cache.FromConfig(cfg.Cache); c != nil {
		opts = append(opts, WithCache(c))
	}

	// 3. Journal
	if cfg.Store.Enabled {
		s, err := store.NewStore(cache.ExpandHome(cfg.Store.Path))
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		opts = append(opts, WithStore(s))
	}

	return New(cfg, logger, append(opts, extra...)...), nil
}

// Close releases the model client and the journal
func (p *Pipeline) Close() error {
	var errs []error
	if p.evaluator != nil {
		errs = append(errs, p.evaluator.Close())
	}
	if p.journal != nil {
		errs = append(errs, p.journal.Close())
	}
	return errors.Join(errs...)
}

// Detector returns the hint engine
func (p *Pipeline) Detector() *compass.Detector {
	return p.detector
}

// Renderer returns the report renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// LLMEnabled reports whether a language model is configured
func (p *Pipeline) LLMEnabled() bool {
	return p.evaluator != nil && p.evaluator.IsEnabled()
}

// ProviderName returns the LLM provider name or "" when disabled
func (p *Pipeline) ProviderName() string {
	if !p.LLMEnabled() {
		return ""
	}
	return p.evaluator.ProviderName()
}

// CheckLLM verifies a provider is configured and answering
func (p *Pipeline) CheckLLM(ctx context.Context) error {
	if !p.LLMEnabled() {
		return ErrEvaluatorDisabled
	}
	return p.evaluator.Check(ctx)
}

// Hints runs only the keyword engine over an action
func (p *Pipeline) Hints(action model.Action) ([]model.Hint, string, error) {
	if err := validate.Action(action); err != nil {
		return nil, "", fmt.Errorf("validate: %w", err)
	}
	title, summary := normalize(action)
	hints := p.detector.Detect(title, summary)
	return hints, compass.FormatKeywordHintsForPrompt(hints), nil
}

// Evaluate runs the complete evaluation of one action. Only invalid input
// and context cancellation are errors; LLM and journal problems become
// warnings on the report.
func (p *Pipeline) Evaluate(ctx context.Context, action model.Action) (*model.Report, error) {
	// 1. Validate input
	if err := validate.Action(action); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	action.EnsureID()

	// 2. Normalise rich text
	action.Title, action.Summary = normalize(action)

	// 3. Keyword hints
	hints := p.detector.Detect(action.Title, action.Summary)

	report := &model.Report{
		ID:          uuid.NewString(),
		Action:      action,
		EvaluatedAt: p.now().UTC(),
		Hints:       hints,
		HintsPrompt: compass.FormatKeywordHintsForPrompt(hints),
	}

	// 4. LLM evaluation (AFTER hints, never alters them)
	if p.LLMEnabled() {
		eval, err := p.evaluate(ctx, action, hints)
		switch {
		case errors.Is(err, llm.ErrAxisLeak):
			p.logger.Warn("LLM reply rejected", zap.String("action", action.Title), zap.Error(err))
			report.Warnings = append(report.Warnings, err.Error())
		case err != nil:
			return nil, err
		default:
			report.LLM = eval
		}
	}

	// 5. Agreement score
	var effects []model.Effect
	if report.LLM != nil {
		effects = report.LLM.Effects
	}
	report.Score = p.scorer.Calculate(hints, effects)

	// 6. Journal
	if p.journal != nil {
		if err := p.journal.SaveReport(ctx, report); err != nil {
			p.logger.Warn("failed to journal report", zap.String("id", report.ID), zap.Error(err))
			report.Warnings = append(report.Warnings, fmt.Sprintf("journal: %v", err))
		}
	}

	p.logger.Debug("action evaluated",
		zap.String("id", report.ID),
		zap.Int("hints", len(hints)),
		zap.Bool("llm", report.LLM != nil),
		zap.Int("index", report.Score.Index))

	return report, nil
}

// evaluate consults the cache before asking the model
func (p *Pipeline) evaluate(ctx context.Context, action model.Action, hints []model.Hint) (*model.LLMEvaluation, error) {
	key := cache.CacheKey(p.evaluator.ProviderName(), p.config.LLM.Model, action.Title, action.Summary)

	if p.cache != nil {
		var cached model.LLMEvaluation
		if cache.GetJSON(p.cache, key, &cached) {
			cached.Cached = true
			return &cached, nil
		}
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx, p.evaluator.ProviderName()); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	eval, err := p.evaluator.Evaluate(ctx, action, hints)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	// Only successful replies are worth replaying
	if p.cache != nil && eval != nil && eval.Enabled && len(eval.Effects) > 0 {
		if err := cache.SetJSON(p.cache, key, eval, p.config.Cache.DiskTTL); err != nil {
			p.logger.Warn("failed to cache evaluation", zap.Error(err))
		}
	}

	return eval, nil
}

// History lists recent journal entries
func (p *Pipeline) History(ctx context.Context, limit int) ([]store.Entry, error) {
	if p.journal == nil {
		return nil, ErrJournalDisabled
	}
	return p.journal.Recent(ctx, limit)
}

// Report loads a journaled report by ID
func (p *Pipeline) Report(ctx context.Context, id string) (*model.Report, error) {
	if p.journal == nil {
		return nil, ErrJournalDisabled
	}
	return p.journal.Get(ctx, id)
}

// RenderReport renders the report to the specified outputs
func (p *Pipeline) RenderReport(report *model.Report, jsonPath string, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			p.renderer.printf("✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			p.renderer.printf("✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	p.renderer.RenderSummary(report)

	return nil
}

func normalize(action model.Action) (title, summary string) {
	return strings.TrimSpace(extract.ActionText(action.Title)), strings.TrimSpace(extract.ActionText(action.Summary))
}
