package worker

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/valuecompass/internal/extract"
	"github.com/ppiankov/valuecompass/internal/model"
)

// Evaluator defines the interface for evaluating one action
type Evaluator interface {
	Evaluate(ctx context.Context, action model.Action) (*model.Report, error)
}

// ActionJob represents one action evaluation
type ActionJob struct {
	Index     int
	Action    model.Action
	Evaluator Evaluator
	Limiter   *Limiter
	LimitKey  string
}

// Execute executes the evaluation job
func (j *ActionJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil && j.LimitKey != "" {
		if err := j.Limiter.Wait(ctx, j.LimitKey); err != nil {
			return &ActionResult{Index: j.Index, Action: j.Action, Error: fmt.Errorf("rate limit: %w", err)}
		}
	}

	report, err := j.Evaluator.Evaluate(ctx, j.Action)
	if err != nil {
		return &ActionResult{Index: j.Index, Action: j.Action, Error: err}
	}
	return &ActionResult{Index: j.Index, Action: j.Action, Report: report}
}

// ActionResult represents the result of an action job
type ActionResult struct {
	Index  int
	Action model.Action
	Report *model.Report
	Error  error
}

// GetError returns the error from the action result
func (r *ActionResult) GetError() error {
	return r.Error
}

// BatchProcessor evaluates many actions concurrently
type BatchProcessor struct {
	evaluator   Evaluator
	concurrency int
	limiter     *Limiter
	limitKey    string
	logger      *zap.Logger
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(evaluator Evaluator, concurrency int, logger *zap.Logger) *BatchProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchProcessor{
		evaluator:   evaluator,
		concurrency: concurrency,
		logger:      logger,
	}
}

// WithLimiter throttles every job through limiter under key (usually the
// LLM provider name)
func (b *BatchProcessor) WithLimiter(limiter *Limiter, key string) *BatchProcessor {
	b.limiter = limiter
	b.limitKey = key
	return b
}

// ProcessActions evaluates actions concurrently. Results come back in input
// order; actions never started because ctx was cancelled carry ctx's error.
func (b *BatchProcessor) ProcessActions(ctx context.Context, actions []model.Action) []*ActionResult {
	if len(actions) == 0 {
		return []*ActionResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	go func() {
		defer pool.Close()
		for i, action := range actions {
			job := &ActionJob{
				Index:     i,
				Action:    action,
				Evaluator: b.evaluator,
				Limiter:   b.limiter,
				LimitKey:  b.limitKey,
			}
			if !pool.Submit(job) {
				return
			}
		}
	}()

	ordered := make([]*ActionResult, len(actions))
	for result := range pool.Results() {
		ar := result.(*ActionResult)
		ordered[ar.Index] = ar
		if ar.Error != nil {
			b.logger.Warn("action evaluation failed",
				zap.Int("index", ar.Index),
				zap.String("title", ar.Action.Title),
				zap.Error(ar.Error))
		}
	}

	for i, r := range ordered {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			ordered[i] = &ActionResult{Index: i, Action: actions[i], Error: err}
		}
	}

	return ordered
}

// ProcessFile reads actions from a file and evaluates them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ActionResult, error) {
	actions, err := ReadActionsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read actions: %w", err)
	}

	return b.ProcessActions(ctx, actions), nil
}

// ReadActionsFromFile reads actions from a YAML file (.yaml/.yml) or a
// text file with one "Title | summary" action per line
func ReadActionsFromFile(filePath string) ([]model.Action, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		return ReadActionsYAML(file)
	default:
		return ReadActionLines(file)
	}
}

// actionList is the document form of a YAML action file
type actionList struct {
	Actions []model.Action `yaml:"actions"`
}

// ReadActionsYAML accepts either a top-level list of actions or a mapping
// with an "actions" list
func ReadActionsYAML(r io.Reader) ([]model.Action, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read yaml: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []model.Action{}, nil
	}

	var list []model.Action
	if err := yaml.Unmarshal(data, &list); err != nil {
		var doc actionList
		if docErr := yaml.Unmarshal(data, &doc); docErr != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		list = doc.Actions
	}

	return dedupe(list), nil
}

// ReadActionLines reads one action per line. Empty lines and # comments
// are skipped.
func ReadActionLines(r io.Reader) ([]model.Action, error) {
	var actions []model.Action

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		title, summary := extract.SplitAction(line)
		actions = append(actions, model.Action{Title: title, Summary: summary})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return dedupe(actions), nil
}

// dedupe drops repeated title/summary pairs and blank titles, and assigns IDs
func dedupe(actions []model.Action) []model.Action {
	out := make([]model.Action, 0, len(actions))
	seen := make(map[string]bool)

	for _, a := range actions {
		a.Title = strings.TrimSpace(a.Title)
		a.Summary = strings.TrimSpace(a.Summary)
		if a.Title == "" {
			continue
		}
		key := strings.ToLower(a.Title) + "\x00" + strings.ToLower(a.Summary)
		if seen[key] {
			continue
		}
		seen[key] = true
		a.EnsureID()
		out = append(out, a)
	}

	return out
}
