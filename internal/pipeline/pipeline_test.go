package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/valuecompass/internal/cache"
	"github.com/ppiankov/valuecompass/internal/compass"
	"github.com/ppiankov/valuecompass/internal/llm"
	"github.com/ppiankov/valuecompass/internal/model"
	"github.com/ppiankov/valuecompass/internal/store"
	"github.com/ppiankov/valuecompass/internal/validate"
)

// stubProvider implements llm.Provider
type stubProvider struct {
	mu     sync.Mutex
	reply  string
	calls  int
	closed bool
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return &llm.CompletionResponse{Text: s.reply, Model: "stub-1", TokensUsed: 42}, nil
}

func (s *stubProvider) IsAvailable(ctx context.Context) bool { return true }

func (s *stubProvider) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *stubProvider) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

const agreeingReply = `{"effects":[
  {"axis":"how:6","polarity":2,"reason":"martial law"},
  {"axis":"how:2","polarity":-2,"reason":"bans assembly"}
]}`

var protestAction = model.Action{Title: "Ban public protests", Summary: "Impose martial law to restore order"}

var fixedTime = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func newStubPipeline(t *testing.T, reply string, strict bool, opts ...Option) (*Pipeline, *stubProvider) {
	t.Helper()
	provider := &stubProvider{reply: reply}
	evaluator := llm.NewEvaluatorWithProvider(provider, llm.Config{Provider: "stub", StrictAxes: strict}, nil)
	opts = append([]Option{WithEvaluator(evaluator), WithClock(func() time.Time { return fixedTime })}, opts...)
	return New(model.DefaultConfig(), nil, opts...), provider
}

func TestPipeline_Evaluate_HintsOnly(t *testing.T) {
	p := New(nil, nil)

	report, err := p.Evaluate(context.Background(), protestAction)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if report.ID == "" || report.Action.ID == "" {
		t.Error("expected report and action IDs to be assigned")
	}
	if len(report.Hints) != 4 {
		t.Fatalf("expected 4 hints, got %d: %+v", len(report.Hints), report.Hints)
	}
	if got := report.Hints[0].Key().String(); got != "how:6" {
		t.Errorf("expected coercive hint first, got %s", got)
	}
	if !strings.HasPrefix(report.HintsPrompt, compass.HintsHeader) {
		t.Errorf("unexpected prompt block: %q", report.HintsPrompt)
	}
	if report.LLM != nil {
		t.Error("expected no LLM evaluation without a provider")
	}
	if report.Score.Index != 0 || report.Score.Confidence != "low" {
		t.Errorf("expected index 0/low without effects, got %d/%s", report.Score.Index, report.Score.Confidence)
	}
	if p.LLMEnabled() || p.ProviderName() != "" {
		t.Error("expected LLM to be disabled")
	}
}

func TestPipeline_Evaluate_Invalid(t *testing.T) {
	p := New(nil, nil)

	_, err := p.Evaluate(context.Background(), model.Action{Title: "   "})
	if !errors.Is(err, validate.ErrEmptyTitle) {
		t.Errorf("expected ErrEmptyTitle, got %v", err)
	}
}

func TestPipeline_Evaluate_HTML(t *testing.T) {
	p := New(nil, nil)

	report, err := p.Evaluate(context.Background(), model.Action{
		Title:   "<p>Ban <b>public</b> protests</p>",
		Summary: "<div>Impose martial law<script>alert(1)</script></div>",
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if report.Action.Title != "Ban public protests" {
		t.Errorf("expected markup stripped from title, got %q", report.Action.Title)
	}
	if report.Action.Summary != "Impose martial law" {
		t.Errorf("expected markup stripped from summary, got %q", report.Action.Summary)
	}
	if len(report.Hints) == 0 || report.Hints[0].Key().String() != "how:6" {
		t.Errorf("expected coercive hint from stripped text, got %+v", report.Hints)
	}
}

func TestPipeline_Evaluate_WithLLM(t *testing.T) {
	p, provider := newStubPipeline(t, agreeingReply, true)

	report, err := p.Evaluate(context.Background(), protestAction)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if provider.Calls() != 1 {
		t.Errorf("expected 1 provider call, got %d", provider.Calls())
	}
	if report.LLM == nil || !report.LLM.Enabled {
		t.Fatalf("expected LLM evaluation, got %+v", report.LLM)
	}
	if len(report.LLM.Effects) != 2 {
		t.Errorf("expected 2 effects, got %d", len(report.LLM.Effects))
	}
	if report.LLM.Model != "stub-1" {
		t.Errorf("expected model from reply, got %q", report.LLM.Model)
	}
	if report.Score.Conflict {
		t.Error("expected no conflict between agreeing effects and hints")
	}
	if !report.EvaluatedAt.Equal(fixedTime) {
		t.Errorf("expected fixed clock, got %v", report.EvaluatedAt)
	}
	if p.ProviderName() != "stub" {
		t.Errorf("expected provider name stub, got %q", p.ProviderName())
	}
}

func TestPipeline_Evaluate_Cache(t *testing.T) {
	mem := cache.NewMemoryCache(time.Minute, time.Minute)
	p, provider := newStubPipeline(t, agreeingReply, true, WithCache(mem))

	first, err := p.Evaluate(context.Background(), protestAction)
	if err != nil {
		t.Fatalf("first Evaluate failed: %v", err)
	}
	second, err := p.Evaluate(context.Background(), protestAction)
	if err != nil {
		t.Fatalf("second Evaluate failed: %v", err)
	}

	if provider.Calls() != 1 {
		t.Errorf("expected cached second evaluation, provider called %d times", provider.Calls())
	}
	if first.LLM.Cached {
		t.Error("first evaluation should not be cached")
	}
	if !second.LLM.Cached {
		t.Error("second evaluation should be served from cache")
	}
	if len(second.LLM.Effects) != len(first.LLM.Effects) {
		t.Errorf("cached effects differ: %d vs %d", len(second.LLM.Effects), len(first.LLM.Effects))
	}
	if second.Score.Index != first.Score.Index {
		t.Errorf("cached score differs: %d vs %d", second.Score.Index, first.Score.Index)
	}
}

func TestPipeline_Evaluate_AxisLeak(t *testing.T) {
	p, _ := newStubPipeline(t, `{"effects":[{"axis":"what:12","polarity":2}]}`, true)

	report, err := p.Evaluate(context.Background(), protestAction)
	if err != nil {
		t.Fatalf("axis leak should be a warning, got error %v", err)
	}
	if report.LLM != nil {
		t.Error("expected rejected evaluation to be dropped")
	}
	if len(report.Warnings) == 0 || !strings.Contains(report.Warnings[0], llm.ErrAxisLeak.Error()) {
		t.Errorf("expected AXIS LEAK warning, got %v", report.Warnings)
	}
	if len(report.Hints) != 4 {
		t.Errorf("hints must survive a rejected reply, got %d", len(report.Hints))
	}
}

func TestPipeline_Evaluate_Lenient(t *testing.T) {
	p, _ := newStubPipeline(t, `{"effects":[{"axis":"what:12","polarity":2},{"axis":"how:6","polarity":2}]}`, false)

	report, err := p.Evaluate(context.Background(), protestAction)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if report.LLM == nil || len(report.LLM.Effects) != 1 {
		t.Fatalf("expected one surviving effect, got %+v", report.LLM)
	}
}

func TestPipeline_CheckLLM(t *testing.T) {
	if err := New(nil, nil).CheckLLM(context.Background()); !errors.Is(err, ErrEvaluatorDisabled) {
		t.Errorf("expected ErrEvaluatorDisabled, got %v", err)
	}

	p, _ := newStubPipeline(t, agreeingReply, true)
	if err := p.CheckLLM(context.Background()); err != nil {
		t.Errorf("expected available provider, got %v", err)
	}
}

func TestPipeline_Journal(t *testing.T) {
	s, err := store.NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	p := New(nil, nil, WithStore(s))
	defer func() { _ = p.Close() }()

	ctx := context.Background()
	report, err := p.Evaluate(ctx, protestAction)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	entries, err := p.History(ctx, 10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != report.ID {
		t.Fatalf("expected journaled report %s, got %+v", report.ID, entries)
	}
	if entries[0].HintCount != 4 {
		t.Errorf("expected hint count 4, got %d", entries[0].HintCount)
	}

	loaded, err := p.Report(ctx, report.ID)
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if loaded.Action.Title != protestAction.Title {
		t.Errorf("unexpected journaled title %q", loaded.Action.Title)
	}
}

func TestPipeline_JournalDisabled(t *testing.T) {
	p := New(nil, nil)

	if _, err := p.History(context.Background(), 5); !errors.Is(err, ErrJournalDisabled) {
		t.Errorf("expected ErrJournalDisabled, got %v", err)
	}
	if _, err := p.Report(context.Background(), "x"); !errors.Is(err, ErrJournalDisabled) {
		t.Errorf("expected ErrJournalDisabled, got %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close without journal failed: %v", err)
	}
}

func TestPipeline_Hints(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Detection.MaxHints = 2
	p := New(cfg, nil)

	hints, prompt, err := p.Hints(protestAction)
	if err != nil {
		t.Fatalf("Hints failed: %v", err)
	}
	if len(hints) != 2 {
		t.Errorf("expected detection limit of 2, got %d", len(hints))
	}
	if strings.Count(prompt, "\n") != 2 {
		t.Errorf("expected header plus 2 lines, got %q", prompt)
	}

	if _, _, err := p.Hints(model.Action{}); err == nil {
		t.Error("expected validation error for empty action")
	}
}

func TestNewPipeline_Defaults(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.Store.Enabled = true
	cfg.Store.Path = filepath.Join(t.TempDir(), "journal.db")

	p, err := NewPipeline(cfg, nil)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	defer func() { _ = p.Close() }()

	if p.LLMEnabled() {
		t.Error("expected LLM disabled by default")
	}
	if _, err := p.History(context.Background(), 1); err != nil {
		t.Errorf("expected journal to be open, got %v", err)
	}
}

func TestNewPipeline_BadProvider(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.LLM.Provider = "bogus"

	p, err := NewPipeline(cfg, nil)
	if err != nil {
		t.Fatalf("unknown provider should degrade, got %v", err)
	}
	if p.LLMEnabled() {
		t.Error("expected LLM to be skipped for an unknown provider")
	}
}

func TestPipeline_RenderReport(t *testing.T) {
	p, _ := newStubPipeline(t, agreeingReply, true)
	var out bytes.Buffer
	p.Renderer().SetOutput(&out)

	report, err := p.Evaluate(context.Background(), protestAction)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "out", "report.json")
	mdPath := filepath.Join(dir, "out", "report.md")

	if err := p.RenderReport(report, jsonPath, mdPath, true); err != nil {
		t.Fatalf("RenderReport failed: %v", err)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var decoded model.Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON report: %v", err)
	}
	if decoded.ID != report.ID || len(decoded.Hints) != len(report.Hints) {
		t.Errorf("decoded report differs: %+v", decoded)
	}

	md, err := os.ReadFile(mdPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"# Compass Evaluation: Ban public protests",
		"| how:6 | Enforce | +2 | 0.95 | martial law |",
		"## LLM Evaluation",
		"## Agreement",
		footer,
	} {
		if !strings.Contains(string(md), want) {
			t.Errorf("markdown missing %q", want)
		}
	}

	summary := out.String()
	for _, want := range []string{"✓ Wrote JSON", "✓ Wrote Markdown", "Ban public protests", "stub/stub-1"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestRenderer_NoFooter(t *testing.T) {
	r := NewRenderer(false)
	md := r.Markdown(&model.Report{Action: model.Action{Title: "Quiet"}, HintsPrompt: compass.NoHintsMessage})

	if strings.Contains(md, footer) {
		t.Error("footer should be omitted")
	}
	if !strings.Contains(md, "No keyword hints detected.") {
		t.Errorf("expected empty-hints note, got:\n%s", md)
	}
}

// recordingLimiter counts waits per key
type recordingLimiter struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (l *recordingLimiter) Wait(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, key)
	return l.err
}

func TestPipeline_Evaluate_Limiter(t *testing.T) {
	limiter := &recordingLimiter{}
	c := cache.NewMemoryCache(time.Hour, time.Hour)
	p, provider := newStubPipeline(t, agreeingReply, true, WithLimiter(limiter), WithCache(c))

	for i := 0; i < 2; i++ {
		if _, err := p.Evaluate(context.Background(), protestAction); err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
	}

	// Cache hits do not spend the budget
	if len(limiter.keys) != 1 || limiter.keys[0] != "stub" {
		t.Errorf("expected one wait keyed by provider, got %v", limiter.keys)
	}
	if provider.Calls() != 1 {
		t.Errorf("expected one model call, got %d", provider.Calls())
	}
}

func TestPipeline_Evaluate_LimiterError(t *testing.T) {
	limiter := &recordingLimiter{err: context.DeadlineExceeded}
	p, provider := newStubPipeline(t, agreeingReply, true, WithLimiter(limiter))

	_, err := p.Evaluate(context.Background(), protestAction)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if provider.Calls() != 0 {
		t.Errorf("expected no model call, got %d", provider.Calls())
	}
}

func TestPipeline_Close_ReleasesProvider(t *testing.T) {
	p, provider := newStubPipeline(t, agreeingReply, true)

	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	provider.mu.Lock()
	defer provider.mu.Unlock()
	if !provider.closed {
		t.Error("expected provider to be closed")
	}
}
