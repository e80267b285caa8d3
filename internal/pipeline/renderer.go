package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/valuecompass/internal/compass"
	"github.com/ppiankov/valuecompass/internal/model"
)

const footer = "_Keyword hints are starting points for the evaluator, not verdicts. Generated by valuecompass._"

// Renderer writes reports as JSON, Markdown and a terminal summary
type Renderer struct {
	includeFooter bool
	taxonomy      *compass.Taxonomy
	out           io.Writer
}

// NewRenderer creates a renderer that prints summaries to stdout
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{
		includeFooter: includeFooter,
		taxonomy:      compass.Default(),
		out:           os.Stdout,
	}
}

// SetOutput redirects summaries and progress lines
func (r *Renderer) SetOutput(w io.Writer) {
	if w != nil {
		r.out = w
	}
}

func (r *Renderer) printf(format string, a ...interface{}) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes the report as Markdown
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, []byte(r.Markdown(report)))
}

// Markdown renders the report as a Markdown document
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Compass Evaluation: %s\n\n", report.Action.Title)
	fmt.Fprintf(&b, "- **Report ID:** %s\n", report.ID)
	if report.Action.ID != "" {
		fmt.Fprintf(&b, "- **Action ID:** %s\n", report.Action.ID)
	}
	if !report.EvaluatedAt.IsZero() {
		fmt.Fprintf(&b, "- **Evaluated:** %s\n", report.EvaluatedAt.Format("2006-01-02 15:04:05 MST"))
	}
	b.WriteString("\n")

	if report.Action.Summary != "" {
		b.WriteString("## Action\n\n")
		b.WriteString(report.Action.Summary)
		b.WriteString("\n\n")
	}

	b.WriteString("## Keyword Hints\n\n")
	if len(report.Hints) == 0 {
		b.WriteString("No keyword hints detected.\n\n")
	} else {
		b.WriteString("| Axis | Name | Polarity | Confidence | Keywords |\n")
		b.WriteString("|------|------|----------|------------|----------|\n")
		for _, h := range report.Hints {
			fmt.Fprintf(&b, "| %s | %s | %+d | %.2f | %s |\n",
				h.Key(), r.taxonomy.Name(h.Key()), h.Polarity, h.Confidence, strings.Join(h.MatchedKeywords, ", "))
		}
		b.WriteString("\n")
		for _, h := range report.Hints {
			fmt.Fprintf(&b, "- **%s:** %s\n", h.Key(), h.Reasoning)
		}
		b.WriteString("\n")
	}

	b.WriteString("### Prompt Block\n\n```\n")
	b.WriteString(report.HintsPrompt)
	b.WriteString("\n```\n\n")

	if report.LLM != nil {
		r.writeLLM(&b, report.LLM)
	}

	b.WriteString("## Agreement\n\n")
	fmt.Fprintf(&b, "- **Index:** %d/100\n", report.Score.Index)
	fmt.Fprintf(&b, "- **Confidence:** %s\n", report.Score.Confidence)
	fmt.Fprintf(&b, "- **Conflict:** %v\n\n", report.Score.Conflict)
	for _, s := range report.Score.Signals {
		fmt.Fprintf(&b, "- [%s] `%s` %s\n", s.Severity, s.Type, s.Description)
	}
	if len(report.Score.Signals) > 0 {
		b.WriteString("\n")
	}

	if len(report.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range report.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString(footer)
		b.WriteString("\n")
	}

	return b.String()
}

func (r *Renderer) writeLLM(b *strings.Builder, eval *model.LLMEvaluation) {
	b.WriteString("## LLM Evaluation\n\n")
	fmt.Fprintf(b, "- **Provider:** %s\n", eval.Provider)
	if eval.Model != "" {
		fmt.Fprintf(b, "- **Model:** %s\n", eval.Model)
	}
	fmt.Fprintf(b, "- **Strict axes:** %v\n", eval.StrictAxes)
	if eval.Cached {
		b.WriteString("- **Cached:** true\n")
	}
	b.WriteString("\n")

	if len(eval.Effects) > 0 {
		b.WriteString("| Axis | Name | Polarity | Reason |\n")
		b.WriteString("|------|------|----------|--------|\n")
		for _, e := range eval.Effects {
			name := ""
			if key, err := e.Key(); err == nil {
				name = r.taxonomy.Name(key)
			}
			fmt.Fprintf(b, "| %s | %s | %+d | %s |\n", e.Axis, name, e.Polarity, e.Reason)
		}
		b.WriteString("\n")
	}

	for _, w := range eval.Warnings {
		fmt.Fprintf(b, "- %s\n", w)
	}
	if len(eval.Warnings) > 0 {
		b.WriteString("\n")
	}
}

// RenderSummary prints a one-screen summary
func (r *Renderer) RenderSummary(report *model.Report) {
	r.printf("\n")
	r.printf("═══════════════════════════════════════════════════════════\n")
	r.printf("  %s\n", report.Action.Title)
	r.printf("═══════════════════════════════════════════════════════════\n")
	r.printf("\n")

	if len(report.Hints) == 0 {
		r.printf("  No keyword hints detected\n")
	}
	for _, h := range report.Hints {
		r.printf("  %-10s %-28s %+d  %.2f  %s\n",
			h.Key(), r.taxonomy.Name(h.Key()), h.Polarity, h.Confidence, strings.Join(h.MatchedKeywords, ", "))
	}
	r.printf("\n")

	if report.LLM != nil {
		source := "live"
		if report.LLM.Cached {
			source = "cached"
		}
		r.printf("  LLM:         %s/%s (%s, %d effects)\n", report.LLM.Provider, report.LLM.Model, source, len(report.LLM.Effects))
		r.printf("  Agreement:   %d/100 (%s)\n", report.Score.Index, report.Score.Confidence)
		if report.Score.Conflict {
			r.printf("  ⚠ Hints and effects disagree on polarity\n")
		}
	}

	for _, w := range report.Warnings {
		r.printf("  ⚠ %s\n", w)
	}
	r.printf("\n")
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
