// Package compass implements the keyword hint engine: it screens action
// text against the compass taxonomy and returns ranked, signed hints for a
// downstream language-model prompt.
//
// Detection is synchronous and keeps no state between calls. A Detector
// only reads its immutable taxonomy, so one value can be shared by any
// number of goroutines.
package compass

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/valuecompass/internal/model"
	"go.uber.org/zap"
)

// MaxHints bounds the number of hints returned by a single detection
const MaxHints = 6

// Detector runs the hint aggregation over a taxonomy
type Detector struct {
	taxonomy *Taxonomy
	limit    int
	logger   *zap.Logger
}

// Option configures a Detector
type Option func(*Detector)

// WithTaxonomy replaces the built-in taxonomy
func WithTaxonomy(t *Taxonomy) Option {
	return func(d *Detector) {
		if t != nil {
			d.taxonomy = t
		}
	}
}

// WithLimit lowers the number of returned hints; zero or negative means MaxHints
func WithLimit(n int) Option {
	return func(d *Detector) {
		switch {
		case n < 1, n > MaxHints:
			d.limit = MaxHints
		default:
			d.limit = n
		}
	}
}

// WithLogger traces matches at debug level
func WithLogger(l *zap.Logger) Option {
	return func(d *Detector) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDetector creates a detector over the default taxonomy
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		taxonomy: Default(),
		limit:    MaxHints,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Taxonomy returns the table the detector scans
func (d *Detector) Taxonomy() *Taxonomy {
	return d.taxonomy
}

var defaultDetector = NewDetector()

// DetectKeywordHints screens an action's title and summary with the default detector
func DetectKeywordHints(actionTitle, actionSummary string) []model.Hint {
	return defaultDetector.Detect(actionTitle, actionSummary)
}

// bestMatch is the strongest evidence found so far for one axis
type bestMatch struct {
	kind       string // "support" or "oppose"
	keyword    string
	polarity   int
	confidence float64
	modifier   string
}

// Detect returns at most one hint per axis, highest confidence first.
// It never fails; text without any match yields an empty slice.
func (d *Detector) Detect(actionTitle, actionSummary string) []model.Hint {
	text := actionTitle + ". " + actionSummary
	if strings.TrimSpace(actionTitle) == "" && strings.TrimSpace(actionSummary) == "" {
		return []model.Hint{}
	}

	hints := make([]model.Hint, 0, MaxHints)
	resolved := make(map[model.AxisKey]bool)

	// Coercive override: only the first matching phrase contributes.
	for _, phrase := range d.taxonomy.coercive {
		if _, ok := FindPhraseMatch(text, phrase); !ok {
			continue
		}
		if resolved[EnforceKey] {
			continue
		}
		resolved[EnforceKey] = true
		hints = append(hints, model.Hint{
			Dimension:       EnforceKey.Dimension,
			Index:           EnforceKey.Index,
			Polarity:        2,
			Confidence:      ConfidenceCoercive,
			MatchedKeywords: []string{phrase},
			Reasoning:       fmt.Sprintf("Coercive action detected: %q signals %s", phrase, d.taxonomy.Name(EnforceKey)),
		})
		d.logger.Debug("coercive override",
			zap.String("axis", EnforceKey.String()),
			zap.String("phrase", phrase))
	}

	for _, ax := range d.taxonomy.axes {
		if resolved[ax.Key] {
			continue
		}

		var matched []string
		var best *bestMatch

		consider := func(kind, keyword string, invert bool) {
			m, ok := FindKeywordMatch(text, keyword)
			if !ok {
				return
			}
			pc := d.taxonomy.AnalyzeContext(text, m.Position, m.MatchedVariant)
			polarity := pc.Polarity
			prefix := "+"
			if invert {
				polarity = -polarity
				prefix = "-"
			}
			matched = append(matched, prefix+keyword)

			d.logger.Debug("keyword match",
				zap.String("axis", ax.Key.String()),
				zap.String("kind", kind),
				zap.String("keyword", keyword),
				zap.String("variant", m.MatchedVariant),
				zap.Int("position", m.Position),
				zap.Int("polarity", polarity),
				zap.Float64("confidence", pc.Confidence),
				zap.String("modifier", pc.ModifierWord))

			// Strict comparison: the earlier match wins ties.
			if best == nil || pc.Confidence > best.confidence {
				best = &bestMatch{
					kind:       kind,
					keyword:    keyword,
					polarity:   polarity,
					confidence: pc.Confidence,
					modifier:   pc.ModifierWord,
				}
			}
		}

		for _, kw := range ax.Support {
			consider("support", kw, false)
		}
		for _, kw := range ax.Oppose {
			consider("oppose", kw, true)
		}

		if best == nil {
			continue
		}

		resolved[ax.Key] = true
		hints = append(hints, model.Hint{
			Dimension:       ax.Key.Dimension,
			Index:           ax.Key.Index,
			Polarity:        d.taxonomy.Strength(best.polarity, best.confidence, best.modifier),
			Confidence:      best.confidence,
			MatchedKeywords: matched,
			Reasoning:       reasoning(best, ax.Name),
		})
	}

	sort.SliceStable(hints, func(i, j int) bool {
		return hints[i].Confidence > hints[j].Confidence
	})
	if len(hints) > d.limit {
		hints = hints[:d.limit]
	}
	return hints
}

func reasoning(m *bestMatch, axisName string) string {
	if m.modifier != "" {
		return fmt.Sprintf("%s keyword %q near modifier %q -> %s", m.kind, m.keyword, m.modifier, axisName)
	}
	return fmt.Sprintf("%s keyword %q -> %s", m.kind, m.keyword, axisName)
}
