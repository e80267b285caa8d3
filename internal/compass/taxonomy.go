package compass

import (
	"fmt"
	"slices"
	"sync"

	"github.com/ppiankov/valuecompass/internal/model"
)

// Taxonomy is the read-only compass table: 40 value axes plus the
// modifier, coercive and strong-modifier word lists.
//
// List order is part of the contract. Support keywords are scanned before
// oppose keywords, negative modifiers before positive ones, and the first
// hit wins ties, so reordering any list changes detection results.
type Taxonomy struct {
	axes     []model.Axis
	byKey    map[model.AxisKey]int
	positive []string
	negative []string
	coercive []string
	strong   []string
}

var (
	defaultOnce     sync.Once
	defaultTaxonomy *Taxonomy
)

// Default returns the built-in taxonomy, constructed once per process
func Default() *Taxonomy {
	defaultOnce.Do(func() {
		defaultTaxonomy = newTaxonomy(axisTable, positiveModifiers, negativeModifiers, coerciveKeywords, strongModifiers)
	})
	return defaultTaxonomy
}

func newTaxonomy(axes []model.Axis, positive, negative, coercive, strong []string) *Taxonomy {
	t := &Taxonomy{
		axes:     axes,
		byKey:    make(map[model.AxisKey]int, len(axes)),
		positive: positive,
		negative: negative,
		coercive: coercive,
		strong:   strong,
	}
	for i, a := range axes {
		t.byKey[a.Key] = i
	}
	return t
}

// Axes returns every axis in scan order (what, whence, how, whither; index 0-9)
func (t *Taxonomy) Axes() []model.Axis {
	out := make([]model.Axis, len(t.axes))
	for i, a := range t.axes {
		out[i] = cloneAxis(a)
	}
	return out
}

// Axis looks up an axis by key. A missing key is not an error.
func (t *Taxonomy) Axis(key model.AxisKey) (model.Axis, bool) {
	i, ok := t.byKey[key]
	if !ok {
		return model.Axis{}, false
	}
	return cloneAxis(t.axes[i]), true
}

// Name returns the axis label, or the key itself when unknown
func (t *Taxonomy) Name(key model.AxisKey) string {
	if i, ok := t.byKey[key]; ok {
		return t.axes[i].Name
	}
	return key.String()
}

// Dimension returns the ten axes of one dimension in index order
func (t *Taxonomy) Dimension(d model.Dimension) []model.Axis {
	var out []model.Axis
	for _, a := range t.axes {
		if a.Key.Dimension == d {
			out = append(out, cloneAxis(a))
		}
	}
	return out
}

func (t *Taxonomy) PositiveModifiers() []string { return slices.Clone(t.positive) }
func (t *Taxonomy) NegativeModifiers() []string { return slices.Clone(t.negative) }
func (t *Taxonomy) CoerciveKeywords() []string  { return slices.Clone(t.coercive) }
func (t *Taxonomy) StrongModifiers() []string   { return slices.Clone(t.strong) }

// Validate checks that every dimension carries indices 0-9 exactly once
func (t *Taxonomy) Validate() error {
	seen := make(map[model.AxisKey]bool, len(t.axes))
	for _, a := range t.axes {
		if !a.Key.Dimension.Valid() {
			return fmt.Errorf("axis %s: unknown dimension", a.Key)
		}
		if a.Key.Index < 0 || a.Key.Index > 9 {
			return fmt.Errorf("axis %s: index out of range", a.Key)
		}
		if seen[a.Key] {
			return fmt.Errorf("axis %s: duplicate key", a.Key)
		}
		if a.Name == "" {
			return fmt.Errorf("axis %s: missing name", a.Key)
		}
		seen[a.Key] = true
	}
	for _, d := range model.Dimensions {
		for i := 0; i < 10; i++ {
			key := model.AxisKey{Dimension: d, Index: i}
			if !seen[key] {
				return fmt.Errorf("axis %s: missing", key)
			}
		}
	}
	if len(t.axes) != len(model.Dimensions)*10 {
		return fmt.Errorf("expected %d axes, got %d", len(model.Dimensions)*10, len(t.axes))
	}
	return nil
}

func cloneAxis(a model.Axis) model.Axis {
	a.Support = slices.Clone(a.Support)
	a.Oppose = slices.Clone(a.Oppose)
	return a
}

func axis(d model.Dimension, idx int, name string, support, oppose []string) model.Axis {
	return model.Axis{
		Key:     model.AxisKey{Dimension: d, Index: idx},
		Name:    name,
		Support: support,
		Oppose:  oppose,
	}
}

const (
	what    = model.DimensionWhat
	whence  = model.DimensionWhence
	how     = model.DimensionHow
	whither = model.DimensionWhither
)

// EnforceKey is the axis forced by the coercive override
var EnforceKey = model.AxisKey{Dimension: how, Index: 6}

var axisTable = []model.Axis{
	// what: goals
	axis(what, 0, "Truth/Trust",
		[]string{"truth", "honesty", "transparency", "accountability", "trust", "fact-check"},
		[]string{"propaganda", "disinformation", "misinformation", "cover-up", "secrecy", "lie"}),
	axis(what, 1, "Liberty/Agency",
		[]string{"freedom", "liberty", "autonomy", "choice", "self-determination", "rights"},
		[]string{"oppression", "tyranny", "coercion", "surveillance", "censorship"}),
	axis(what, 2, "Equality/Equity",
		[]string{"equality", "equity", "fairness", "redistribute", "inclusion", "equal rights"},
		[]string{"discrimination", "privilege", "segregation", "inequality", "elitism"}),
	axis(what, 3, "Care/Solidarity",
		[]string{"care", "compassion", "solidarity", "welfare", "relief", "humanitarian"},
		[]string{"neglect", "abandon", "cruelty", "indifference"}),
	axis(what, 4, "Create/Courage",
		[]string{"innovate", "invent", "create", "courage", "pioneer", "experiment"},
		[]string{"stagnation", "cowardice", "timid"}),
	axis(what, 5, "Wellbeing",
		[]string{"health", "wellbeing", "happiness", "prosperity", "comfort", "healthcare"},
		[]string{"disease", "poverty", "suffering", "famine", "misery"}),
	axis(what, 6, "Security/Safety",
		[]string{"security", "safety", "order", "stability", "defend"},
		[]string{"chaos", "danger", "threat", "unrest", "disorder"}),
	axis(what, 7, "Freedom/Responsibility",
		[]string{"responsibility", "duty", "obligation", "accountable", "self-reliance"},
		[]string{"negligence", "recklessness", "irresponsible"}),
	axis(what, 8, "Honor/Sacrifice",
		[]string{"honor", "sacrifice", "loyalty", "dignity", "glory", "heroism"},
		[]string{"betrayal", "disgrace", "shame", "treason"}),
	axis(what, 9, "Sacred/Awe",
		[]string{"sacred", "holy", "reverence", "awe", "worship", "sanctity"},
		[]string{"desecrate", "blasphemy", "profane", "sacrilege"}),

	// whence: justification
	axis(whence, 0, "Evidence",
		[]string{"evidence", "data", "science", "research", "study", "experts"},
		[]string{"rumor", "superstition", "hearsay", "anecdote"}),
	axis(whence, 1, "Public Reason",
		[]string{"debate", "consensus", "reason", "argument", "public interest", "common good"},
		[]string{"dogma", "demagogue", "arbitrary"}),
	axis(whence, 2, "Personal",
		[]string{"conscience", "intuition", "personal belief", "gut feeling", "conviction"},
		[]string{"conformity", "peer pressure"}),
	axis(whence, 3, "Tradition",
		[]string{"tradition", "heritage", "custom", "ancestors", "ancestral", "time-honored"},
		[]string{"modernize", "break with tradition", "reform"}),
	axis(whence, 4, "Revelation",
		[]string{"prophecy", "revelation", "scripture", "oracle", "omen", "divine will"},
		[]string{"heresy", "apostasy", "secular"}),
	axis(whence, 5, "Nature",
		[]string{"nature", "natural", "instinct", "biology", "natural law"},
		[]string{"artificial", "unnatural"}),
	axis(whence, 6, "Pragmatism",
		[]string{"pragmatic", "practical", "efficient", "efficiency", "cost-benefit", "results"},
		[]string{"idealistic", "impractical", "wasteful", "inefficient"}),
	axis(whence, 7, "Aesthesis",
		[]string{"beauty", "art", "aesthetic", "elegance", "harmony", "music"},
		[]string{"ugly", "vulgar", "eyesore"}),
	axis(whence, 8, "Fidelity",
		[]string{"promise", "oath", "commitment", "pledge", "keep our word", "allegiance"},
		[]string{"broken promise", "renege", "disloyal"}),
	axis(whence, 9, "Law (Office)",
		[]string{"constitution", "statute", "legal", "authority", "office"},
		[]string{"illegal", "unconstitutional", "lawless", "usurp"}),

	// how: means
	axis(how, 0, "Law/Std.",
		[]string{"law", "legislation", "regulate", "standard", "policy", "decree"},
		[]string{"deregulate", "loophole", "repeal"}),
	axis(how, 1, "Deliberation",
		[]string{"deliberation", "negotiate", "dialogue", "council", "assembly", "referendum"},
		[]string{"unilateral", "dictate", "stonewall"}),
	axis(how, 2, "Mobilize",
		[]string{"protest", "rally", "march", "strike", "mobilize", "campaign"},
		[]string{"demobilize", "disperse", "apathy"}),
	axis(how, 3, "Markets",
		[]string{"market", "trade", "commerce", "privatize", "investor", "competition"},
		[]string{"nationalize", "price control", "tariff", "monopoly"}),
	axis(how, 4, "Mutual Aid",
		[]string{"mutual aid", "cooperative", "volunteer", "community", "neighbors", "share"},
		[]string{"hoard", "profiteer", "selfish"}),
	axis(how, 5, "Ritual",
		[]string{"ritual", "ceremony", "festival", "rite", "prayer", "celebration"},
		[]string{"secularize", "irreverence"}),
	axis(how, 6, "Enforce",
		[]string{"enforce", "police", "army", "troops", "punish", "penalty"},
		[]string{"amnesty", "pardon", "leniency", "disarm"}),
	axis(how, 7, "Design/UX",
		[]string{"design", "redesign", "incentive", "nudge", "infrastructure", "urban planning"},
		[]string{"bureaucracy", "red tape", "clunky"}),
	axis(how, 8, "Civic Culture",
		[]string{"education", "civic", "newspaper", "public awareness", "culture", "school"},
		[]string{"ignorance", "illiteracy", "anti-intellectual"}),
	axis(how, 9, "Philanthropy",
		[]string{"charity", "philanthropy", "donation", "endowment", "patron", "benefactor"},
		[]string{"greed", "miserly", "stingy"}),

	// whither: recipients
	axis(whither, 0, "Self",
		[]string{"myself", "self-interest", "personal gain", "my own", "ambition"},
		[]string{"selfless", "self-sacrifice"}),
	axis(whither, 1, "Family",
		[]string{"family", "children", "parents", "household", "kin", "heirs"},
		[]string{"orphan", "disown"}),
	axis(whither, 2, "Friends",
		[]string{"friends", "allies", "comrades", "companions", "friendship"},
		[]string{"enemies", "rivals", "betray friends"}),
	axis(whither, 3, "In-Group",
		[]string{"our people", "tribe", "clan", "faction", "party members", "insiders"},
		[]string{"cosmopolitan", "open borders", "outsiders"}),
	axis(whither, 4, "Nation",
		[]string{"nation", "country", "homeland", "citizens", "patriot", "national"},
		[]string{"secession", "separatist", "foreign interference"}),
	axis(whither, 5, "Civiliz.",
		[]string{"civilization", "empire", "heritage of mankind", "alliance", "world order"},
		[]string{"barbarian", "decline", "collapse"}),
	axis(whither, 6, "Humanity",
		[]string{"humanity", "human rights", "global", "mankind", "universal", "refugees"},
		[]string{"xenophobia", "genocide", "crimes against humanity"}),
	axis(whither, 7, "Earth",
		[]string{"environment", "climate", "ecosystem", "forest", "wildlife", "sustainable"},
		[]string{"pollution", "deforestation", "emissions", "drilling"}),
	axis(whither, 8, "Cosmos",
		[]string{"cosmos", "universe", "outer space", "space exploration", "stars", "planets"},
		[]string{"earthbound", "scrap the space program"}),
	axis(whither, 9, "God",
		[]string{"god", "gods", "deity", "heaven", "almighty", "the divine"},
		[]string{"atheism", "godless", "idolatry"}),
}

// Scanned before positiveModifiers; the first hit by list order wins.
var negativeModifiers = []string{
	"abolish", "ban", "prohibit", "eliminate", "restrict", "reduce", "decrease",
	"limit", "curb", "weaken", "undermine", "suppress", "dismantle", "remove",
	"halt", "stop", "oppose", "against", "without",
}

var positiveModifiers = []string{
	"increase", "expand", "boost", "strengthen", "promote", "support", "protect",
	"encourage", "invest", "improve", "enhance", "raise", "restore", "guarantee",
	"mandate", "impose", "enforce", "establish", "more",
}

// Multi-word idioms of state coercion; matched as plain phrases.
var coerciveKeywords = []string{
	"martial law", "crack down", "crackdown", "curfew", "state of emergency",
	"deploy troops", "deploy the army", "riot police", "mass arrests", "arrest",
	"detain", "imprison", "forcibly", "by force", "conscription", "censor",
}

var strongModifiers = []string{
	"drastically", "significantly", "completely", "entirely", "fully",
	"eliminate", "ban", "prohibit", "mandate", "compel", "impose",
}
