package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Dimension is one of the four top-level compass categories
type Dimension string

const (
	DimensionWhat    Dimension = "what"    // Goals
	DimensionWhence  Dimension = "whence"  // Justification
	DimensionHow     Dimension = "how"     // Means
	DimensionWhither Dimension = "whither" // Recipients
)

// Dimensions lists every dimension in taxonomy order
var Dimensions = []Dimension{DimensionWhat, DimensionWhence, DimensionHow, DimensionWhither}

// Valid reports whether d is one of the four known dimensions
func (d Dimension) Valid() bool {
	switch d {
	case DimensionWhat, DimensionWhence, DimensionHow, DimensionWhither:
		return true
	}
	return false
}

// AxisKey identifies a value axis by dimension and index (0-9)
type AxisKey struct {
	Dimension Dimension `json:"dimension" yaml:"dimension"`
	Index     int       `json:"index" yaml:"index"`
}

func (k AxisKey) String() string {
	return string(k.Dimension) + ":" + strconv.Itoa(k.Index)
}

// ParseAxisKey parses the "dimension:index" form, e.g. "how:6"
func ParseAxisKey(s string) (AxisKey, error) {
	dim, idx, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return AxisKey{}, fmt.Errorf("invalid axis key %q: expected dimension:index", s)
	}
	d := Dimension(strings.ToLower(strings.TrimSpace(dim)))
	if !d.Valid() {
		return AxisKey{}, fmt.Errorf("invalid axis key %q: unknown dimension %q", s, dim)
	}
	n, err := strconv.Atoi(strings.TrimSpace(idx))
	if err != nil {
		return AxisKey{}, fmt.Errorf("invalid axis key %q: %w", s, err)
	}
	if n < 0 || n > 9 {
		return AxisKey{}, fmt.Errorf("invalid axis key %q: index out of range 0-9", s)
	}
	return AxisKey{Dimension: d, Index: n}, nil
}

// Axis is one entry of the compass taxonomy
type Axis struct {
	Key     AxisKey  `json:"key"`
	Name    string   `json:"name"`              // Human-readable label, e.g. "Truth/Trust"
	Support []string `json:"support,omitempty"` // Keywords signalling alignment
	Oppose  []string `json:"oppose,omitempty"`  // Keywords signalling opposition
}

// KeywordMatch is the result of fuzzy matching a keyword in text
type KeywordMatch struct {
	Keyword        string // Canonical dictionary keyword
	MatchedVariant string // Variant actually found
	Position       int    // Byte offset of the match in the lower-cased text
}

// PolarityContext is the result of inspecting the text around a match
type PolarityContext struct {
	Polarity     int     // +1 support, -1 oppose (before oppose-keyword inversion)
	ModifierWord string  // Modifier found near the match, empty if none
	Confidence   float64 // 0.6, 0.9 or 0.95
}

// Hint is one detected compass signal handed to the prompt builder
type Hint struct {
	Dimension       Dimension `json:"dimension"`
	Index           int       `json:"index"`
	Polarity        int       `json:"polarity"`         // One of -2, -1, 1, 2
	Confidence      float64   `json:"confidence"`       // 0.6 to 0.95
	MatchedKeywords []string  `json:"matched_keywords"` // "+kw" support-origin, "-kw" oppose-origin
	Reasoning       string    `json:"reasoning"`
}

// Key returns the axis key the hint refers to
func (h Hint) Key() AxisKey {
	return AxisKey{Dimension: h.Dimension, Index: h.Index}
}
