package model

import (
	"strings"

	"github.com/google/uuid"
)

// Action is a player- or AI-authored action submitted for evaluation
type Action struct {
	ID      string `json:"id" yaml:"id,omitempty"`
	Title   string `json:"title" yaml:"title"`
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// NewAction creates an action with a fresh ID
func NewAction(title, summary string) Action {
	return Action{
		ID:      uuid.NewString(),
		Title:   strings.TrimSpace(title),
		Summary: strings.TrimSpace(summary),
	}
}

// EnsureID assigns an ID if the action does not have one yet
func (a *Action) EnsureID() {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
}

// Effect is a compass effect proposed by the language model for an action
type Effect struct {
	Axis     string `json:"axis"`     // "dimension:index"
	Polarity int    `json:"polarity"` // One of -2, -1, 1, 2
	Reason   string `json:"reason,omitempty"`
}

// Key parses the effect's axis reference
func (e Effect) Key() (AxisKey, error) {
	return ParseAxisKey(e.Axis)
}
