package validate

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/valuecompass/internal/model"
)

const (
	MaxTitleLength   = 200
	MaxSummaryLength = 4000
)

// ErrEmptyTitle is returned for actions without a title
var ErrEmptyTitle = errors.New("action title is required")

// Action checks that an action can be evaluated
func Action(a model.Action) error {
	title := strings.TrimSpace(a.Title)
	if title == "" {
		return ErrEmptyTitle
	}
	if n := utf8.RuneCountInString(title); n > MaxTitleLength {
		return fmt.Errorf("action title too long: %d characters (max %d)", n, MaxTitleLength)
	}
	if n := utf8.RuneCountInString(a.Summary); n > MaxSummaryLength {
		return fmt.Errorf("action summary too long: %d characters (max %d)", n, MaxSummaryLength)
	}
	if !utf8.ValidString(a.Title) || !utf8.ValidString(a.Summary) {
		return fmt.Errorf("action text is not valid UTF-8")
	}
	return nil
}
