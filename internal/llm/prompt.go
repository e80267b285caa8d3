package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/valuecompass/internal/compass"
	"github.com/ppiankov/valuecompass/internal/model"
)

// SystemPrompt explains the compass and the reply format
const SystemPrompt = `You evaluate player actions in a political strategy game against a value compass.

The compass has four dimensions with ten axes each:
- what: the goals an action pursues
- whence: how the action is justified
- how: the means the action uses
- whither: who the action is for

For each axis the action clearly touches, give a polarity:
-2 strongly opposes, -1 opposes, 1 supports, 2 strongly supports.
Leave out axes the action does not touch. Never use 0.

Reply with JSON only, no prose, in exactly this shape:
{"effects":[{"axis":"what:6","polarity":2,"reason":"..."}]}

Axis references MUST use the dimension:index form and MUST come from the axis list you are given.`

// BuildPrompt constructs the user message for one action
func BuildPrompt(action model.Action, hints []model.Hint, tax *compass.Taxonomy) string {
	if tax == nil {
		tax = compass.Default()
	}

	var b strings.Builder

	fmt.Fprintf(&b, "ACTION\nTitle: %s\n", action.Title)
	if action.Summary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", action.Summary)
	}

	b.WriteString("\nAXES\n")
	for _, d := range model.Dimensions {
		names := make([]string, 0, 10)
		for _, a := range tax.Dimension(d) {
			names = append(names, fmt.Sprintf("%d=%s", a.Key.Index, a.Name))
		}
		fmt.Fprintf(&b, "%s: %s\n", d, strings.Join(names, ", "))
	}

	b.WriteString("\n")
	b.WriteString(compass.FormatKeywordHintsForPrompt(hints))
	b.WriteString("\n\nReturn the effects JSON now.")

	return b.String()
}
