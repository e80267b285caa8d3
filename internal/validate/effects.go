package validate

import (
	"fmt"

	"github.com/ppiankov/valuecompass/internal/compass"
	"github.com/ppiankov/valuecompass/internal/model"
)

// Effects splits model-proposed effects into the ones that name a known
// axis with an allowed polarity and a list of problems for the rest.
// Duplicate axes keep the first effect.
func Effects(effects []model.Effect, tax *compass.Taxonomy) ([]model.Effect, []string) {
	if tax == nil {
		tax = compass.Default()
	}

	valid := make([]model.Effect, 0, len(effects))
	var problems []string
	seen := make(map[model.AxisKey]bool)

	for i, e := range effects {
		key, err := e.Key()
		if err != nil {
			problems = append(problems, fmt.Sprintf("effect %d: %v", i, err))
			continue
		}
		if _, ok := tax.Axis(key); !ok {
			problems = append(problems, fmt.Sprintf("effect %d: unknown axis %s", i, key))
			continue
		}
		if !allowedPolarity(e.Polarity) {
			problems = append(problems, fmt.Sprintf("effect %d: polarity %d on %s outside {-2,-1,1,2}", i, e.Polarity, key))
			continue
		}
		if seen[key] {
			problems = append(problems, fmt.Sprintf("effect %d: duplicate axis %s", i, key))
			continue
		}
		seen[key] = true

		e.Axis = key.String()
		valid = append(valid, e)
	}

	return valid, problems
}

func allowedPolarity(p int) bool {
	switch p {
	case -2, -1, 1, 2:
		return true
	}
	return false
}
