// Demo program that runs a fixed set of scenario actions through the keyword
// hint engine and prints the hints and the prompt block for each.
// Doubles as a manual smoke test after taxonomy edits.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/valuecompass/internal/compass"
)

type scenario struct {
	title   string
	summary string
	note    string
}

var scenarios = []scenario{
	{"Ban public protests", "Impose martial law to restore order", "coercive override puts how:6 first"},
	{"Declare a state of emergency", "Deploy troops to the capital", "coercive phrase suppresses the Enforce keyword scan"},
	{"Impose a curfew and martial law", "", "only the first coercive phrase in table order is cited"},
	{"Reduce emissions", "", "negative modifier on an oppose keyword gives a positive hint"},
	{"Increase emissions", "", "positive modifier on an oppose keyword gives a negative hint"},
	{"The regime increased oppression", "", "oppose keyword with a positive modifier"},
	{"The council will debate the budget", "", "plain matches stay at confidence 0.6"},
	{"New regulations were announced", "", "fuzzy match: regulate -> regulations"},
	{"Political party dynamics", "", "no hints"},
}

func main() {
	trace := flag.Bool("trace", false, "log every keyword match")
	flag.Parse()

	logger := zap.NewNop()
	if *trace {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "logger: %v\n", err)
			os.Exit(1)
		}
		logger = l
		defer func() { _ = logger.Sync() }()
	}

	detector := compass.NewDetector(compass.WithLogger(logger))
	tax := detector.Taxonomy()

	fmt.Println("=== Compass Hint Scenarios ===")
	fmt.Println()

	for i, sc := range scenarios {
		fmt.Printf("%d. %s", i+1, sc.title)
		if sc.summary != "" {
			fmt.Printf(" | %s", sc.summary)
		}
		fmt.Println()
		fmt.Printf("   (%s)\n", sc.note)
		fmt.Println(strings.Repeat("-", 60))

		hints := detector.Detect(sc.title, sc.summary)
		if len(hints) == 0 {
			fmt.Println("   no hints")
		}
		for _, h := range hints {
			fmt.Printf("   %-10s %-26s %+d  %.2f  %s\n",
				h.Key(), tax.Name(h.Key()), h.Polarity, h.Confidence, strings.Join(h.MatchedKeywords, ", "))
			fmt.Printf("              %s\n", h.Reasoning)
		}

		fmt.Println()
		for _, line := range strings.Split(compass.FormatKeywordHintsForPrompt(hints), "\n") {
			fmt.Printf("   > %s\n", line)
		}
		fmt.Println()
	}

	fmt.Println("=== Done ===")
}
