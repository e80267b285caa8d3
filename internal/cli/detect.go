package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/valuecompass/internal/extract"
	"github.com/ppiankov/valuecompass/internal/model"
	"github.com/ppiankov/valuecompass/internal/pipeline"
)

var (
	detectJSON  bool
	detectLimit int
)

// detectCmd runs only the keyword engine
var detectCmd = &cobra.Command{
	Use:   "detect <title> [summary]",
	Short: "Detect keyword hints for one action (no LLM)",
	Long: `Detect runs the keyword hint engine over an action title and optional
summary and prints the prompt block a language model would receive.

A single argument of the form "Title | summary" is split automatically.

Example:
  compass detect "Ban public protests" "Impose martial law to restore order"
  compass detect "Reduce emissions | Tax coal plants" --json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().BoolVar(&detectJSON, "json", false, "print hints as JSON")
	detectCmd.Flags().IntVar(&detectLimit, "limit", 0, "maximum number of hints (1-6, default from config)")
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if detectLimit > 0 {
		cfg.Detection.MaxHints = detectLimit
	}

	p := pipeline.New(cfg, logger)

	hints, prompt, err := p.Hints(actionFromArgs(args))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if detectJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Hints  []model.Hint `json:"hints"`
			Prompt string       `json:"prompt"`
		}{hints, prompt})
	}

	fmt.Fprintln(out, prompt)
	if verbose {
		for _, h := range hints {
			fmt.Fprintf(out, "  %s: %s\n", h.Key(), h.Reasoning)
		}
	}
	return nil
}

// actionFromArgs builds an action from "<title> [summary]" arguments
func actionFromArgs(args []string) model.Action {
	if len(args) == 1 {
		title, summary := extract.SplitAction(args[0])
		return model.NewAction(title, summary)
	}
	return model.NewAction(args[0], strings.Join(args[1:], " "))
}
