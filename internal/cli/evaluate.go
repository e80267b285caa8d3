package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/valuecompass/internal/model"
	"github.com/ppiankov/valuecompass/internal/pipeline"
)

var (
	outJSON     string
	outMD       string
	timeout     time.Duration
	noCache     bool
	noFooter    bool
	lenient     bool
	llmProvider string
	llmModel    string
	httpProxy   string
	httpsProxy  string
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate <title> [summary]",
	Short: "Evaluate one action: keyword hints plus LLM compass effects",
	Long: `Evaluate screens an action for keyword hints, then (when a provider is
configured) asks a language model for compass effects seeded with those hints,
and scores how well the two agree.

Without a provider only the hints are reported.

Example:
  compass evaluate "Ban public protests" "Impose martial law to restore order"
  compass evaluate "Reduce emissions" --llm-provider openai --llm-model gpt-4o-mini
  compass evaluate "Ban public protests" --json report.json --md report.md`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	evaluateCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	evaluateCmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "evaluation timeout")
	addLLMFlags(evaluateCmd)
}

// addLLMFlags registers the flags shared by evaluate and batch
func addLLMFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force a fresh LLM call)")
	cmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	cmd.Flags().BoolVar(&lenient, "lenient", false, "drop unknown axes instead of rejecting the reply")
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama, gemini); empty uses config")
	cmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name; empty uses the provider default")
	cmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	cmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
}

// configFromFlags loads the config and applies evaluate/batch flags
func configFromFlags() (*model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if llmProvider != "" && llmProvider != cfg.LLM.Provider {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.APIKey = ""
		resolveProviderEnv(cfg)
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if lenient {
		cfg.LLM.StrictAxes = false
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
	if httpProxy != "" {
		cfg.HTTP.HTTPProxy = httpProxy
	}
	if httpsProxy != "" {
		cfg.HTTP.HTTPSProxy = httpsProxy
	}

	if err := requireAPIKey(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := configFromFlags()
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	if verbose {
		provider := p.ProviderName()
		if provider == "" {
			provider = "disabled"
		}
		fmt.Fprintf(os.Stderr, "LLM:     %s\n", provider)
		fmt.Fprintf(os.Stderr, "Cache:   %v\n", cfg.Cache.Enabled)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n\n", timeout)
	}

	report, err := p.Evaluate(ctx, actionFromArgs(args))
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	p.Renderer().SetOutput(cmd.OutOrStdout())
	if err := p.RenderReport(report, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}
