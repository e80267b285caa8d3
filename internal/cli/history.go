package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/valuecompass/internal/pipeline"
)

var (
	historyLimit int
	historyJSON  bool
)

// historyCmd lists journaled evaluations
var historyCmd = &cobra.Command{
	Use:   "history [report-id]",
	Short: "List recent evaluations from the journal",
	Long: `History reads the SQLite evaluation journal (store.enabled must be set).

Without arguments it lists recent evaluations; with a report ID it prints
that report as JSON.

Example:
  compass history --limit 10
  compass history 6f1c2d4e-...`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of entries to list")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print entries as JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.LLM.Provider = "" // read-only; no provider needed

	p, err := pipeline.NewPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	ctx := context.Background()
	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	if len(args) == 1 {
		report, err := p.Report(ctx, args[0])
		if err != nil {
			return historyError(err)
		}
		return enc.Encode(report)
	}

	entries, err := p.History(ctx, historyLimit)
	if err != nil {
		return historyError(err)
	}

	if historyJSON {
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No evaluations journaled yet")
		return nil
	}
	for _, e := range entries {
		provider := e.Provider
		if provider == "" {
			provider = "-"
		}
		fmt.Fprintf(out, "%s  %s  %-8s %2d hints  %3d/100  %s\n",
			e.EvaluatedAt.Local().Format("2006-01-02 15:04"), e.ID, provider, e.HintCount, e.Index, e.Title)
	}
	return nil
}

func historyError(err error) error {
	if errors.Is(err, pipeline.ErrJournalDisabled) {
		return fmt.Errorf("%w (set store.enabled: true or COMPASS_STORE_ENABLED=true)", err)
	}
	return err
}
