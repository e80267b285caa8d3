package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/valuecompass/internal/api"
	"github.com/ppiankov/valuecompass/internal/pipeline"
	"github.com/ppiankov/valuecompass/internal/worker"
)

var serveAddr string

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the hint engine and evaluator over HTTP",
	Long: `Serve exposes the compass over a small JSON API:
  GET  /health
  GET  /api/v1/taxonomy
  POST /api/v1/hints      {"title": "...", "summary": "..."}
  POST /api/v1/evaluate   (503 without an LLM provider)
  GET  /api/v1/history    (404 unless store.enabled is set)

Example:
  compass serve --addr :8088
  COMPASS_LLM_PROVIDER=openai compass serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	addLLMFlags(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := configFromFlags()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	// Requests share one budget per provider, like batch workers
	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	p, err := pipeline.NewPipeline(cfg, logger, pipeline.WithLimiter(limiter))
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	if p.LLMEnabled() {
		if err := p.CheckLLM(cmd.Context()); err != nil {
			logger.Warn("LLM provider check failed", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "Compass API listening on %s (LLM: %s)\n", cfg.Server.Addr, providerLabel(p))

	server := api.NewServer(p, cfg.Server, logger.Named("api"))
	return server.Run(ctx, cfg.Server.Addr)
}

func providerLabel(p *pipeline.Pipeline) string {
	if name := p.ProviderName(); name != "" {
		return name
	}
	return "disabled"
}
