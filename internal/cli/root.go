package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/valuecompass/internal/cache"
	"github.com/ppiankov/valuecompass/internal/model"
)

// Version is set at build time with -ldflags
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
	logger  = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "compass",
	Short: "Compass - keyword hints for value-compass action evaluation",
	Long: `Compass screens short action texts (a title and an optional summary)
against a 40-axis value compass and produces signed, confidence-ranked hints.

The hints are cheap keyword evidence meant to seed a language-model
evaluation. They are starting points, not verdicts: the model (or a human)
makes the final call on which axes an action moves.

Dimensions: what (goals), whence (justification), how (means),
whither (recipients).`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of compass.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "compass %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.compass/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads .env, the config file and COMPASS_* variables
func initConfig() {
	// .env in the working directory is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.compass")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	setDefaults(model.DefaultConfig())

	// COMPASS_LLM_PROVIDER overrides llm.provider, and so on
	viper.SetEnvPrefix("COMPASS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key so AutomaticEnv can see it
func setDefaults(cfg *model.Config) {
	defaults := map[string]interface{}{
		"detection.max_hints":               cfg.Detection.MaxHints,
		"detection.trace":                   cfg.Detection.Trace,
		"llm.provider":                      cfg.LLM.Provider,
		"llm.model":                         cfg.LLM.Model,
		"llm.api_key":                       cfg.LLM.APIKey,
		"llm.base_url":                      cfg.LLM.BaseURL,
		"llm.timeout":                       cfg.LLM.Timeout,
		"llm.max_tokens":                    cfg.LLM.MaxTokens,
		"llm.temperature":                   cfg.LLM.Temperature,
		"llm.strict_axes":                   cfg.LLM.StrictAxes,
		"cache.enabled":                     cfg.Cache.Enabled,
		"cache.dir":                         cfg.Cache.Dir,
		"cache.memory_ttl":                  cfg.Cache.MemoryTTL,
		"cache.disk_ttl":                    cfg.Cache.DiskTTL,
		"concurrency.workers":               cfg.Concurrency.Workers,
		"rate_limiting.requests_per_second": cfg.RateLimiting.RequestsPerSecond,
		"rate_limiting.burst_size":          cfg.RateLimiting.BurstSize,
		"http.http_proxy":                   cfg.HTTP.HTTPProxy,
		"http.https_proxy":                  cfg.HTTP.HTTPSProxy,
		"http.no_proxy":                     cfg.HTTP.NoProxy,
		"server.addr":                       cfg.Server.Addr,
		"server.allowed_origins":            cfg.Server.AllowedOrigins,
		"store.enabled":                     cfg.Store.Enabled,
		"store.path":                        cfg.Store.Path,
		"output.verbose":                    cfg.Output.Verbose,
		"output.include_footer":             cfg.Output.IncludeFooter,
	}
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
}

// loadConfig merges defaults, config file and environment into a Config
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.Output.Verbose = cfg.Output.Verbose || verbose
	cfg.Cache.Dir = cache.ExpandHome(cfg.Cache.Dir)
	cfg.Store.Path = cache.ExpandHome(cfg.Store.Path)

	resolveProviderEnv(cfg)
	return cfg, nil
}

// resolveProviderEnv fills provider credentials from their conventional
// environment variables when the config leaves them empty
func resolveProviderEnv(cfg *model.Config) {
	switch strings.ToLower(cfg.LLM.Provider) {
	case "openai":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	case "anthropic", "claude":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	case "gemini", "google":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	case "ollama":
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
}

func requireAPIKey(cfg *model.Config) error {
	switch strings.ToLower(cfg.LLM.Provider) {
	case "openai":
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "gemini", "google":
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	}
	return nil
}
