package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/valuecompass/internal/model"
)

func TestReportSlug(t *testing.T) {
	tests := []struct {
		index int
		title string
		want  string
	}{
		{0, "Ban public protests", "001-ban-public-protests"},
		{9, "  Reduce   CO2 emissions!! ", "010-reduce-co2-emissions"},
		{2, "???", "003-action"},
		{0, "a/b\\c:d", "001-a-b-c-d"},
	}

	for _, tt := range tests {
		if got := reportSlug(tt.index, tt.title); got != tt.want {
			t.Errorf("reportSlug(%d, %q) = %q, want %q", tt.index, tt.title, got, tt.want)
		}
	}

	long := reportSlug(0, strings.Repeat("word ", 40))
	if len(long) > 70 {
		t.Errorf("slug not truncated: %d characters", len(long))
	}
}

func TestActionFromArgs(t *testing.T) {
	a := actionFromArgs([]string{"Ban public protests | Impose martial law"})
	if a.Title != "Ban public protests" || a.Summary != "Impose martial law" {
		t.Errorf("unexpected split: %+v", a)
	}
	if a.ID == "" {
		t.Error("expected an action ID")
	}

	b := actionFromArgs([]string{"Reduce emissions", "Tax coal plants"})
	if b.Title != "Reduce emissions" || b.Summary != "Tax coal plants" {
		t.Errorf("unexpected two-argument action: %+v", b)
	}
}

func TestResolveProviderEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GEMINI_API_KEY", "gm-test")
	t.Setenv("OLLAMA_BASE_URL", "http://ollama:11434")

	cfg := model.DefaultConfig()
	cfg.LLM.Provider = "openai"
	resolveProviderEnv(cfg)
	if cfg.LLM.APIKey != "sk-test" {
		t.Errorf("expected OPENAI_API_KEY, got %q", cfg.LLM.APIKey)
	}

	cfg = model.DefaultConfig()
	cfg.LLM.Provider = "gemini"
	resolveProviderEnv(cfg)
	if cfg.LLM.APIKey != "gm-test" {
		t.Errorf("expected GEMINI_API_KEY, got %q", cfg.LLM.APIKey)
	}

	cfg = model.DefaultConfig()
	cfg.LLM.Provider = "ollama"
	resolveProviderEnv(cfg)
	if cfg.LLM.BaseURL != "http://ollama:11434" {
		t.Errorf("expected OLLAMA_BASE_URL, got %q", cfg.LLM.BaseURL)
	}
	if err := requireAPIKey(cfg); err != nil {
		t.Errorf("ollama needs no key: %v", err)
	}
}

func TestRequireAPIKey(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.LLM.Provider = "anthropic"
	if err := requireAPIKey(cfg); err == nil || !strings.Contains(err.Error(), "ANTHROPIC_API_KEY") {
		t.Errorf("expected missing key error, got %v", err)
	}

	cfg.LLM.Provider = ""
	if err := requireAPIKey(cfg); err != nil {
		t.Errorf("disabled provider needs no key: %v", err)
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var cfg model.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("written config is not valid YAML: %v", err)
	}
	if cfg.Detection.MaxHints != 6 || !cfg.LLM.StrictAxes {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if strings.Contains(string(data), "api_key:") {
		t.Error("API key must not be written to the config file")
	}

	if err := writeDefaultConfig(path); err == nil {
		t.Error("expected error when the config already exists")
	}
}

func TestRunTaxonomy(t *testing.T) {
	var out bytes.Buffer
	taxonomyCmd.SetOut(&out)
	defer taxonomyCmd.SetOut(nil)

	taxonomyDimension = "how"
	defer func() { taxonomyDimension = "" }()

	if err := runTaxonomy(taxonomyCmd, nil); err != nil {
		t.Fatalf("runTaxonomy failed: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "how:6") || !strings.Contains(text, "Enforce") {
		t.Errorf("expected the Enforce axis, got:\n%s", text)
	}
	if strings.Contains(text, "what:0") {
		t.Error("expected only the how dimension")
	}

	taxonomyDimension = "sideways"
	if err := runTaxonomy(taxonomyCmd, nil); err == nil {
		t.Error("expected error for unknown dimension")
	}
}

func TestDetectCommand(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("detection:\n  max_hints: 6\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"detect", "--config", cfgPath, "Ban public protests | Impose martial law to restore order"})
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	}()

	if err := Execute(); err != nil {
		t.Fatalf("detect failed: %v", err)
	}

	want := "how:6 (polarity: +2, confidence: 0.95, keywords: martial law)"
	if !strings.Contains(out.String(), want) {
		t.Errorf("expected %q in output:\n%s", want, out.String())
	}
}
