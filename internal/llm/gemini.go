package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/ppiankov/valuecompass/internal/util"
)

const geminiDefaultModel = "gemini-2.5-flash"

// GeminiProvider implements the Provider interface for Google Gemini models
type GeminiProvider struct {
	client *genai.Client
	config Config
	logger *zap.Logger
}

// NewGeminiProvider creates a new Gemini provider. Proxy settings route the
// REST calls through a custom transport.
func NewGeminiProvider(ctx context.Context, config Config, logger *zap.Logger) (*GeminiProvider, error) {
	var base http.RoundTripper
	if config.HTTPProxy != "" || config.HTTPSProxy != "" {
		base = util.NewHTTPClient(config.HTTPProxy, config.HTTPSProxy, config.NoProxy).Transport
	}
	return newGeminiProvider(ctx, config, logger, base)
}

func newGeminiProvider(ctx context.Context, config Config, logger *zap.Logger, base http.RoundTripper) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []option.ClientOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(config.BaseURL))
	}
	if base != nil {
		opts = append(opts, option.WithHTTPClient(&http.Client{
			Transport: &geminiTransport{apiKey: config.APIKey, base: base},
		}))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		config: config,
		logger: logger,
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Close releases the underlying client
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

// IsAvailable checks that the configured model can be described
func (p *GeminiProvider) IsAvailable(ctx context.Context) bool {
	name := p.config.Model
	if name == "" {
		name = geminiDefaultModel
	}
	if _, err := p.client.GenerativeModel(name).Info(ctx); err != nil {
		p.logger.Warn("Gemini API check failed", zap.String("model", name), zap.Error(err))
		return false
	}
	return true
}

// Complete runs one exchange through GenerateContent
func (p *GeminiProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	req = p.config.resolve(req, geminiDefaultModel)

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	model := p.client.GenerativeModel(req.Model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	model.SetTemperature(float32(req.Temperature))
	model.SetMaxOutputTokens(int32(req.MaxTokens))
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctxWithTimeout, genai.Text(req.Prompt))
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	text := geminiText(resp)
	if text == "" {
		return nil, fmt.Errorf("no content in Gemini response")
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &CompletionResponse{
		Text:       text,
		Model:      req.Model,
		TokensUsed: tokens,
	}, nil
}

// geminiText joins the text parts of the first candidate
func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String())
}

// geminiTransport adds the API key to each request; a custom http.Client
// bypasses option.WithAPIKey
type geminiTransport struct {
	apiKey string
	base   http.RoundTripper
}

func (t *geminiTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	q := r.URL.Query()
	q.Set("key", t.apiKey)
	r.URL.RawQuery = q.Encode()
	return t.base.RoundTrip(r)
}
