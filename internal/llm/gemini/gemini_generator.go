package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"autoprice/internal/config"
	"autoprice/internal/llm"
	"autoprice/internal/port"
)

const defaultModel = "gemini-2.5-flash"

// Generator implements port.TextGenerator using the Gemini API.
type Generator struct {
	client *genai.Client
	model  string
}

// NewGenerator creates a Gemini text generator from a provider config. A non-empty
// cfg.Endpoint overrides the API base URL.
func NewGenerator(ctx context.Context, cfg *config.ProviderConfig) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if cfg.Endpoint != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.Endpoint}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Generator{client: client, model: model}, nil
}

// Factory adapts NewGenerator to llm.ProviderFactory.
func Factory(cfg *config.ProviderConfig) (port.TextGenerator, error) {
	return NewGenerator(context.Background(), cfg)
}

func (g *Generator) Generate(ctx context.Context, prompt string) (*port.Generation, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		if code, ok := statusCode(err); ok && code == http.StatusTooManyRequests {
			return nil, llm.NewRateLimitError("gemini", err, 0)
		}
		return nil, fmt.Errorf("calling gemini API: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, fmt.Errorf("empty response from API")
	}

	return &port.Generation{
		Text:     text,
		Model:    g.model,
		Provider: "gemini",
	}, nil
}

func statusCode(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code, true
	}
	return 0, false
}
