package llm

import (
	"context"
	"fmt"
	"net/http"

	"rafeyshell/internal/config"
)

// ProviderConfig holds the resolved backend selection.
type ProviderConfig struct {
	Provider   string // gemini, openai, proxy
	APIKey     string // gemini or openai key, proxy bearer token
	Model      string // optional override
	Endpoint   string // proxy URL, or base URL override for SDK backends
	HTTPClient *http.Client
}

// ProviderFromConfig resolves the provider, credential and model from the
// user config. A non-empty modelOverride (the --model flag) wins.
func ProviderFromConfig(cfg *config.UserConfig, modelOverride string) ProviderConfig {
	provider, credential := cfg.GetActiveProvider()
	pc := ProviderConfig{
		Provider: provider,
		APIKey:   credential,
		Model:    cfg.GetModel(provider),
	}
	if modelOverride != "" {
		pc.Model = modelOverride
	}
	if provider == config.ProviderProxy {
		pc.Endpoint = cfg.ProxyURL
	}
	return pc
}

// NewClient creates the Client for cfg. Missing credentials are not an
// error here; they surface as ErrConfigurationMissing on the first query.
func NewClient(ctx context.Context, cfg ProviderConfig) (Client, error) {
	switch cfg.Provider {
	case config.ProviderGemini, "":
		return NewGeminiClient(ctx, GeminiConfig{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			BaseURL:    cfg.Endpoint,
			HTTPClient: cfg.HTTPClient,
		})

	case config.ProviderOpenAI:
		return NewOpenAIClient(OpenAIConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.Endpoint,
		}), nil

	case config.ProviderProxy:
		return NewProxyClient(ProxyConfig{
			Endpoint:   cfg.Endpoint,
			Token:      cfg.APIKey,
			HTTPClient: cfg.HTTPClient,
		}), nil

	default:
		return nil, fmt.Errorf("unknown provider: %s (valid: gemini, openai, proxy)", cfg.Provider)
	}
}
