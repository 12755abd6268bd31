package llm

import "errors"

const openRouterURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider is an OpenAIProvider aimed at the OpenRouter gateway.
// Model names are passed through as vendor/model IDs.
type OpenRouterProvider struct {
	*OpenAIProvider
}

func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter API key is required")
	}

	inner, err := NewOpenAIProvider(OpenAIConfig{
		APIKey:         cfg.APIKey,
		Model:          cfg.Model,
		BaseURL:        firstNonEmpty(cfg.BaseURL, openRouterURL),
		ResponseFormat: firstNonEmpty(cfg.ResponseFormat, FormatJSONObject),
		Headers:        openRouterHeaders(cfg),
	})
	if err != nil {
		return nil, err
	}
	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}

// openRouterHeaders builds the app attribution headers OpenRouter reads.
func openRouterHeaders(cfg OpenRouterConfig) map[string]string {
	h := map[string]string{}
	if cfg.SiteURL != "" {
		h["HTTP-Referer"] = cfg.SiteURL
	}
	if cfg.AppName != "" {
		h["X-Title"] = cfg.AppName
	}
	return h
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
