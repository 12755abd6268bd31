package llm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider names accepted by Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Response formats for OpenAI-compatible endpoints.
const (
	// FormatJSONSchema asks for strict schema-constrained output.
	FormatJSONSchema = "json_schema"
	// FormatJSONObject asks only for a JSON object; the schema is checked
	// locally. Most OpenRouter-hosted models support nothing stricter.
	FormatJSONObject = "json_object"
	// FormatText sends no response_format at all.
	FormatText = "text"
)

// Config selects and configures the curriculum model.
type Config struct {
	// Provider is one of the Provider* names.
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single Generate call including retries. Expiry is
	// reported as ErrTimeout.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string

	// ResponseFormat is FormatJSONSchema, FormatJSONObject or FormatText.
	// Empty means FormatJSONSchema.
	ResponseFormat string

	// Headers are added to every request.
	Headers map[string]string
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenRouterConfig configures the OpenRouter gateway. SiteURL and AppName
// are sent as attribution headers.
type OpenRouterConfig struct {
	APIKey         string
	Model          string
	BaseURL        string
	ResponseFormat string
	SiteURL        string
	AppName        string
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns the settings used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Provider:  ProviderOpenAI,
		Anthropic: AnthropicConfig{Model: "claude-haiku"},
		OpenAI: OpenAIConfig{
			Model:          "gpt-4o-mini",
			ResponseFormat: FormatJSONSchema,
		},
		Gemini: GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{
			Model:          "google/gemini-2.0-flash-exp",
			ResponseFormat: FormatJSONObject,
			AppName:        "learnpath",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 90 * time.Second,
	}
}

// ConfigFromEnv overlays LEARNPATH_* environment variables on the defaults.
// Unparseable numeric values are ignored.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	bindings := []struct {
		key string
		dst *string
	}{
		{"LEARNPATH_LLM_PROVIDER", &cfg.Provider},
		{"LEARNPATH_ANTHROPIC_API_KEY", &cfg.Anthropic.APIKey},
		{"LEARNPATH_ANTHROPIC_MODEL", &cfg.Anthropic.Model},
		{"LEARNPATH_ANTHROPIC_BASE_URL", &cfg.Anthropic.BaseURL},
		{"LEARNPATH_OPENAI_API_KEY", &cfg.OpenAI.APIKey},
		{"LEARNPATH_OPENAI_MODEL", &cfg.OpenAI.Model},
		{"LEARNPATH_OPENAI_BASE_URL", &cfg.OpenAI.BaseURL},
		{"LEARNPATH_OPENAI_RESPONSE_FORMAT", &cfg.OpenAI.ResponseFormat},
		{"LEARNPATH_GEMINI_API_KEY", &cfg.Gemini.APIKey},
		{"LEARNPATH_GEMINI_MODEL", &cfg.Gemini.Model},
		{"LEARNPATH_GEMINI_BASE_URL", &cfg.Gemini.BaseURL},
		{"LEARNPATH_OPENROUTER_API_KEY", &cfg.OpenRouter.APIKey},
		{"LEARNPATH_OPENROUTER_MODEL", &cfg.OpenRouter.Model},
		{"LEARNPATH_OPENROUTER_RESPONSE_FORMAT", &cfg.OpenRouter.ResponseFormat},
		{"LEARNPATH_OPENROUTER_SITE_URL", &cfg.OpenRouter.SiteURL},
	}
	for _, b := range bindings {
		if v := os.Getenv(b.key); v != "" {
			*b.dst = v
		}
	}

	if d, err := time.ParseDuration(os.Getenv("LEARNPATH_LLM_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
	if n, err := strconv.Atoi(os.Getenv("LEARNPATH_LLM_MAX_ATTEMPTS")); err == nil && n > 0 {
		cfg.Retry.MaxAttempts = n
	}
	return cfg
}

// vendorKeys lists the vendors' own API key variables in discovery order.
var vendorKeys = []struct {
	env      string
	provider string
}{
	{"OPENAI_API_KEY", ProviderOpenAI},
	{"ANTHROPIC_API_KEY", ProviderAnthropic},
	{"GEMINI_API_KEY", ProviderGemini},
	{"OPENROUTER_API_KEY", ProviderOpenRouter},
}

// DiscoverConfig returns a default Config for the first provider whose
// vendor key variable (OPENAI_API_KEY, ANTHROPIC_API_KEY, ...) is set.
func DiscoverConfig() (Config, bool) {
	for _, v := range vendorKeys {
		key := os.Getenv(v.env)
		if key == "" {
			continue
		}
		cfg := DefaultConfig()
		cfg.Provider = v.provider
		*cfg.apiKey(v.provider) = key
		return cfg, true
	}
	return Config{}, false
}

// apiKey points at the key field of the named provider, or nil.
func (c *Config) apiKey(provider string) *string {
	switch provider {
	case ProviderAnthropic:
		return &c.Anthropic.APIKey
	case ProviderOpenAI:
		return &c.OpenAI.APIKey
	case ProviderGemini:
		return &c.Gemini.APIKey
	case ProviderOpenRouter:
		return &c.OpenRouter.APIKey
	}
	return nil
}

// Validate reports a missing API key or an unknown provider or format.
func (c Config) Validate() error {
	if c.Provider == ProviderMock {
		return nil
	}
	key := c.apiKey(c.Provider)
	if key == nil {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if *key == "" {
		return fmt.Errorf("LEARNPATH_%s_API_KEY is required for the %s provider",
			strings.ToUpper(c.Provider), c.Provider)
	}
	for _, f := range []string{c.OpenAI.ResponseFormat, c.OpenRouter.ResponseFormat} {
		switch f {
		case "", FormatJSONSchema, FormatJSONObject, FormatText:
		default:
			return fmt.Errorf("unknown response format %q", f)
		}
	}
	return nil
}
