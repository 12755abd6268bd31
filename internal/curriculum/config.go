package curriculum

import (
	"fmt"
	"os"

	"github.com/abhisek/learnpath/internal/llm"
	"github.com/abhisek/learnpath/internal/logger"
)

// Generator modes.
const (
	ModeLLM  = "llm"
	ModeMock = "mock"
)

// Config controls curriculum generation.
type Config struct {
	// Mode selects the generator: "llm" or "mock".
	Mode string

	// MaxTokens is the token budget for the reply.
	MaxTokens int

	// Temperature controls output randomness (0.0-1.0).
	Temperature float64
}

// DefaultConfig returns the recommended settings.
func DefaultConfig() Config {
	return Config{
		Mode:        ModeLLM,
		MaxTokens:   4000,
		Temperature: 0.7,
	}
}

// ConfigFromEnv reads LEARNPATH_GENERATOR over the defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if m := os.Getenv("LEARNPATH_GENERATOR"); m != "" {
		cfg.Mode = m
	}
	return cfg
}

// New builds the configured Generator. provider may be nil in mock mode.
func New(cfg Config, provider llm.Provider, log *logger.Logger) (Generator, error) {
	switch cfg.Mode {
	case ModeMock:
		return NewMock(), nil
	case ModeLLM:
		if provider == nil {
			return nil, fmt.Errorf("curriculum: %s mode needs an LLM provider", ModeLLM)
		}
		return NewLLM(provider, cfg, log), nil
	default:
		return nil, fmt.Errorf("curriculum: unknown generator mode %q", cfg.Mode)
	}
}
