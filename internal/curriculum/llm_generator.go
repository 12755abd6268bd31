package curriculum

import (
	"context"
	"errors"

	"github.com/abhisek/learnpath/internal/apperr"
	"github.com/abhisek/learnpath/internal/llm"
	"github.com/abhisek/learnpath/internal/logger"
	"github.com/abhisek/learnpath/internal/store"
)

const textGenerationService = "text-generation"

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
	log      *logger.Logger
}

// NewLLM creates a new LLMGenerator with the given provider and config.
func NewLLM(provider llm.Provider, cfg Config, log *logger.Logger) *LLMGenerator {
	if log == nil {
		log = logger.Nop()
	}
	return &LLMGenerator{provider: provider, config: cfg, log: log}
}

// Generate asks the provider for a curriculum and parses the reply.
func (g *LLMGenerator) Generate(ctx context.Context, p *store.Profile) (*Curriculum, error) {
	ctx = llm.WithUser(llm.WithPurpose(ctx, llm.PurposeCurriculum), p.UserID)

	req := llm.NewPrompt(systemPrompt, buildPrompt(p))
	req.Schema = CurriculumSchema
	req.MaxTokens = g.config.MaxTokens
	req.Temperature = g.config.Temperature

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		err = classifyProviderError(err)
		g.log.Warn("curriculum generation failed", "user", p.UserID, "kind", apperr.Kind(err), "error", err)
		return nil, err
	}

	c, err := Parse(string(resp.Content))
	if err != nil {
		var genErr *apperr.GenerationError
		if resp.StopReason == llm.StopMaxTokens && errors.As(err, &genErr) {
			genErr.Reason = "reply truncated at the token limit"
		}
		g.log.Warn("curriculum reply rejected", "user", p.UserID, "error", err)
		return nil, err
	}

	g.log.Info("curriculum generated", "user", p.UserID, "model", resp.Model,
		"milestones", len(c.Milestones), "modules", c.ModuleCount())
	return c, nil
}

// classifyProviderError separates "the model replied badly" from "the model
// never replied".
func classifyProviderError(err error) error {
	var (
		invalid *llm.ErrInvalidResponse
		maxTok  *llm.ErrMaxTokensExceeded
		timeout *llm.ErrTimeout
	)
	switch {
	case errors.As(err, &invalid):
		return &apperr.GenerationError{Reason: "reply does not match the curriculum schema", Content: string(invalid.Content), Err: err}
	case errors.As(err, &maxTok):
		return &apperr.GenerationError{Reason: "reply truncated at the token limit", Content: string(maxTok.Content), Err: err}
	case errors.As(err, &timeout), errors.Is(err, context.DeadlineExceeded):
		return &apperr.ExternalServiceError{Service: textGenerationService, Timeout: true, Err: err}
	default:
		return &apperr.ExternalServiceError{Service: textGenerationService, Err: err}
	}
}
