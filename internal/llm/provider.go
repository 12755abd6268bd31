package llm

import (
	"context"
	"encoding/json"
)

// Provider is the text-generation capability. A single Generate call sends
// a system instruction plus a prompt and returns the model's reply.
type Provider interface {
	// Generate sends the request and returns the reply. When req.Schema is
	// set the provider asks the model for JSON matching it, strips any code
	// fences from the reply, and validates the result before returning.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system instruction.
	System string

	// Messages is the conversation. Curriculum generation sends exactly one
	// user message.
	Messages []Message

	// Schema is the JSON Schema the response must conform to. When nil the
	// response Content is the raw reply text.
	Schema *Schema

	MaxTokens int

	// Temperature controls randomness, 0.0 - 1.0.
	Temperature float64
}

// NewPrompt builds a single-turn request.
func NewPrompt(system, prompt string) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: prompt}},
	}
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies this schema, kebab-case (e.g. "learning-curriculum").
	// Used as the schema name for OpenAI and the cache key for validation.
	Name string

	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the LLM's output.
type Response struct {
	// Content is the reply. With a Schema it is validated JSON.
	Content json.RawMessage

	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is StopEnd or StopMaxTokens.
	StopReason string
}

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// resolveModel maps a short alias to a vendor model ID. Unknown names are
// taken as IDs already.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
