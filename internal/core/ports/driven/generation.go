package driven

import "context"

// Generator answers a question given retrieved context.
// It is the generation collaborator the response composer calls.
type Generator interface {
	// Generate returns the answer text for query conditioned on contextText.
	// An empty contextText asks for a direct answer.
	Generate(ctx context.Context, req GenerationRequest) (string, error)

	// ModelName returns the model that answers.
	ModelName() string

	// Ping validates the generator is reachable and ready.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerationRequest is the wire-level generation contract.
type GenerationRequest struct {
	Query       string  `json:"query"`
	Context     string  `json:"context"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}
