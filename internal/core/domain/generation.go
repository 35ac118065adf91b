package domain

// GenerationResponse is the body returned by an llm service /generate call.
type GenerationResponse struct {
	Response        string  `json:"response"`
	Model           string  `json:"model"`
	TokensGenerated int     `json:"tokens_generated"`
	Temperature     float64 `json:"temperature"`
	MaxTokens       int     `json:"max_tokens"`
}

// ModelInfo describes the model behind an llm service.
type ModelInfo struct {
	ModelName   string `json:"model_name"`
	ModelLoaded bool   `json:"model_loaded"`
}
