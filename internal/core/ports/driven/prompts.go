package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptRAGContext answers a question from retrieved context.
	// The template expects {context} and {query} placeholders.
	PromptRAGContext = "rag_context"

	// PromptRAGDirect answers a question with no retrieved context.
	// The template expects a {query} placeholder.
	PromptRAGDirect = "rag_direct"

	// PromptStopWords lists generation stop sequences, one per line.
	// Escape sequences such as \n are interpreted.
	PromptStopWords = "stop_words"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}
