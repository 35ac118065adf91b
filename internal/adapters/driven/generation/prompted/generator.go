// Package prompted turns an LLMService into a Generator by rendering the
// retrieval prompt templates from a PromptStore.
package prompted

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure Generator implements the interface.
var _ driven.Generator = (*Generator)(nil)

// DefaultTopP is the nucleus sampling mass sent with every request.
const DefaultTopP = 0.9

// DefaultStopWords end generation when no stop_words prompt is available.
var DefaultStopWords = []string{"Question:", "\n\n"}

const (
	fallbackContextPrompt = "Based on the following context, please answer the question.\n\n" +
		"Context:\n{context}\n\nQuestion: {query}\n\nAnswer:"
	fallbackDirectPrompt = "Question: {query}\n\nAnswer:"
)

var escapes = strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\\`, `\`)

// Generator renders prompts and delegates completion to an LLM.
type Generator struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewGenerator creates a Generator. prompts may be nil.
func NewGenerator(llm driven.LLMService, prompts driven.PromptStore) *Generator {
	return &Generator{llm: llm, prompts: prompts}
}

// SetPromptStore replaces the prompt store.
func (g *Generator) SetPromptStore(store driven.PromptStore) {
	g.prompts = store
}

// Generate answers req.Query. An empty context selects the direct prompt.
func (g *Generator) Generate(ctx context.Context, req driven.GenerationRequest) (string, error) {
	prompt := g.Prompt(req.Query, req.Context)
	logger.Debug("generation: %d prompt chars, context=%t", len(prompt), req.Context != "")

	out, err := g.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        DefaultTopP,
		StopWords:   g.StopWords(),
	})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Prompt renders the template for query and contextText.
func (g *Generator) Prompt(query, contextText string) string {
	var tmpl string
	if contextText != "" {
		tmpl = g.load(driven.PromptRAGContext, fallbackContextPrompt)
	} else {
		tmpl = g.load(driven.PromptRAGDirect, fallbackDirectPrompt)
	}
	return strings.NewReplacer("{context}", contextText, "{query}", query).Replace(tmpl)
}

// StopWords returns the configured stop sequences, one per prompt line.
func (g *Generator) StopWords() []string {
	raw := g.load(driven.PromptStopWords, "")
	if raw == "" {
		return DefaultStopWords
	}

	var words []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" && !strings.Contains(line, `\`) {
			continue
		}
		words = append(words, escapes.Replace(line))
	}
	if len(words) == 0 {
		return DefaultStopWords
	}
	return words
}

// ModelName returns the underlying model.
func (g *Generator) ModelName() string {
	return g.llm.ModelName()
}

// Ping checks the underlying LLM.
func (g *Generator) Ping(ctx context.Context) error {
	return g.llm.Ping(ctx)
}

// Close releases the underlying LLM.
func (g *Generator) Close() error {
	return g.llm.Close()
}

func (g *Generator) load(name, fallback string) string {
	if g.prompts == nil {
		return fallback
	}
	tmpl, err := g.prompts.Load(name)
	if err != nil || tmpl == "" {
		return fallback
	}
	return tmpl
}
