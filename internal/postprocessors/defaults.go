package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors/chunker"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors/dedup"
)

// Built-in processor names.
const (
	ChunkerName = "chunker"
	DedupName   = "dedup"
)

// RegisterDefaults registers the built-in processors.
func RegisterDefaults(r *Registry) {
	r.Register(ChunkerName, buildChunker)
	r.Register(DedupName, func(map[string]any) (driven.PostProcessor, error) {
		return dedup.New(), nil
	})
}

// BuildPipeline builds cfg from the built-in processors.
func BuildPipeline(cfg domain.PipelineConfig) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)
	return r.Pipeline(cfg)
}

// buildChunker reads chunk_size (default 1000) and min_length (default 50).
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option
	for key, opt := range map[string]func(int) chunker.Option{
		"chunk_size": chunker.WithChunkSize,
		"min_length": chunker.WithMinLength,
	} {
		if raw, ok := cfg[key]; ok {
			n, err := intValue(raw)
			if err != nil {
				return nil, domain.ConfigurationError("chunker %s: %v", key, err)
			}
			opts = append(opts, opt(n))
		}
	}
	return chunker.New(opts...)
}

// intValue accepts the integer shapes TOML, YAML and JSON decoding produce.
func intValue(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("%v is not a whole number", n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}
