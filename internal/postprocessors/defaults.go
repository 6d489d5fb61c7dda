package postprocessors

import (
	"github.com/custodia-labs/lexicon/internal/core/ports/driven"
	"github.com/custodia-labs/lexicon/internal/postprocessors/chunker"
	"github.com/custodia-labs/lexicon/internal/postprocessors/cleaner"
)

// DefaultOrder is the processor chain used for extraction.
var DefaultOrder = []string{"cleaner", "chunker"}

// RegisterDefaults registers all built-in processors with the registry.
func RegisterDefaults(r *Registry) {
	r.Register("cleaner", buildCleaner)
	r.Register("chunker", buildChunker)
}

func buildCleaner(_ map[string]any) (driven.PostProcessor, error) {
	return cleaner.New(), nil
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Characters per chunk (default: 1000)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option
	if _, ok := cfg["chunk_size"]; ok {
		opts = append(opts, chunker.WithChunkSize(getIntFromConfig(cfg, "chunk_size")))
	}
	return chunker.New(opts...)
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Ensure Builder implements the interface.
var _ driven.PipelineBuilder = (*Builder)(nil)

// Builder assembles extraction pipelines from a registry.
type Builder struct {
	registry *Registry
	order    []string
}

// NewBuilder creates a builder over the default processors.
func NewBuilder() *Builder {
	r := NewRegistry()
	RegisterDefaults(r)
	return &Builder{registry: r, order: DefaultOrder}
}

// Build returns a pipeline that chunks at chunkSize characters.
func (b *Builder) Build(chunkSize int) (driven.PostProcessorPipeline, error) {
	cfg := map[string]any{"chunk_size": chunkSize}

	p := NewPipeline()
	for _, name := range b.order {
		proc, err := b.registry.Build(name, cfg)
		if err != nil {
			return nil, err
		}
		p.Add(proc)
	}
	return p, nil
}
