package postprocessors

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/core/ports/driven"
)

func TestRegistry_RegisterAndBuild(t *testing.T) {
	r := NewRegistry()
	r.Register("test", func(_ map[string]any) (driven.PostProcessor, error) {
		return &mockProcessor{name: "test"}, nil
	})

	if !r.Has("test") {
		t.Fatal("expected 'test' to be registered")
	}
	proc, err := r.Build("test", nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if proc.Name() != "test" {
		t.Errorf("expected name 'test', got %q", proc.Name())
	}
}

func TestRegistry_Build_UnknownProcessor(t *testing.T) {
	_, err := NewRegistry().Build("missing", nil)
	if err == nil || !strings.Contains(err.Error(), "unknown processor") {
		t.Errorf("expected unknown processor error, got %v", err)
	}
}

func TestRegisterDefaults(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	names := r.Names()
	if len(names) != 2 || names[0] != "chunker" || names[1] != "cleaner" {
		t.Errorf("expected [chunker cleaner], got %v", names)
	}
}

func TestBuildChunker_RejectsZeroSize(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	_, err := r.Build("chunker", map[string]any{"chunk_size": 0})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestBuilder_CleansThenChunks(t *testing.T) {
	pipeline, err := NewBuilder().Build(4)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	doc := &domain.ExtractedDocument{Name: "note", Content: "ab   cd\x00ef"}
	chunks, err := pipeline.Process(context.Background(), doc)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	// cleaned text is "ab cdef"
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Text != "ab c" || chunks[1].Text != "def" {
		t.Errorf("unexpected chunks: %q %q", chunks[0].Text, chunks[1].Text)
	}
	if chunks[1].Index != 1 || chunks[1].DocumentName != "note" {
		t.Errorf("unexpected chunk identity: %+v", chunks[1])
	}
}

func TestGetIntFromConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      map[string]any
		key      string
		expected int
	}{
		{"int value", map[string]any{"size": 100}, "size", 100},
		{"int64 value", map[string]any{"size": int64(200)}, "size", 200},
		{"float64 value", map[string]any{"size": float64(300)}, "size", 300},
		{"string value", map[string]any{"size": "400"}, "size", 0},
		{"missing key", map[string]any{"other": 100}, "size", 0},
		{"nil config", nil, "size", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getIntFromConfig(tt.cfg, tt.key); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}
