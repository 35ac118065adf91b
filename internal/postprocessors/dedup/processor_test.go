package dedup

import (
	"context"
	"testing"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestProcessor_Name(t *testing.T) {
	if New().Name() != "dedup" {
		t.Errorf("expected name 'dedup', got '%s'", New().Name())
	}
}

func TestProcessor_Process_DropsRepeats(t *testing.T) {
	chunks := []domain.Chunk{
		{Text: "alpha", SequenceIndex: 0},
		{Text: "beta", SequenceIndex: 1},
		{Text: "alpha", SequenceIndex: 2},
		{Text: "gamma", SequenceIndex: 3},
	}

	out, err := New().Process(context.Background(), &domain.Document{}, chunks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(out))
	}
	want := []string{"alpha", "beta", "gamma"}
	for i, c := range out {
		if c.Text != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], c.Text)
		}
		if c.SequenceIndex != i {
			t.Errorf("chunk %d: expected sequence index %d, got %d", i, i, c.SequenceIndex)
		}
	}
}

func TestProcessor_Process_Empty(t *testing.T) {
	out, err := New().Process(context.Background(), &domain.Document{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected no chunks, got %d", len(out))
	}
}
