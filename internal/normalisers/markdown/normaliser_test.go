package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

const guide = "---\ntitle: Guide\n---\n" +
	"# Guide\n\n" +
	"Some **bold** and *italic* text with a [link](http://example.com) and `code`.\n\n" +
	"- first\n- second\n\n" +
	"```go\nfmt.Println(\"hi\")\n```\n"

func TestNormaliser_Metadata(t *testing.T) {
	n := New()

	assert.Equal(t, []string{"text/markdown", "text/x-markdown"}, n.SupportedMIMETypes())
	assert.Equal(t, 50, n.Priority())
}

func TestNormalise(t *testing.T) {
	doc, err := New().Normalise(context.Background(), &domain.RawDocument{
		Name:     "guide.md",
		MIMEType: "text/markdown",
		Content:  []byte(guide),
	})

	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "guide.md", doc.Name)
	assert.Contains(t, doc.Content, "Guide")
	assert.Contains(t, doc.Content, "Some bold and italic text with a link and code.")
	assert.Contains(t, doc.Content, "first\nsecond")
	assert.Contains(t, doc.Content, `fmt.Println("hi")`)
	for _, syntax := range []string{"**", "](", "```", "title: Guide", "# "} {
		assert.NotContains(t, doc.Content, syntax)
	}
}

func TestNormalise_Nil(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"heading", "## Setup", "Setup"},
		{"image keeps alt text", "![diagram](img.png)", "diagram"},
		{"blockquote", "> quoted", "quoted"},
		{"numbered list", "1. one\n2. two", "one\ntwo"},
		{"underscore emphasis", "an _important_ note", "an important note"},
		{"identifiers untouched", "call snake_case_name now", "call snake_case_name now"},
		{"horizontal rule", "above\n\n---\n\nbelow", "above\n\nbelow"},
		{"inline html", "line<br/>", "line"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Strip(tt.in))
		})
	}
}
