package ask

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

type stubQuery struct {
	req    domain.QueryRequest
	answer *domain.Answer
	err    error
}

func (s *stubQuery) Query(_ context.Context, req domain.QueryRequest) (*domain.Answer, error) {
	s.req = req
	return s.answer, s.err
}

func newReadyView(q *stubQuery) *View {
	v := NewView(nil, nil, q)
	v.SetDimensions(100, 40)
	v.Reset()
	return v
}

func typeText(v *View, text string) {
	for _, r := range text {
		v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestNewView_Defaults(t *testing.T) {
	v := NewView(nil, nil, nil)

	docs, web := v.Switches()
	assert.True(t, docs)
	assert.False(t, web)
	assert.True(t, v.InputFocused())
	assert.Equal(t, "Initialising...", v.View())
}

func TestToggleSwitches(t *testing.T) {
	v := newReadyView(&stubQuery{})

	v.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	v.Update(tea.KeyMsg{Type: tea.KeyCtrlW})

	docs, web := v.Switches()
	assert.False(t, docs)
	assert.True(t, web)
	assert.Equal(t, "[docs off | web on]", v.statusbar.Switches())
}

func TestSubmit_SendsSwitches(t *testing.T) {
	q := &stubQuery{answer: &domain.Answer{
		Text:       "Paris is the capital.",
		Method:     domain.MethodWebSearch,
		Confidence: domain.ConfidenceWithContext,
		Sources: []domain.SearchResult{
			{Text: "Paris", Score: 0.5, Source: domain.SourceWeb},
		},
	}}
	v := newReadyView(q)
	v.Update(tea.KeyMsg{Type: tea.KeyCtrlW})
	typeText(v, "capital of France")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, status.StateThinking, v.statusbar.State())

	msg := cmd()
	completed, ok := msg.(messages.QueryCompleted)
	require.True(t, ok)
	v.Update(completed)

	assert.Equal(t, "capital of France", q.req.Query)
	assert.True(t, q.req.UseDocuments)
	assert.True(t, q.req.UseWebSearch)
	assert.Equal(t, domain.DefaultMaxTokens, q.req.MaxTokens)

	assert.False(t, v.InputFocused())
	assert.Equal(t, status.StateAnswered, v.statusbar.State())
	view := v.View()
	assert.Contains(t, view, "Paris is the capital.")
	assert.Contains(t, view, "web_search")
	assert.Contains(t, view, "Sources (1)")
}

func TestSubmit_EmptyQuestionIgnored(t *testing.T) {
	v := newReadyView(&stubQuery{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.True(t, v.InputFocused())
}

func TestQueryError_RefocusesInput(t *testing.T) {
	v := newReadyView(&stubQuery{err: domain.ErrModelUnavailable})
	typeText(v, "hi")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	v.Update(cmd())

	assert.ErrorIs(t, v.Err(), domain.ErrModelUnavailable)
	assert.True(t, v.InputFocused())
	assert.Equal(t, status.StateError, v.statusbar.State())
}

func TestNoQueryService(t *testing.T) {
	v := NewView(nil, nil, nil)
	v.SetDimensions(80, 24)
	typeText(v, "hi")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg, ok := cmd().(messages.ErrorOccurred)
	require.True(t, ok)
	assert.ErrorIs(t, msg.Err, ErrNoQueryService)
}

func TestNewQuestion(t *testing.T) {
	v := newReadyView(&stubQuery{answer: &domain.Answer{Text: "a", Method: domain.MethodDirect}})
	typeText(v, "first")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v.Update(cmd())
	require.False(t, v.InputFocused())

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})

	assert.True(t, v.InputFocused())
	assert.Empty(t, v.input.Value())
}

func TestSourceNavigation(t *testing.T) {
	v := newReadyView(&stubQuery{answer: &domain.Answer{
		Method: domain.MethodDocument,
		Sources: []domain.SearchResult{
			{Text: "one"}, {Text: "two"},
		},
	}})
	typeText(v, "q")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v.Update(cmd())

	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, v.sources.Selected())

	v.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, v.sources.Selected())
}

func TestEsc_ReturnsToMenu(t *testing.T) {
	v := newReadyView(&stubQuery{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)

	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}
