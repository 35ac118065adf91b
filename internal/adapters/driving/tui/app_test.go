package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func newTestApp(t *testing.T, query *MockQueryService) *App {
	t.Helper()
	if query == nil {
		query = &MockQueryService{}
	}
	health := &MockHealthService{Report: domain.HealthReport{
		domain.GatewayServiceName: domain.HealthHealthy,
		"llm-service":             domain.HealthUnreachable,
	}}

	app, err := NewApp(NewPorts(query, health))
	require.NoError(t, err)
	return app
}

// typeText sends each rune as a key press.
func typeText(app *App, text string) {
	for _, r := range text {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestNewApp_StartsAtMenu(t *testing.T) {
	app := newTestApp(t, nil)

	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	assert.False(t, app.Ready())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(NewPorts(nil, nil))

	assert.ErrorIs(t, err, ErrMissingQueryService)
	assert.Nil(t, app)

	app, err = NewApp(nil)
	assert.ErrorIs(t, err, ErrMissingQueryService)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	app := newTestApp(t, nil)

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	assert.Same(t, app, app.WithContext(ctx))
	assert.Equal(t, ctx, app.ctx)
}

func TestApp_Init(t *testing.T) {
	app := newTestApp(t, nil)

	assert.NotNil(t, app.Init())
}

func TestApp_View_NotReady(t *testing.T) {
	app := newTestApp(t, nil)

	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_Update_WindowSize(t *testing.T) {
	app := newTestApp(t, nil)

	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	assert.True(t, app.Ready())
	assert.Contains(t, app.View(), "Ask a question")
}

func TestApp_Update_CtrlC(t *testing.T) {
	app := newTestApp(t, nil)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_Update_Quit(t *testing.T) {
	app := newTestApp(t, nil)

	_, cmd := app.Update(messages.Quit{})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_AskFlow(t *testing.T) {
	var got domain.QueryRequest
	query := &MockQueryService{
		QueryFunc: func(_ context.Context, req domain.QueryRequest) (*domain.Answer, error) {
			got = req
			return &domain.Answer{
				Text:       "Paris.",
				Method:     domain.MethodDocument,
				Confidence: domain.ConfidenceWithContext,
				Sources: []domain.SearchResult{
					{Text: "Paris is the capital of France.", Score: 1, Source: domain.SourceDocument},
				},
			}, nil
		},
	}
	app := newTestApp(t, query)
	app.SetDimensions(100, 40)
	app.Update(messages.ViewChanged{View: messages.ViewAsk})
	require.Equal(t, messages.ViewAsk, app.CurrentView())

	typeText(app, "capital?")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	app.Update(cmd())

	assert.Equal(t, "capital?", got.Query)
	assert.True(t, got.UseDocuments)
	assert.False(t, got.UseWebSearch)
	require.NotNil(t, app.Answer())
	assert.Equal(t, "Paris.", app.Answer().Text)
	assert.NoError(t, app.Err())

	view := app.View()
	assert.Contains(t, view, "Paris.")
	assert.Contains(t, view, "document")
	assert.Contains(t, view, "0.80")
}

func TestApp_AskFlow_Error(t *testing.T) {
	query := &MockQueryService{
		QueryFunc: func(context.Context, domain.QueryRequest) (*domain.Answer, error) {
			return nil, domain.ErrModelUnavailable
		},
	}
	app := newTestApp(t, query)
	app.SetDimensions(100, 40)
	app.Update(messages.ViewChanged{View: messages.ViewAsk})

	typeText(app, "q")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.ErrorIs(t, app.Err(), domain.ErrModelUnavailable)
	assert.Nil(t, app.Answer())
	assert.Contains(t, app.View(), "Error:")
}

func TestApp_EscFromAskReturnsToMenu(t *testing.T) {
	app := newTestApp(t, nil)
	app.SetDimensions(80, 24)
	app.Update(messages.ViewChanged{View: messages.ViewAsk})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_HealthView(t *testing.T) {
	app := newTestApp(t, nil)
	app.SetDimensions(80, 24)

	_, cmd := app.Update(messages.ViewChanged{View: messages.ViewHealth})
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.Equal(t, messages.ViewHealth, app.CurrentView())
	assert.Equal(t, domain.HealthUnreachable, app.HealthReport()["llm-service"])
	view := app.View()
	assert.Contains(t, view, "gateway")
	assert.Contains(t, view, "unreachable")
}

func TestApp_HealthRequested(t *testing.T) {
	app := newTestApp(t, nil)
	app.SetDimensions(80, 24)

	_, cmd := app.Update(messages.HealthRequested{})
	require.NotNil(t, cmd)

	msg, ok := cmd().(messages.HealthChecked)
	require.True(t, ok)
	assert.Len(t, msg.Report, 2)
}

func TestApp_HelpView(t *testing.T) {
	app := newTestApp(t, nil)
	app.SetDimensions(80, 24)
	app.Update(messages.ViewChanged{View: messages.ViewHelp})

	out := app.View()
	assert.Contains(t, out, "Help")
	assert.Contains(t, out, "ctrl+w")
	assert.Contains(t, out, "web")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_ErrorOccurred(t *testing.T) {
	app := newTestApp(t, nil)
	wantErr := errors.New("boom")

	app.Update(messages.ErrorOccurred{Err: wantErr})

	assert.Equal(t, wantErr, app.Err())
}
