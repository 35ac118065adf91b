// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// QueryRequested is a command to answer a question.
type QueryRequested struct {
	Request domain.QueryRequest
}

// QueryCompleted carries an answer back to the model.
type QueryCompleted struct {
	Answer *domain.Answer
	Err    error
}

// HealthRequested is a command to probe every dependency.
type HealthRequested struct{}

// HealthChecked carries a health report back to the model.
type HealthChecked struct {
	Report domain.HealthReport
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewAsk is the question input and answer view.
	ViewAsk
	// ViewHealth shows dependency status.
	ViewHealth
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewAsk:
		return "ask"
	case ViewHealth:
		return "health"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
