// Package health provides the dependency health view for the TUI.
package health

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// View shows the status of every dependency.
type View struct {
	styles  *styles.Styles
	health  driving.HealthService
	ctx     context.Context
	report  domain.HealthReport
	loading bool
	width   int
	height  int
	ready   bool
}

// NewView creates a new health view. A nil service renders an empty report.
func NewView(s *styles.Styles, health driving.HealthService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		health: health,
		ctx:    context.Background(),
		width:  80,
		height: 24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Refresh starts a health check.
func (v *View) Refresh() tea.Cmd {
	v.loading = true
	return func() tea.Msg {
		if v.health == nil {
			return messages.HealthChecked{Report: domain.HealthReport{}}
		}
		return messages.HealthChecked{Report: v.health.Check(v.ctx)}
	}
}

// Update handles messages for the health view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.HealthChecked:
		v.loading = false
		v.report = msg.Report
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		case "r":
			return v, v.Refresh()
		}
	}
	return v, nil
}

// View renders the report, one dependency per line in name order.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Health"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Checking..."))
	case len(v.report) == 0:
		b.WriteString(v.styles.Muted.Render("No dependencies checked"))
	default:
		names := make([]string, 0, len(v.report))
		width := 0
		for name := range v.report {
			names = append(names, name)
			width = max(width, len(name))
		}
		sort.Strings(names)

		for _, name := range names {
			status := v.report[name]
			b.WriteString(fmt.Sprintf("  %-*s  ", width, name))
			b.WriteString(v.styles.Status(status).Render(string(status)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[r] Refresh  [Esc] Back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Report returns the last report.
func (v *View) Report() domain.HealthReport {
	return v.report
}

// Loading reports whether a check is in flight.
func (v *View) Loading() bool {
	return v.loading
}
