package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	assert.NotEmpty(t, string(theme.Primary))
	assert.NotEmpty(t, string(theme.Secondary))
	assert.NotEmpty(t, string(theme.Foreground))
	assert.NotEmpty(t, string(theme.Muted))
	assert.NotEmpty(t, string(theme.Success))
	assert.NotEmpty(t, string(theme.Warning))
	assert.NotEmpty(t, string(theme.Error))
	assert.NotEmpty(t, string(theme.Border))
}

func TestDefaultTheme_AccentsAreDistinct(t *testing.T) {
	theme := DefaultTheme()

	accents := []lipgloss.Color{theme.Primary, theme.Secondary, theme.Success, theme.Warning, theme.Error}

	seen := make(map[string]bool)
	for _, c := range accents {
		assert.False(t, seen[string(c)], "duplicate accent: %s", c)
		seen[string(c)] = true
	}
}

func TestNewStyles_NilTheme(t *testing.T) {
	s := NewStyles(nil)

	require.NotNil(t, s)
	assert.NotNil(t, s.Theme())
}

func TestStyles_Status(t *testing.T) {
	s := DefaultStyles()

	assert.Equal(t, s.Success, s.Status(domain.HealthHealthy))
	assert.Equal(t, s.Warning, s.Status(domain.HealthUnhealthy))
	assert.Equal(t, s.Error, s.Status(domain.HealthUnreachable))
	assert.Equal(t, s.Error, s.Status("bogus"))
}

func TestStyles_Confidence(t *testing.T) {
	s := DefaultStyles()

	assert.Equal(t, s.Success, s.Confidence(domain.ConfidenceWithContext))
	assert.Equal(t, s.Warning, s.Confidence(domain.ConfidenceWithoutContext))
}
