package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrMissingQueryService_Message(t *testing.T) {
	assert.Contains(t, ErrMissingQueryService.Error(), "query service")
}
