// Package tui provides an interactive terminal user interface for sercha-rag.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Query answers questions (required).
	Query driving.QueryService

	// Health reports dependency status. The health view is empty without it.
	Health driving.HealthService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(query driving.QueryService, health driving.HealthService) *Ports {
	return &Ports{
		Query:  query,
		Health: health,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
