package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// HealthService reports the liveness of every dependency.
type HealthService interface {
	// Check probes all dependencies concurrently. It never fails.
	Check(ctx context.Context) domain.HealthReport
}
