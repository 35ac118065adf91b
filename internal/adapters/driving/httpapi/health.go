package httpapi

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// roleHealth is the /health body of the document, llm and web search roles.
type roleHealth struct {
	Status       domain.HealthStatus `json:"status"`
	Model        string              `json:"model,omitempty"`
	Dependencies domain.HealthReport `json:"dependencies,omitempty"`
}

// checkRole reports healthy only when every dependency of the role is.
func checkRole(ctx context.Context, h driving.HealthService) roleHealth {
	out := roleHealth{Status: domain.HealthHealthy}
	if h == nil {
		return out
	}

	report := h.Check(ctx)
	delete(report, domain.GatewayServiceName)
	if len(report) > 0 {
		out.Dependencies = report
	}
	if !report.AllHealthy() {
		out.Status = domain.HealthUnhealthy
	}
	return out
}
