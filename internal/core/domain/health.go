package domain

// HealthStatus is the liveness state of a dependency.
type HealthStatus string

// Health statuses.
const (
	HealthHealthy     HealthStatus = "healthy"
	HealthUnhealthy   HealthStatus = "unhealthy"
	HealthUnreachable HealthStatus = "unreachable"
)

// GatewayServiceName is the report key for the process answering the check.
const GatewayServiceName = "gateway"

// HealthReport maps a service name to its status.
type HealthReport map[string]HealthStatus

// AllHealthy reports whether every service in the report is healthy.
func (r HealthReport) AllHealthy() bool {
	for _, s := range r {
		if s != HealthHealthy {
			return false
		}
	}
	return true
}
