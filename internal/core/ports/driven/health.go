package driven

import "context"

// HealthProbe checks one dependency.
type HealthProbe interface {
	// Name is the key the dependency is reported under.
	Name() string

	// Ping returns nil when the dependency is healthy.
	// Transient network errors are reported as unreachable, other errors as unhealthy.
	Ping(ctx context.Context) error
}
