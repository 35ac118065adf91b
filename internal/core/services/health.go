package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure HealthAggregator implements the interface.
var _ driving.HealthService = (*HealthAggregator)(nil)

// DefaultProbeTimeout is the per-dependency health deadline.
const DefaultProbeTimeout = 5 * time.Second

// HealthAggregator probes every dependency concurrently.
// A slow or failing probe never affects the others.
type HealthAggregator struct {
	probes  []driven.HealthProbe
	timeout time.Duration
}

// NewHealthAggregator creates an aggregator over probes.
func NewHealthAggregator(timeout time.Duration, probes ...driven.HealthProbe) *HealthAggregator {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &HealthAggregator{
		probes:  probes,
		timeout: timeout,
	}
}

// Add registers another probe.
func (h *HealthAggregator) Add(probe driven.HealthProbe) {
	h.probes = append(h.probes, probe)
}

// Check returns the status of every dependency plus the gateway itself.
// Probes are never retried.
func (h *HealthAggregator) Check(ctx context.Context) domain.HealthReport {
	report := domain.HealthReport{domain.GatewayServiceName: domain.HealthHealthy}

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, probe := range h.probes {
		wg.Add(1)
		go func(p driven.HealthProbe) {
			defer wg.Done()
			status := h.probe(ctx, p)

			mu.Lock()
			report[p.Name()] = status
			mu.Unlock()
		}(probe)
	}

	wg.Wait()
	return report
}

// probe runs one probe under its own deadline.
func (h *HealthAggregator) probe(ctx context.Context, p driven.HealthProbe) domain.HealthStatus {
	probeCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- p.Ping(probeCtx)
	}()

	select {
	case err := <-done:
		return classifyProbe(p.Name(), err)
	case <-probeCtx.Done():
		logger.Warn("Health probe %s: %v", p.Name(), probeCtx.Err())
		return domain.HealthUnreachable
	}
}

// classifyProbe maps a probe error to a status.
func classifyProbe(name string, err error) domain.HealthStatus {
	if err == nil {
		return domain.HealthHealthy
	}
	logger.Warn("Health probe %s: %v", name, err)

	err = domain.ClassifyTransportError(name, err)
	if domain.IsTransient(err) || errors.Is(err, context.Canceled) {
		return domain.HealthUnreachable
	}
	return domain.HealthUnhealthy
}
