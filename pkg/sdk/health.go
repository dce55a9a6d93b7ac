package collections

import (
	"context"

	healthuc "github.com/bennettck/collections-local-sub001/internal/usecase/health"
)

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// HealthStatus is the aggregated state of the metadata source, the index and,
// when a Completer is configured, the completion provider.
type HealthStatus struct {
	Status string            // "ok" or "degraded"
	Checks map[string]string // "source", "index", "completion": "ok" or "error"
}

// OK reports whether every component passed.
func (h HealthStatus) OK() bool { return h.Status == string(healthuc.Healthy) }

// Health runs all component checks.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for name, res := range report.Checks {
		checks[name] = string(res)
	}
	return HealthStatus{Status: string(report.Status), Checks: checks}
}
