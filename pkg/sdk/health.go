package lexlsh

import (
	"context"

	healthuc "github.com/kailas-cloud/lexlsh/internal/usecase/health"
)

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status     string            // "ok", "degraded", "error"
	Checks     map[string]string // component → "ok"/"error"
	TextSearch bool              // backend ranks with TEXT/BM25
}

// Health checks the database, the fingerprint index and, when the Embedder exposes
// HealthCheck(ctx) error, the embedding provider.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status:     string(report.Status),
		Checks:     checks,
		TextSearch: report.TextSearch,
	}
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
