package health

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates the database is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names in Report.Checks.
const (
	ComponentDatabase  = "database"
	ComponentIndex     = "index"
	ComponentEmbedding = "embedding"
)

// Report aggregates health check results.
type Report struct {
	Status     Status
	Checks     map[string]CheckResult
	TextSearch bool
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	index     IndexChecker
	indexName string
	embedding EmbeddingChecker
}

// New creates a Service. index and embedding can be nil.
func New(db DBPinger, index IndexChecker, indexName string, embedding EmbeddingChecker) *Service {
	return &Service{db: db, index: index, indexName: indexName, embedding: embedding}
}

// Check runs all component checks concurrently. A failing database makes the
// service unhealthy; any other failure degrades it.
func (s *Service) Check(ctx context.Context) Report {
	var (
		mu     sync.Mutex
		checks = make(map[string]CheckResult)
	)
	record := func(name string, ok bool) {
		mu.Lock()
		defer mu.Unlock()
		if ok {
			checks[name] = CheckOK
		} else {
			checks[name] = CheckError
		}
	}

	var g errgroup.Group
	g.Go(func() error {
		record(ComponentDatabase, s.db.Ping(ctx) == nil)
		return nil
	})
	if s.index != nil {
		g.Go(func() error {
			exists, err := s.index.IndexExists(ctx, s.indexName)
			record(ComponentIndex, err == nil && exists)
			return nil
		})
	}
	if s.embedding != nil {
		g.Go(func() error {
			record(ComponentEmbedding, s.embedding.HealthCheck(ctx) == nil)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Status: Healthy, Checks: checks}
	if s.index != nil {
		report.TextSearch = s.index.SupportsTextSearch(ctx)
	}
	for name, v := range checks {
		if v != CheckError {
			continue
		}
		if name == ComponentDatabase {
			report.Status = Unhealthy
			break
		}
		report.Status = Degraded
	}
	return report
}
