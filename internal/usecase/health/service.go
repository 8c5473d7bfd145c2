package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
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

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Checked components.
const (
	CheckIndex = "index"
	CheckQueue = "queue"
)

// Service coordinates health checks.
type Service struct {
	index Pinger
	queue Pinger
}

// New creates a Service. queue can be nil when no sync queue is configured.
func New(index, queue Pinger) *Service {
	return &Service{index: index, queue: queue}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks[CheckIndex] = ping(ctx, s.index)
	if s.queue != nil {
		checks[CheckQueue] = ping(ctx, s.queue)
	}

	status := Healthy
	switch {
	case checks[CheckIndex] == CheckError && (s.queue == nil || checks[CheckQueue] == CheckError):
		status = Unhealthy
	case checks[CheckIndex] == CheckError || checks[CheckQueue] == CheckError:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}

func ping(ctx context.Context, p Pinger) CheckResult {
	if err := p.Ping(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
