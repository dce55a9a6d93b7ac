package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names reported in Report.Checks.
const (
	CheckSource     = "source"
	CheckIndex      = "index"
	CheckCompletion = "completion"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	source     SourcePinger
	index      IndexChecker
	completion CompletionChecker
}

// New creates a Service. completion can be nil.
func New(source SourcePinger, index IndexChecker, completion CompletionChecker) *Service {
	return &Service{source: source, index: index, completion: completion}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.source.Ping(ctx); err != nil {
		checks[CheckSource] = CheckError
	} else {
		checks[CheckSource] = CheckOK
	}

	if s.index.Loaded() {
		checks[CheckIndex] = CheckOK
	} else {
		checks[CheckIndex] = CheckError
	}

	if s.completion != nil {
		if err := s.completion.HealthCheck(ctx); err != nil {
			checks[CheckCompletion] = CheckError
		} else {
			checks[CheckCompletion] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
