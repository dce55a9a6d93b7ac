package health

import "context"

// SourcePinger checks metadata source availability.
type SourcePinger interface {
	Ping(ctx context.Context) error
}

// IndexChecker reports whether a snapshot is published.
type IndexChecker interface {
	Loaded() bool
}

// CompletionChecker checks text generation provider availability.
type CompletionChecker interface {
	HealthCheck(ctx context.Context) error
}
