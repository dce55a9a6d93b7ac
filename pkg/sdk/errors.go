package collections

import "github.com/bennettck/collections-local-sub001/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound          = domain.ErrNotFound
	ErrInvalidRequest    = domain.ErrInvalidRequest
	ErrIndexUnavailable  = domain.ErrIndexUnavailable
	ErrRebuildInProgress = domain.ErrRebuildInProgress
	ErrSourceUnavailable = domain.ErrSourceUnavailable
	ErrSynthesisFailure  = domain.ErrSynthesisFailure
)
