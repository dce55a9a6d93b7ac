package answer

import (
	"context"

	"github.com/bennettck/collections-local-sub001/internal/domain"
)

// Completer sends a prompt to a text generation provider.
type Completer interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error)
}
