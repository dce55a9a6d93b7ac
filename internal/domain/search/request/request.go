package request

import (
	"math"
	"strings"

	"github.com/bennettck/collections-local-sub001/internal/domain"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	DefaultTopK    = 10
	MaxTopK        = 100
	// DefaultMinRelevanceScore lets essentially every real match through.
	DefaultMinRelevanceScore = -1.0
	MaxCategoryLength        = 256
)

// Request is a validated search query.
type Request struct {
	query             string
	topK              int
	category          string
	minRelevanceScore float64
	includeAnswer     bool
	answerModel       string
}

// New validates and normalizes search parameters.
// topK=0 selects DefaultTopK and values above MaxTopK are clamped; a negative topK is rejected.
// An empty answerModel selects the configured default model.
func New(
	query string,
	topK int,
	category string,
	minRelevanceScore float64,
	includeAnswer bool,
	answerModel string,
) (Request, error) {
	if strings.TrimSpace(query) == "" {
		return Request{}, domain.NewInvalidRequest("query", "is required")
	}
	if len(query) > MaxQueryLength {
		return Request{}, domain.NewInvalidRequest("query", "is too long")
	}
	if topK < 0 {
		return Request{}, domain.NewInvalidRequest("top_k", "must not be negative")
	}
	if topK == 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}
	if math.IsNaN(minRelevanceScore) || math.IsInf(minRelevanceScore, 0) {
		return Request{}, domain.NewInvalidRequest("min_relevance_score", "must be a finite number")
	}
	category = strings.TrimSpace(category)
	if len(category) > MaxCategoryLength {
		return Request{}, domain.NewInvalidRequest("category_filter", "is too long")
	}

	return Request{
		query:             query,
		topK:              topK,
		category:          category,
		minRelevanceScore: minRelevanceScore,
		includeAnswer:     includeAnswer,
		answerModel:       strings.TrimSpace(answerModel),
	}, nil
}

// Query returns the raw query text as submitted.
func (r *Request) Query() string { return r.query }

// TopK returns the number of candidates to retrieve from the index.
func (r *Request) TopK() int { return r.topK }

// Category returns the category restriction ("" for none).
func (r *Request) Category() string { return r.category }

// MinRelevanceScore returns the relevance threshold (more negative is stricter).
func (r *Request) MinRelevanceScore() float64 { return r.minRelevanceScore }

// IncludeAnswer reports whether a synthesized answer was requested.
func (r *Request) IncludeAnswer() bool { return r.includeAnswer }

// AnswerModel returns the requested model ("" for the default).
func (r *Request) AnswerModel() string { return r.answerModel }
