// Package response holds the combined search outcome delivered to callers.
package response

import (
	"time"

	"github.com/bennettck/collections-local-sub001/internal/domain/search/result"
)

// Answer is a synthesized natural-language answer over the ranked results.
type Answer struct {
	Text  string
	Model string
	// Citations holds the deduplicated 1-based result ordinals cited as [Item N], ascending.
	Citations []int
}

// Response is the per-request search outcome. Answer, Confidence and AnswerTime are nil
// when no answer was attempted; AnswerErr is set when synthesis failed.
type Response struct {
	Query         string
	Results       []result.Result
	Answer        *Answer
	Confidence    *float64
	AnswerErr     error
	RetrievalTime time.Duration
	AnswerTime    *time.Duration
}

// TotalResults returns the number of ranked results.
func (r *Response) TotalResults() int { return len(r.Results) }

// HasAnswer reports whether a synthesized answer is present.
func (r *Response) HasAnswer() bool { return r.Answer != nil }
