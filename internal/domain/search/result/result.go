package result

import "github.com/bennettck/collections-local-sub001/internal/domain/item"

// Result is a single scored hit. More negative scores are stronger matches.
type Result struct {
	itemID string
	score  float64
	item   *item.Item
}

// New creates a search result. it may be nil when metadata is not joined.
func New(itemID string, score float64, it *item.Item) Result {
	return Result{itemID: itemID, score: score, item: it}
}

// ItemID returns the matched item identifier.
func (r *Result) ItemID() string { return r.itemID }

// Score returns the raw relevance score (more negative = better).
func (r *Result) Score() float64 { return r.score }

// Item returns the joined item metadata (may be nil).
func (r *Result) Item() *item.Item { return r.item }
