// Package index is the in-process full-text index over item documents.
//
// Scores follow the "more negative is better" convention: BM25 relevance is
// negated here, at the index boundary, so downstream thresholds compare as documented.
package index

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/bennettck/collections-local-sub001/internal/domain"
	"github.com/bennettck/collections-local-sub001/internal/domain/search/result"
	"github.com/bennettck/collections-local-sub001/internal/tokenizer"
)

// Store owns the current snapshot. Readers never block; Publish swaps the
// whole snapshot atomically so a reader sees either the old or the new index.
type Store struct {
	current atomic.Pointer[Snapshot]
	params  Params
}

// NewStore creates an empty (unloaded) store.
func NewStore(params Params) *Store {
	if params.K1 <= 0 {
		params.K1 = DefaultK1
	}
	if params.B < 0 || params.B > 1 {
		params.B = DefaultB
	}
	return &Store{params: params}
}

// Publish makes snap the current index.
func (s *Store) Publish(snap *Snapshot) {
	s.current.Store(snap)
}

// Snapshot returns the current snapshot, or nil if the index was never built.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Loaded reports whether a snapshot has been published.
func (s *Store) Loaded() bool {
	return s.current.Load() != nil
}

// Status describes the published index.
type Status struct {
	Loaded     bool
	DocCount   int
	Generation string
	BuiltAt    time.Time
}

// Status reports the current snapshot state.
func (s *Store) Status() Status {
	snap := s.current.Load()
	if snap == nil {
		return Status{}
	}
	return Status{
		Loaded:     true,
		DocCount:   snap.Len(),
		Generation: snap.generation,
		BuiltAt:    snap.builtAt,
	}
}

// Query ranks documents matching any term of the normalized query text.
// Results are sorted ascending by score (most negative first), ties by item id,
// and restricted to items of category when it is non-empty.
func (s *Store) Query(ctx context.Context, normalized string, topK int, category string) ([]result.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap := s.current.Load()
	if snap == nil {
		return nil, domain.ErrIndexUnavailable
	}
	if topK <= 0 {
		return []result.Result{}, nil
	}

	terms := tokenizer.UniqueTerms(normalized)
	scores := make(map[int32]float64)
	total := snap.Len()

	for _, term := range terms {
		list := snap.postings[term]
		if len(list) == 0 {
			continue
		}
		termIDF := idf(total, len(list))
		for _, p := range list {
			if category != "" && !snap.items[p.doc].MatchesCategory(category) {
				continue
			}
			scores[p.doc] += s.params.termScore(termIDF, int(p.tf), snap.docLens[p.doc], snap.avgDocLen)
		}
	}

	type hit struct {
		doc   int32
		score float64
	}
	hits := make([]hit, 0, len(scores))
	for doc, sc := range scores {
		hits = append(hits, hit{doc: doc, score: -sc})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score < hits[j].score
		}
		return snap.items[hits[i].doc].ID < snap.items[hits[j].doc].ID
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}

	out := make([]result.Result, len(hits))
	for i, h := range hits {
		it := &snap.items[h.doc]
		out[i] = result.New(it.ID, h.score, it)
	}
	return out, nil
}
