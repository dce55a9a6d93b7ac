package index

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bennettck/collections-local-sub001/internal/domain/document"
	"github.com/bennettck/collections-local-sub001/internal/domain/item"
	"github.com/bennettck/collections-local-sub001/internal/tokenizer"
)

// Entry pairs an item with its built document.
type Entry struct {
	Item     item.Item
	Document document.Document
}

// posting records a term occurrence count in one document.
type posting struct {
	doc int32
	tf  int32
}

// Snapshot is an immutable, fully built index. It is safe for concurrent readers.
type Snapshot struct {
	generation string
	builtAt    time.Time
	items      []item.Item
	docLens    []int
	avgDocLen  float64
	postings   map[string][]posting
}

// NewSnapshot tokenizes every document and builds the inverted index.
// Entries must have unique item ids.
func NewSnapshot(entries []Entry) (*Snapshot, error) {
	s := &Snapshot{
		generation: uuid.NewString(),
		builtAt:    time.Now().UTC(),
		items:      make([]item.Item, len(entries)),
		docLens:    make([]int, len(entries)),
		postings:   make(map[string][]posting),
	}

	seen := make(map[string]struct{}, len(entries))
	total := 0
	for i := range entries {
		e := &entries[i]
		if e.Document.ItemID() != e.Item.ID {
			return nil, fmt.Errorf("entry %d: document item id %q does not match item %q",
				i, e.Document.ItemID(), e.Item.ID)
		}
		if _, dup := seen[e.Item.ID]; dup {
			return nil, fmt.Errorf("duplicate item id %q", e.Item.ID)
		}
		seen[e.Item.ID] = struct{}{}

		s.items[i] = e.Item

		tokens := tokenizer.Tokenize(e.Document.Content())
		s.docLens[i] = len(tokens)
		total += len(tokens)

		freqs := make(map[string]int32)
		for _, tok := range tokens {
			freqs[tok]++
		}
		for term, tf := range freqs {
			s.postings[term] = append(s.postings[term], posting{doc: int32(i), tf: tf})
		}
	}

	if len(entries) > 0 {
		s.avgDocLen = float64(total) / float64(len(entries))
	}
	return s, nil
}

// RestoreSnapshot rebuilds a persisted snapshot and keeps its original identity.
func RestoreSnapshot(entries []Entry, generation string, builtAt time.Time) (*Snapshot, error) {
	s, err := NewSnapshot(entries)
	if err != nil {
		return nil, err
	}
	if generation != "" {
		s.generation = generation
	}
	if !builtAt.IsZero() {
		s.builtAt = builtAt.UTC()
	}
	return s, nil
}

// Generation returns the unique id assigned at build time.
func (s *Snapshot) Generation() string { return s.generation }

// BuiltAt returns the build completion time.
func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

// Len returns the number of indexed documents.
func (s *Snapshot) Len() int { return len(s.items) }

// Items returns a copy of the indexed items in build order.
func (s *Snapshot) Items() []item.Item {
	out := make([]item.Item, len(s.items))
	copy(out, s.items)
	return out
}
