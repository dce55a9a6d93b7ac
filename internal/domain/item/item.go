// Package item holds the metadata record produced by the upstream analysis step.
package item

import (
	"strings"

	"github.com/bennettck/collections-local-sub001/internal/domain"
)

// Item is an analysed media item. It is read-only input to the document builder;
// nothing in this module mutates an Item after it is loaded from the metadata source.
type Item struct {
	ID       string
	Category string

	Headline      string
	Summary       string
	ExtractedText []string
	Subcategories []string
	KeyInterest   string

	Themes       []string
	Objects      []string
	LocationTags []string
	Emotions     []string
	Vibes        []string
	Hashtags     []string

	// Low-salience attribution fields, indexed together as one unit.
	LikelySource    string
	Attribution     string
	VisualHierarchy []string
}

// Validate checks that the item can be indexed and joined back.
func (it *Item) Validate() error {
	if strings.TrimSpace(it.ID) == "" {
		return domain.NewInvalidRequest("id", "is required")
	}
	return nil
}

// MatchesCategory reports whether the item belongs to category (case-insensitive).
// An empty category matches every item.
func (it *Item) MatchesCategory(category string) bool {
	if category == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(it.Category), strings.TrimSpace(category))
}

// JoinList renders a tag list as a single space-separated string.
func JoinList(values []string) string {
	return strings.Join(values, " ")
}
