// Package document builds the weighted text blob indexed for each item.
package document

import (
	"strings"

	"github.com/bennettck/collections-local-sub001/internal/domain/item"
)

// Document is the indexed form of an item (immutable value object).
// ItemID is not indexed; it is only used to join scores back to items.
type Document struct {
	itemID  string
	content string
}

// ItemID returns the identifier of the source item.
func (d Document) ItemID() string { return d.itemID }

// Content returns the weighted text blob.
func (d Document) Content() string { return d.content }

// Field is one entry of the weight table.
type Field struct {
	Name   string
	Weight int
	value  func(*item.Item) string
}

// layout is the fixed field order and multiplicity. Order matters: it makes the
// content, and therefore scores, reproducible across builds.
var layout = []Field{
	{Name: "summary", Weight: 3, value: func(it *item.Item) string { return it.Summary }},

	{Name: "headline", Weight: 2, value: func(it *item.Item) string { return it.Headline }},
	{Name: "extracted_text", Weight: 2, value: func(it *item.Item) string { return item.JoinList(it.ExtractedText) }},
	{Name: "category", Weight: 2, value: func(it *item.Item) string { return it.Category }},
	{Name: "subcategories", Weight: 2, value: func(it *item.Item) string { return item.JoinList(it.Subcategories) }},
	{Name: "key_interest", Weight: 2, value: func(it *item.Item) string { return it.KeyInterest }},

	{Name: "themes", Weight: 1, value: func(it *item.Item) string { return item.JoinList(it.Themes) }},
	{Name: "objects", Weight: 1, value: func(it *item.Item) string { return item.JoinList(it.Objects) }},
	{Name: "location_tags", Weight: 1, value: func(it *item.Item) string { return item.JoinList(it.LocationTags) }},
	{Name: "emotions", Weight: 1, value: func(it *item.Item) string { return item.JoinList(it.Emotions) }},
	{Name: "vibes", Weight: 1, value: func(it *item.Item) string { return item.JoinList(it.Vibes) }},
	{Name: "hashtags", Weight: 1, value: func(it *item.Item) string { return item.JoinList(it.Hashtags) }},

	{Name: "low_salience", Weight: 1, value: lowSalience},
}

// Layout returns a copy of the weight table in build order.
func Layout() []Field {
	out := make([]Field, len(layout))
	copy(out, layout)
	return out
}

// Build renders an item into its indexed document. Empty fields contribute
// empty segments; repetition counts do not depend on emptiness.
func Build(it *item.Item) Document {
	parts := make([]string, 0, segmentCount())
	for _, f := range layout {
		v := f.value(it)
		for i := 0; i < f.Weight; i++ {
			parts = append(parts, v)
		}
	}
	return Document{itemID: it.ID, content: strings.Join(parts, " ")}
}

// lowSalience concatenates attribution and hierarchy metadata into one unit.
func lowSalience(it *item.Item) string {
	return strings.Join([]string{
		it.LikelySource,
		it.Attribution,
		item.JoinList(it.VisualHierarchy),
	}, " ")
}

func segmentCount() int {
	n := 0
	for _, f := range layout {
		n += f.Weight
	}
	return n
}
