package answer

import (
	"fmt"
	"math"
	"strings"

	"github.com/bennettck/collections-local-sub001/internal/domain/item"
	"github.com/bennettck/collections-local-sub001/internal/domain/search/result"
)

const instructions = `Instructions:
- Answer the question using only the items above.
- Be concise: two to four sentences unless a list is clearly better.
- Cite every item you rely on with its marker, for example [Item 1] or [Item 2].
- Use only the exact marker format [Item N]; do not invent item numbers.
- If the items do not answer the question, say so plainly.`

// buildPrompt renders the question, the ranked items and the instruction block.
// The output depends only on its inputs.
func buildPrompt(query string, results []result.Result) string {
	var b strings.Builder
	b.WriteString("You answer questions about a personal collection of saved images.\n\n")
	fmt.Fprintf(&b, "Question: %s\n\n", query)
	b.WriteString("Items:\n")
	for i := range results {
		writeItem(&b, i+1, &results[i])
	}
	b.WriteString("\n")
	b.WriteString(instructions)
	b.WriteString("\n\nAnswer:")
	return b.String()
}

func writeItem(b *strings.Builder, ordinal int, r *result.Result) {
	fmt.Fprintf(b, "\n[Item %d] (relevance: %.2f)\n", ordinal, math.Abs(r.Score()))
	it := r.Item()
	if it == nil {
		fmt.Fprintf(b, "ID: %s\n", r.ItemID())
		return
	}
	writeField(b, "Category", it.Category)
	writeField(b, "Subcategories", joinComma(it.Subcategories))
	writeField(b, "Headline", it.Headline)
	writeField(b, "Summary", it.Summary)
	writeField(b, "Key interest", it.KeyInterest)
	writeField(b, "Extracted text", item.JoinList(it.ExtractedText))
	writeField(b, "Themes", joinComma(it.Themes))
	writeField(b, "Objects", joinComma(it.Objects))
	writeField(b, "Location", joinComma(it.LocationTags))
	writeField(b, "Emotions", joinComma(it.Emotions))
	writeField(b, "Vibes", joinComma(it.Vibes))
	writeField(b, "Hashtags", strings.Join(it.Hashtags, " "))
	writeField(b, "Source", it.LikelySource)
}

func writeField(b *strings.Builder, label, value string) {
	if value = strings.TrimSpace(value); value == "" {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, value)
}

func joinComma(values []string) string {
	return strings.Join(values, ", ")
}
