package answer

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var citationPattern = regexp.MustCompile(`\[Item (\d+)\]`)

// ExtractCitations returns the deduplicated ordinals of every [Item N] marker
// in text, ascending. Range is not checked.
func ExtractCitations(text string) []int {
	matches := citationPattern.FindAllStringSubmatch(text, -1)
	seen := make(map[int]struct{}, len(matches))
	out := make([]int, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// outOfRange returns cited ordinals outside [1, n].
func outOfRange(citations []int, n int) []int {
	var bad []int
	for _, c := range citations {
		if c < 1 || c > n {
			bad = append(bad, c)
		}
	}
	return bad
}

// hasMalformedMarkers reports "[Item" fragments that do not form a valid marker.
func hasMalformedMarkers(text string, wellFormed int) bool {
	return strings.Count(text, "[Item") > wellFormed
}
