// Package tokenizer normalizes query text and splits text into index terms.
package tokenizer

import (
	"strings"
	"unicode"
)

// punctuation lists the characters removed from queries: ASCII sentence punctuation,
// quotes and brackets plus their typographic and full-width variants.
var punctuation = []string{
	"?", "!", ".", ",", ";", ":", "'", `"`, "(", ")", "[", "]", "{", "}",
	"‘", "’", "‚", "‛",
	"“", "”", "„", "‟",
	"«", "»", "‹", "›",
	"¿", "¡",
	"〈", "〉", "《", "》",
	"「", "」", "『", "』",
	"【", "】",
	"（", "）", "［", "］", "｛", "｝",
	"？", "！", "。", "，", "；", "：",
}

var punctuationReplacer = func() *strings.Replacer {
	pairs := make([]string, 0, len(punctuation)*2)
	for _, p := range punctuation {
		pairs = append(pairs, p, "")
	}
	return strings.NewReplacer(pairs...)
}()

// Normalize strips punctuation and lowercases the remainder.
// Every word is kept, stop-words and prepositions included. Normalize is idempotent.
func Normalize(text string) string {
	return strings.ToLower(punctuationReplacer.Replace(text))
}

// Tokenize lowercases text and splits it into terms on anything that is not
// a letter or a digit.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	if fields == nil {
		return make([]string, 0)
	}
	return fields
}

// UniqueTerms tokenizes text and drops repeated terms, keeping first-seen order.
func UniqueTerms(text string) []string {
	tokens := Tokenize(text)
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
