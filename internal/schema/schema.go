// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schema infers the simple word-statistics schema from raw text.
package schema

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/docgraph/pkg/types"
)

// sampleRunes is the length of WordStatistics.Sample.
const sampleRunes = 100

// InferWordStatistics splits text on whitespace and summarizes the tokens.
// Text with no tokens returns types.ErrEmptyInput.
func InferWordStatistics(text string) (types.WordStatistics, error) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return types.WordStatistics{}, types.ErrEmptyInput
	}

	seen := make(map[string]struct{}, len(tokens))
	total := 0
	for _, tok := range tokens {
		total += utf8.RuneCountInString(tok)
		seen[tok] = struct{}{}
	}

	unique := make([]string, 0, len(seen))
	for tok := range seen {
		unique = append(unique, tok)
	}
	sort.Strings(unique)

	return types.WordStatistics{
		Count:  len(tokens),
		AvgLen: float64(total) / float64(len(tokens)),
		Sample: sample(text),
		Unique: unique,
	}, nil
}

func sample(text string) string {
	n := 0
	for i := range text {
		if n == sampleRunes {
			return text[:i]
		}
		n++
	}
	return text
}
