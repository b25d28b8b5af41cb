// Package search finds names mentioned inside free text, ignoring whitespace and case
package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Normalize removes all whitespace and case-folds s
func Normalize(s string) string {
	return cases.Fold().String(strings.Join(strings.Fields(s), ""))
}

type scoreItem struct {
	name  string
	score int
}

// query assumes 'text' is normalized
func query(names []string, text string, minLength int) []scoreItem {
	scores := make([]scoreItem, 0, len(names))
	if text == "" {
		return scores
	}
	for _, name := range names {
		normalized := Normalize(name)
		length := utf8.RuneCountInString(normalized)
		if length == 0 || length < minLength {
			continue
		}
		if strings.Contains(text, normalized) {
			scores = append(scores, scoreItem{
				name:  name,
				score: length,
			})
		}
	}
	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].score > scores[b].score // sort scores largest to smallest
	})
	return scores
}

// Query returns names contained in text, longest match first. Names shorter than minLength once normalized are ignored.
func Query(names []string, text string, minLength int) []string {
	scores := query(names, Normalize(text), minLength)
	results := make([]string, len(scores))
	for i, item := range scores {
		results[i] = item.name
	}
	return results
}

// Longest returns the longest name contained in text. Ties go to the earliest name.
func Longest(names []string, text string, minLength int) (string, bool) {
	results := Query(names, text, minLength)
	if len(results) == 0 {
		return "", false
	}
	return results[0], true
}
