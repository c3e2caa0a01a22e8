// Package search filters recipes by title for the browse view and the
// search box suggestions.
package search

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/otiai10/recipebox/internal/recipe"
)

// MaxSuggestions is the most suggestions returned for one query
const MaxSuggestions = 5

// Results returns the recipes whose title contains q, ignoring case, in
// their original order. An empty query returns all unchanged.
func Results(all []recipe.Recipe, q string) []recipe.Recipe {
	if q == "" {
		return all
	}
	return filter(all, q, 0)
}

// Suggestions returns at most MaxSuggestions recipes whose title contains q.
// An empty query yields no suggestions.
func Suggestions(all []recipe.Recipe, q string) []recipe.Recipe {
	if q == "" {
		return []recipe.Recipe{}
	}
	return filter(all, q, MaxSuggestions)
}

// Matches reports whether title contains q, ignoring case
func Matches(title, q string) bool {
	return strings.Contains(fold(title), fold(q))
}

// filter keeps matching recipes, stopping after limit matches when limit > 0
func filter(all []recipe.Recipe, q string, limit int) []recipe.Recipe {
	needle := fold(q)

	out := make([]recipe.Recipe, 0)
	for _, r := range all {
		if !strings.Contains(fold(r.Title), needle) {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// fold maps s to a composed, case-folded form for comparison
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
