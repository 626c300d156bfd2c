package graph

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// NormalizeIngredient case-folds an ingredient name and collapses its
// whitespace so that "Tomato", " tomato " and "TOMATO" share one node.
func NormalizeIngredient(name string) string {
	return cases.Fold().String(strings.Join(strings.Fields(name), " "))
}

// NormalizeIngredients normalizes every name, drops empties and duplicates,
// and returns the result sorted.
func NormalizeIngredients(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		n := NormalizeIngredient(name)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		result = append(result, n)
	}
	sort.Strings(result)
	return result
}

// SplitIngredientList normalizes a single comma separated ingredient field
func SplitIngredientList(list string) []string {
	return NormalizeIngredients(strings.Split(list, ","))
}

// normalizeEmail is applied to every email before it reaches a query
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
