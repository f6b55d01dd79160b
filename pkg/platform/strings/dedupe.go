// Package strings holds small helpers for cleaning admin-supplied lists.
package strings

import (
	"strings"
)

// Dedupe trims each value, applies normalize when non-nil, and drops blanks
// and repeats. First occurrence wins; order is preserved.
func Dedupe(values []string, normalize func(string) string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		key := strings.TrimSpace(v)
		if normalize != nil {
			key = normalize(key)
		}
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, key)
	}
	return result
}

// FieldNames normalizes requested-field identifiers such as
// "Residential_Address.City" to their lowercase form.
func FieldNames(values []string) []string {
	return Dedupe(values, strings.ToLower)
}
