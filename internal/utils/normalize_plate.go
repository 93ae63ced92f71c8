package utils

import "strings"

// NormalizePlate collapses a license plate to a canonical form: no spaces or
// dashes, upper case. Roster lookups and display both use the same form.
func NormalizePlate(raw string) string {
	normalized := strings.TrimSpace(raw)
	normalized = strings.ReplaceAll(normalized, " ", "")
	normalized = strings.ReplaceAll(normalized, "-", "")
	normalized = strings.ToUpper(normalized)
	return normalized
}
