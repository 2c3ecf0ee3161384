package normalize

import "fmt"

// Disambiguate renames duplicate column labels by suffixing later
// occurrences with _1, _2, and so on. The first occurrence keeps its name
// and order is preserved. Only labels change; row data is untouched.
func Disambiguate(columns []string) []string {
	seen := make(map[string]int, len(columns))
	out := make([]string, len(columns))

	for i, col := range columns {
		if n, ok := seen[col]; ok {
			seen[col] = n + 1
			out[i] = fmt.Sprintf("%s_%d", col, n+1)
		} else {
			seen[col] = 0
			out[i] = col
		}
	}
	return out
}

// Duplicates returns the labels that occur more than once, each reported
// once in first-seen order.
func Duplicates(columns []string) []string {
	counts := make(map[string]int, len(columns))
	for _, col := range columns {
		counts[col]++
	}

	var dup []string
	reported := make(map[string]struct{})
	for _, col := range columns {
		if counts[col] < 2 {
			continue
		}
		if _, ok := reported[col]; ok {
			continue
		}
		reported[col] = struct{}{}
		dup = append(dup, col)
	}
	return dup
}

// HasDuplicates reports whether a header row needs disambiguation.
func HasDuplicates(columns []string) bool {
	seen := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		if _, ok := seen[col]; ok {
			return true
		}
		seen[col] = struct{}{}
	}
	return false
}
