package normalize

import (
	"strings"

	"golang.org/x/text/transform"
)

// maxIdentifierLen is the warehouse limit on identifier length.
const maxIdentifierLen = 128

// NormalizedSuffix is the marker carried by staged files ready to load.
const NormalizedSuffix = "_normalized.csv"

// TableName derives the destination table name from a normalized CSV file
// name. The suffix is dropped, diacritics are stripped, anything outside
// [A-Za-z0-9_] becomes an underscore, runs collapse, the result is
// uppercased, trimmed of underscores and capped at the identifier limit.
func TableName(fileName string) string {
	return identifier(strings.TrimSuffix(fileName, NormalizedSuffix))
}

// FileName normalizes a report or table name into a safe file stem using
// the same rules as TableName. Used when writing raw extraction output.
func FileName(name string) string {
	return identifier(name)
}

func identifier(name string) string {
	name, _, _ = transform.String(stripAccents, name)

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}

	out := collapseUnderscores(b.String())
	out = strings.ToUpper(strings.Trim(out, "_"))

	if len(out) > maxIdentifierLen {
		out = strings.TrimRight(out[:maxIdentifierLen], "_")
	}
	return out
}
