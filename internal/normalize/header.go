// Package normalize implements the naming rules shared by the staging and
// load steps: header normalization, duplicate-column disambiguation and
// table-name resolution from file names.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"snowlift/internal/metadata"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Header normalizes a single column name. Business terms in the fixed
// mapping win; everything else goes through the generic rules: strip
// diacritics, turn spaces, dots and dashes into underscores, uppercase,
// collapse runs of underscores and trim them from both ends.
func Header(header string) string {
	if mapped, ok := metadata.HeaderMap[header]; ok {
		return mapped
	}

	s := strings.TrimSpace(header)
	s, _, _ = transform.String(stripAccents, s)

	s = strings.NewReplacer(" ", "_", ".", "_", "-", "_").Replace(s)
	s = strings.ToUpper(s)
	s = collapseUnderscores(s)
	return strings.Trim(s, "_")
}

// Headers normalizes a full header row in order.
func Headers(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = Header(h)
	}
	return out
}

func collapseUnderscores(s string) string {
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return s
}
