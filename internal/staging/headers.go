package staging

import (
	"path/filepath"
	"strings"

	"snowlift/internal/extract"
	"snowlift/internal/normalize"
)

// HeaderChange records one header rewrite for reporting.
type HeaderChange struct {
	From string
	To   string
}

// NormalizeFile normalizes the header row of one raw CSV and writes the
// result next to it as <stem>_normalized.csv. The data rows are copied
// verbatim. Returns the changes made; a file whose headers are already
// clean still produces the normalized output so the load step has a
// uniform input set.
func NormalizeFile(path string) ([]HeaderChange, error) {
	headers, rows, err := ReadCSV(path)
	if err != nil {
		return nil, err
	}

	normalized := normalize.Headers(headers)
	var changes []HeaderChange
	for i, h := range headers {
		if h != normalized[i] {
			changes = append(changes, HeaderChange{From: h, To: normalized[i]})
		}
	}

	stem := strings.TrimSuffix(path, filepath.Ext(path))
	out := stem + normalize.NormalizedSuffix

	rs := toResultSet(normalized, rows)
	if err := WriteCSV(out, rs); err != nil {
		return changes, err
	}
	return changes, nil
}

// NormalizeCountry runs header normalization over every raw CSV in a
// country folder. Returns the number of files processed.
func NormalizeCountry(countryDir string) (int, error) {
	files, err := ListRaw(countryDir)
	if err != nil {
		return 0, err
	}
	for _, f := range files {
		if _, err := NormalizeFile(f); err != nil {
			return 0, err
		}
	}
	return len(files), nil
}

func toResultSet(headers []string, rows [][]string) *extract.ResultSet {
	rs := &extract.ResultSet{Columns: headers, Rows: make([][]interface{}, len(rows))}
	for i, r := range rows {
		row := make([]interface{}, len(r))
		for j, v := range r {
			row[j] = v
		}
		rs.Rows[i] = row
	}
	return rs
}
