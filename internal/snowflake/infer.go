package snowflake

import (
	"strconv"
	"strings"
	"time"
)

// ColumnDef pairs a column name with its Snowflake type.
type ColumnDef struct {
	Name string
	Type string
}

// textType is the widest VARCHAR Snowflake accepts; the fallback for any
// column whose values do not agree on a narrower type.
const textType = "VARCHAR(16777216)"

var dateLayouts = []string{"2006-01-02", "2006/01/02", "02/01/2006"}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
}

// InferColumns derives a CREATE TABLE schema from CSV data: each column
// gets the narrowest type every non-empty value fits, widening through
// INTEGER, FLOAT, BOOLEAN, DATE and TIMESTAMP_NTZ down to text. A column
// with no values stays text.
func InferColumns(headers []string, rows [][]string) []ColumnDef {
	defs := make([]ColumnDef, len(headers))
	for i, h := range headers {
		defs[i] = ColumnDef{Name: h, Type: inferColumn(i, rows)}
	}
	return defs
}

func inferColumn(idx int, rows [][]string) string {
	current := ""
	for _, row := range rows {
		if idx >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[idx])
		if v == "" || isNullToken(v) {
			continue
		}

		t := inferValue(v)
		switch {
		case current == "":
			current = t
		case current == t:
		case (current == "INTEGER" && t == "FLOAT") || (current == "FLOAT" && t == "INTEGER"):
			current = "FLOAT"
		case (current == "DATE" && t == "TIMESTAMP_NTZ") || (current == "TIMESTAMP_NTZ" && t == "DATE"):
			current = "TIMESTAMP_NTZ"
		default:
			return textType
		}
	}
	if current == "" {
		return textType
	}
	return current
}

func inferValue(v string) string {
	if _, err := strconv.ParseInt(v, 10, 64); err == nil {
		return "INTEGER"
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return "FLOAT"
	}
	switch strings.ToLower(v) {
	case "true", "false":
		return "BOOLEAN"
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return "DATE"
		}
	}
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return "TIMESTAMP_NTZ"
		}
	}
	return textType
}

func isNullToken(v string) bool {
	switch v {
	case "NULL", "None", "NaN":
		return true
	}
	return false
}
