package extract

// ResultSet is the in-memory form of one extraction: an ordered header row
// and the data rows beneath it. Values keep whatever the driver returned;
// formatting happens at CSV write time.
type ResultSet struct {
	Columns []string
	Rows    [][]interface{}
	// DuplicateColumns lists the original labels that had to be
	// disambiguated, for caller-side reporting.
	DuplicateColumns []string
}

// ColumnIndex returns the position of a column, or -1 when absent.
func (rs *ResultSet) ColumnIndex(name string) int {
	for i, c := range rs.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Empty reports whether the extraction produced no data rows.
func (rs *ResultSet) Empty() bool {
	return rs == nil || len(rs.Rows) == 0
}

// AppendColumn adds a column with one value per existing row.
func (rs *ResultSet) AppendColumn(name string, values []string) {
	rs.Columns = append(rs.Columns, name)
	for i := range rs.Rows {
		var v interface{}
		if i < len(values) {
			v = values[i]
		} else {
			v = ""
		}
		rs.Rows[i] = append(rs.Rows[i], v)
	}
}
