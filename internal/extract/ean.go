package extract

import (
	"context"
	"fmt"
	"strings"

	"snowlift/internal/metadata"
	"snowlift/pkg/errors"
)

// eanColumn is the name of the enrichment column.
const eanColumn = "EAN"

// eanLookupQuery fetches the product-to-EAN equivalence map for one
// country. Both sides arrive trimmed of trailing whitespace.
const eanLookupQuery = `SELECT DISTINCT
    RTRIM(cProducto) AS cProducto,
    RTRIM(cProductoEquiv) AS EAN
FROM dbo.maeGC_ProductoEquiv WITH (NOLOCK)
WHERE cEquivalencia = 'EAN12'
    AND cPais = @p1
OPTION (MAXDOP 4)`

// AddEAN appends the EAN column by left-joining the equivalence table on
// the trimmed product code. A result set that already carries an EAN
// column is returned untouched. Every row gets a value: the matched code
// or the empty string. The lookup runs on its own fresh connection.
func (e *Engine) AddEAN(ctx context.Context, rs *ResultSet) error {
	if rs == nil || len(rs.Columns) == 0 {
		return nil
	}
	if rs.ColumnIndex(eanColumn) >= 0 {
		return nil
	}

	productIdx := -1
	for _, candidate := range metadata.ProductCodeColumns {
		if idx := rs.ColumnIndex(candidate); idx >= 0 {
			productIdx = idx
			break
		}
	}
	if productIdx < 0 {
		rs.AppendColumn(eanColumn, make([]string, len(rs.Rows)))
		return errors.New(errors.ErrCodeProductCodeMissing,
			"no product code column found, EAN left empty").
			WithContext("country", string(e.country)).
			WithSeverity(errors.SeverityWarning).
			AsRecoverable()
	}

	lookup, err := e.fetchEANMap(ctx)
	if err != nil {
		return err
	}

	values := make([]string, len(rs.Rows))
	for i, row := range rs.Rows {
		key := strings.TrimSpace(stringValue(row[productIdx]))
		values[i] = lookup[key]
	}
	rs.AppendColumn(eanColumn, values)
	return nil
}

func (e *Engine) fetchEANMap(ctx context.Context) (map[string]string, error) {
	ctx, cancel := e.boundCtx(ctx)
	defer cancel()

	sess, err := e.newSession(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	rows, err := sess.conn.QueryContext(ctx, eanLookupQuery, e.country.Code())
	if err != nil {
		return nil, errors.ExtractionError("EAN equivalence lookup failed",
			string(e.country), "maeGC_ProductoEquiv", err)
	}
	defer rows.Close()

	lookup := make(map[string]string)
	for rows.Next() {
		var code, ean string
		if err := rows.Scan(&code, &ean); err != nil {
			return nil, errors.ExtractionError("EAN equivalence scan failed",
				string(e.country), "maeGC_ProductoEquiv", err)
		}
		lookup[strings.TrimSpace(code)] = ean
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ExtractionError("EAN equivalence read failed",
			string(e.country), "maeGC_ProductoEquiv", err)
	}
	return lookup, nil
}

func stringValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
