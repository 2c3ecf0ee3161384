package extract

import (
	"context"

	"snowlift/internal/metadata"
)

// informationSchemaDateQuery picks the first temporal column of a table in
// declaration order.
const informationSchemaDateQuery = `SELECT TOP 1 COLUMN_NAME
FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_NAME = @p1
AND DATA_TYPE IN ('datetime', 'date', 'smalldatetime', 'datetime2')
ORDER BY ORDINAL_POSITION`

// DetectDateColumn finds the column used to bound a table extraction to
// the date window. Static hints win; otherwise the table's schema is
// probed. Any failure, including connection loss, yields "", which means
// the table is extracted unbounded.
func (e *Engine) DetectDateColumn(ctx context.Context, table string) string {
	if col := metadata.DateFilterColumn(table); col != "" {
		return col
	}

	ctx, cancel := e.boundCtx(ctx)
	defer cancel()

	sess, err := e.newSession(ctx)
	if err != nil {
		return ""
	}
	defer sess.Close()

	var col string
	row := sess.conn.QueryRowContext(ctx, informationSchemaDateQuery, table)
	if err := row.Scan(&col); err != nil {
		return ""
	}
	return col
}
