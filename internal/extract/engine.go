// Package extract pulls data out of the per-country SQL Server instances:
// whole tables with an optional date window, stored-procedure reports with
// local query fallbacks, and the EAN equivalence enrichment.
package extract

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"snowlift/internal/metadata"
	"snowlift/internal/normalize"
	"snowlift/pkg/errors"
	"snowlift/pkg/models"
)

// windowDays is the extraction window for tables with a temporal column:
// 36 months approximated as 30-day months.
const windowDays = 36 * 30

// defaultFetchBatch is the row-append granularity when no batch size is
// configured.
const defaultFetchBatch = 5000

// defaultStatementTimeout bounds a single statement when no timeout is
// configured.
const defaultStatementTimeout = 5 * time.Minute

// OpenFunc opens a database handle against one country's server. Every
// logical operation gets a fresh handle; nothing is pooled across
// operations so a long read can never leave a busy connection behind.
type OpenFunc func() (*sql.DB, error)

// Engine runs extraction operations against a single country.
type Engine struct {
	country models.Country
	open    OpenFunc
	now     func() time.Time
	batch   int
	timeout time.Duration
}

// NewEngine builds an engine for a country from its source settings.
func NewEngine(country models.Country, source models.Source, load models.Load) *Engine {
	e := &Engine{
		country: country,
		open: func() (*sql.DB, error) {
			db, err := sql.Open("sqlserver", buildDSN(source, load.ConnectTimeoutSec))
			if err != nil {
				return nil, errors.ConnectionError(
					fmt.Sprintf("cannot open connection to %s", country), err).
					WithContext("server", source.Server)
			}
			return db, nil
		},
		now:     time.Now,
		batch:   load.BatchSize,
		timeout: time.Duration(load.StatementTimeoutSec) * time.Second,
	}
	if e.batch <= 0 {
		e.batch = defaultFetchBatch
	}
	if e.timeout <= 0 {
		e.timeout = defaultStatementTimeout
	}
	return e
}

// NewEngineWithOpener builds an engine around a caller-supplied opener.
// Used by tests and by callers that manage their own handles.
func NewEngineWithOpener(country models.Country, open OpenFunc) *Engine {
	return &Engine{
		country: country,
		open:    open,
		now:     time.Now,
		batch:   defaultFetchBatch,
		timeout: defaultStatementTimeout,
	}
}

// WithClock overrides the time source for the date window.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// WithBatchSize overrides the row-append granularity.
func (e *Engine) WithBatchSize(n int) *Engine {
	if n > 0 {
		e.batch = n
	}
	return e
}

// WithStatementTimeout overrides the per-statement bound.
func (e *Engine) WithStatementTimeout(d time.Duration) *Engine {
	if d > 0 {
		e.timeout = d
	}
	return e
}

// boundCtx caps one logical operation at the statement timeout. Every
// remote call goes through this; a stuck server surfaces as a failure
// instead of hanging the run.
func (e *Engine) boundCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.timeout)
}

// Country returns the country this engine extracts from.
func (e *Engine) Country() models.Country {
	return e.country
}

func buildDSN(source models.Source, connectTimeoutSec int) string {
	host := source.Server
	instance := ""
	if i := strings.IndexByte(host, '\\'); i >= 0 {
		host, instance = host[:i], host[i+1:]
	}

	u := &url.URL{
		Scheme: "sqlserver",
		User:   url.UserPassword(source.Username, source.Password),
		Host:   host,
	}
	if instance != "" {
		u.Path = instance
	}

	q := url.Values{}
	q.Set("database", source.Database)
	q.Set("TrustServerCertificate", "true")
	if connectTimeoutSec > 0 {
		q.Set("dial timeout", fmt.Sprintf("%d", connectTimeoutSec))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// session wraps one pinned connection with the read settings applied. The
// SET statements and the query that follows must run on the same
// connection, so a bare *sql.DB is not enough.
type session struct {
	db   *sql.DB
	conn *sql.Conn
}

func (e *Engine) newSession(ctx context.Context) (*session, error) {
	db, err := e.open()
	if err != nil {
		return nil, err
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, errors.ConnectionError(
			fmt.Sprintf("cannot acquire connection to %s", e.country), err)
	}

	for _, stmt := range []string{
		"SET NOCOUNT ON",
		"SET TRANSACTION ISOLATION LEVEL READ UNCOMMITTED",
	} {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			conn.Close()
			db.Close()
			return nil, errors.SQLError("cannot prepare session", stmt, err).
				WithContext("country", string(e.country))
		}
	}

	return &session{db: db, conn: conn}, nil
}

func (s *session) Close() {
	s.conn.Close()
	s.db.Close()
}

// readAll drains a query into a ResultSet, accumulating rows in
// batch-sized chunks so one huge result does not grow the slice row by
// row.
func readAll(rows *sql.Rows, batch int) (*ResultSet, error) {
	if batch <= 0 {
		batch = defaultFetchBatch
	}

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	rs := &ResultSet{Columns: cols}
	chunk := make([][]interface{}, 0, batch)
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		chunk = append(chunk, values)
		if len(chunk) == batch {
			rs.Rows = append(rs.Rows, chunk...)
			chunk = make([][]interface{}, 0, batch)
		}
	}
	rs.Rows = append(rs.Rows, chunk...)
	return rs, rows.Err()
}

// finishColumns disambiguates the header row, recording which labels were
// duplicated so callers can surface the rename.
func finishColumns(rs *ResultSet) {
	if normalize.HasDuplicates(rs.Columns) {
		rs.DuplicateColumns = normalize.Duplicates(rs.Columns)
	}
	rs.Columns = normalize.Disambiguate(rs.Columns)
}

// ExecProcedure runs a stored procedure and returns its first result set
// with duplicate columns disambiguated. A missing procedure surfaces as
// the distinguished procedure-not-found error so the dispatcher can fall
// back; any other failure propagates as an extraction error.
func (e *Engine) ExecProcedure(ctx context.Context, procedure string, params []string) (*ResultSet, error) {
	ctx, cancel := e.boundCtx(ctx)
	defer cancel()

	sess, err := e.newSession(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	query := "EXEC " + procedure
	args := make([]interface{}, len(params))
	for i, p := range params {
		if i == 0 {
			query += " "
		} else {
			query += ", "
		}
		query += fmt.Sprintf("@p%d", i+1)
		args[i] = p
	}

	rows, err := sess.conn.QueryContext(ctx, query, args...)
	if err != nil {
		if isProcedureMissing(err) {
			return nil, errors.ProcedureNotFound(string(e.country), procedure, err)
		}
		return nil, errors.ExtractionError(
			fmt.Sprintf("stored procedure %s failed", procedure),
			string(e.country), procedure, err)
	}
	defer rows.Close()

	rs, err := readAll(rows, e.batch)
	if err != nil {
		return nil, errors.ExtractionError(
			fmt.Sprintf("reading results of %s failed", procedure),
			string(e.country), procedure, err)
	}

	finishColumns(rs)
	return rs, nil
}

// isProcedureMissing matches the server's procedure-not-found message in
// both the English and Spanish server locales.
func isProcedureMissing(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "could not find stored procedure") ||
		strings.Contains(msg, "no se pudo encontrar")
}

// windowStart is the lower bound for date-filtered extractions.
func (e *Engine) windowStart() string {
	return e.now().AddDate(0, 0, -windowDays).Format("2006-01-02")
}

// FetchTable downloads one table. Tables with a detectable temporal column
// are bounded to the extraction window; the sales-detail entity gets the
// EAN lookup fused into the same query.
func (e *Engine) FetchTable(ctx context.Context, table string) (*ResultSet, error) {
	ctx, cancel := e.boundCtx(ctx)
	defer cancel()

	dateCol := e.DetectDateColumn(ctx, table)

	sess, err := e.newSession(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	var (
		query string
		args  []interface{}
	)

	switch {
	case metadata.IsDetailTable(table) && dateCol != "":
		query = fmt.Sprintf(`WITH EAN_LOOKUP AS (
    SELECT RTRIM(cProducto) AS cProducto, RTRIM(cProductoEquiv) AS EAN
    FROM dbo.maeGC_ProductoEquiv WITH (NOLOCK)
    WHERE cEquivalencia = 'EAN12' AND cPais = @p1
)
SELECT d.*, COALESCE(e.EAN, '') AS EAN
FROM %s d WITH (NOLOCK, INDEX(0))
LEFT JOIN EAN_LOOKUP e ON RTRIM(d.cProductoVta) = e.cProducto
WHERE d.%s >= @p2
OPTION (MAXDOP 4, OPTIMIZE FOR UNKNOWN)`, table, dateCol)
		args = []interface{}{e.country.Code(), e.windowStart()}

	case metadata.IsDetailTable(table):
		query = fmt.Sprintf(`WITH EAN_LOOKUP AS (
    SELECT RTRIM(cProducto) AS cProducto, RTRIM(cProductoEquiv) AS EAN
    FROM dbo.maeGC_ProductoEquiv WITH (NOLOCK)
    WHERE cEquivalencia = 'EAN12' AND cPais = @p1
)
SELECT d.*, COALESCE(e.EAN, '') AS EAN
FROM %s d WITH (NOLOCK, INDEX(0))
LEFT JOIN EAN_LOOKUP e ON RTRIM(d.cProductoVta) = e.cProducto
OPTION (MAXDOP 4)`, table)
		args = []interface{}{e.country.Code()}

	case dateCol != "":
		query = fmt.Sprintf(`SELECT * FROM %s WITH (NOLOCK, INDEX(0))
WHERE %s >= @p1
OPTION (MAXDOP 4, OPTIMIZE FOR UNKNOWN)`, table, dateCol)
		args = []interface{}{e.windowStart()}

	default:
		query = fmt.Sprintf(`SELECT * FROM %s WITH (NOLOCK, INDEX(0)) OPTION (MAXDOP 4)`, table)
	}

	rows, err := sess.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.ExtractionError(
			fmt.Sprintf("downloading table %s failed", table),
			string(e.country), table, err)
	}
	defer rows.Close()

	rs, err := readAll(rows, e.batch)
	if err != nil {
		return nil, errors.ExtractionError(
			fmt.Sprintf("reading table %s failed", table),
			string(e.country), table, err)
	}

	finishColumns(rs)
	return rs, nil
}

// ProcedureExists probes sys.objects for a stored procedure. Used by the
// extract command to report availability before a long run.
func (e *Engine) ProcedureExists(ctx context.Context, procedure string) (bool, error) {
	ctx, cancel := e.boundCtx(ctx)
	defer cancel()

	sess, err := e.newSession(ctx)
	if err != nil {
		return false, err
	}
	defer sess.Close()

	var count int
	row := sess.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sys.objects WHERE type = 'P' AND name = @p1", procedure)
	if err := row.Scan(&count); err != nil {
		return false, errors.SQLError("procedure existence probe failed", procedure, err).
			WithContext("country", string(e.country))
	}
	return count > 0, nil
}
