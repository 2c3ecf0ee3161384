package extract

import (
	"context"
	"fmt"
	"time"

	"snowlift/pkg/errors"
)

// ExecReport runs a report's stored procedure and, when the server does
// not have the procedure, falls back to the report's local query exactly
// once with the same date range. Fallback applies only to the missing
// procedure case: every other failure propagates, and a failing fallback
// is never retried.
//
// A recoverable enrichment problem (no product-code column) is returned
// alongside the result set; callers report it and keep the data.
func (e *Engine) ExecReport(ctx context.Context, report Report, from, to string) (*ResultSet, error) {
	var params []string
	if report.NeedsDates {
		// Date bounds end up interpolated into fallback SQL as literals,
		// so only exact ISO dates are accepted here.
		for _, d := range []string{from, to} {
			if _, err := time.Parse("2006-01-02", d); err != nil {
				return nil, errors.New(errors.ErrCodeInvalidInput,
					fmt.Sprintf("invalid report date %q, want YYYY-MM-DD", d)).
					WithContext("report", report.Name)
			}
		}
		params = []string{from, to}
	}

	rs, err := e.ExecProcedure(ctx, report.Procedure, params)
	if err != nil {
		if !errors.IsProcedureNotFound(err) || report.Fallback == nil {
			return nil, err
		}
		rs, err = e.execFallback(ctx, report, from, to)
		if err != nil {
			return nil, err
		}
	}

	if report.WantsEAN {
		if eanErr := e.AddEAN(ctx, rs); eanErr != nil {
			if !errors.IsRecoverable(eanErr) {
				return nil, eanErr
			}
			return rs, eanErr
		}
	}
	return rs, nil
}

func (e *Engine) execFallback(ctx context.Context, report Report, from, to string) (*ResultSet, error) {
	query := report.Fallback(e.country.Code(), from, to)

	ctx, cancel := e.boundCtx(ctx)
	defer cancel()

	sess, err := e.newSession(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	rows, err := sess.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.ExtractionError(
			"fallback query for "+report.Name+" failed",
			string(e.country), report.Procedure, err)
	}
	defer rows.Close()

	rs, err := readAll(rows, e.batch)
	if err != nil {
		return nil, errors.ExtractionError(
			"reading fallback results for "+report.Name+" failed",
			string(e.country), report.Procedure, err)
	}

	finishColumns(rs)
	return rs, nil
}
