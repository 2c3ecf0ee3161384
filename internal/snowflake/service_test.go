package snowflake

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snowlift/pkg/errors"
)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	svc := NewServiceWithDB(db)
	svc.config.Schema = "PUBLIC"
	return svc, mock
}

func TestTableExists(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SHOW TABLES LIKE 'VENTAS'").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("VENTAS"))

	exists, err := svc.TableExists(context.Background(), "VENTAS")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestTableExistsFalse(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SHOW TABLES LIKE 'NADA'").
		WillReturnRows(sqlmock.NewRows([]string{"name"}))

	exists, err := svc.TableExists(context.Background(), "NADA")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRenameTableWrapsError(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectExec(`ALTER TABLE "PUBLIC"."VENTAS" RENAME TO "VENTAS_OLD"`).
		WillReturnError(fmt.Errorf("insufficient privileges"))

	err := svc.RenameTable(context.Background(), "VENTAS", "VENTAS_OLD")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeRenameBackup, errors.GetErrorCode(err))
}

func TestCreateTableBuildsDDL(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectExec(`CREATE TABLE "PUBLIC"."VENTAS"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.CreateTable(context.Background(), "VENTAS", []ColumnDef{
		{Name: "ID", Type: "INTEGER"},
		{Name: "NOMBRE", Type: textType},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatementTimeoutBoundsWarehouseCalls(t *testing.T) {
	svc, mock := newTestService(t)
	svc.config.Timeout = 20 * time.Millisecond

	mock.ExpectQuery("SHOW TABLES LIKE 'VENTAS'").
		WillDelayFor(500 * time.Millisecond).
		WillReturnRows(sqlmock.NewRows([]string{"name"}))

	_, err := svc.TableExists(context.Background(), "VENTAS")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VENTAS")
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"VENTAS"`, quoteIdent("VENTAS"))
	assert.Equal(t, `"A""B"`, quoteIdent(`A"B`))
}
