package snowflake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeNormalizedCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	bom := []byte{0xEF, 0xBB, 0xBF}
	require.NoError(t, os.WriteFile(path, append(bom, []byte(content)...), 0644))
	return path
}

func TestLoadFileReplacesExistingTable(t *testing.T) {
	svc, mock := newTestService(t)
	loader := NewLoaderWithService(svc)

	path := writeNormalizedCSV(t, t.TempDir(),
		"MAEGC_MARCA_PERU_normalized.csv", "CODIGO,NOMBRE\nM1,Uno\nM2,Dos\n")

	mock.ExpectQuery("SHOW TABLES LIKE 'MAEGC_MARCA_PERU'").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("MAEGC_MARCA_PERU"))
	mock.ExpectExec(`DROP TABLE IF EXISTS "PUBLIC"."MAEGC_MARCA_PERU_OLD"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`ALTER TABLE "PUBLIC"."MAEGC_MARCA_PERU" RENAME TO "MAEGC_MARCA_PERU_OLD"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE "PUBLIC"."MAEGC_MARCA_PERU"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("PUT file://").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`COPY INTO "PUBLIC"."MAEGC_MARCA_PERU"`).
		WillReturnResult(sqlmock.NewResult(2, 2))
	mock.ExpectExec("REMOVE @~/staged_data/").WillReturnResult(sqlmock.NewResult(0, 0))

	stats := loader.LoadFile(context.Background(), path, "PERU")
	require.NoError(t, stats.Err)
	assert.True(t, stats.Success)
	assert.Equal(t, "MAEGC_MARCA_PERU", stats.Table)
	assert.Equal(t, 2, stats.RowsRead)
	assert.Equal(t, 2, stats.Loaded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadFileFreshTableSkipsBackup(t *testing.T) {
	svc, mock := newTestService(t)
	loader := NewLoaderWithService(svc)

	path := writeNormalizedCSV(t, t.TempDir(),
		"RM00101_CHILE_normalized.csv", "CUSTNMBR,CUSTNAME\nC1,Acme\n")

	mock.ExpectQuery("SHOW TABLES LIKE 'RM00101_CHILE'").
		WillReturnRows(sqlmock.NewRows([]string{"name"}))
	mock.ExpectExec(`CREATE TABLE "PUBLIC"."RM00101_CHILE"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("PUT file://").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`COPY INTO "PUBLIC"."RM00101_CHILE"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("REMOVE @~/staged_data/").WillReturnResult(sqlmock.NewResult(0, 0))

	stats := loader.LoadFile(context.Background(), path, "CHILE")
	require.NoError(t, stats.Err)
	assert.True(t, stats.Success)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadFileRenameFailureIsWarningNotFatal(t *testing.T) {
	svc, mock := newTestService(t)
	loader := NewLoaderWithService(svc)

	path := writeNormalizedCSV(t, t.TempDir(),
		"MAEGC_ESTADO_CHILE_normalized.csv", "ID\n1\n")

	mock.ExpectQuery("SHOW TABLES LIKE 'MAEGC_ESTADO_CHILE'").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("MAEGC_ESTADO_CHILE"))
	mock.ExpectExec("DROP TABLE IF EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("ALTER TABLE").WillReturnError(fmt.Errorf("lock timeout"))
	mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("PUT file://").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("COPY INTO").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("REMOVE").WillReturnResult(sqlmock.NewResult(0, 0))

	stats := loader.LoadFile(context.Background(), path, "CHILE")
	require.NoError(t, stats.Err)
	assert.True(t, stats.Success)
	assert.Contains(t, stats.Warning, "backup rename failed")
}

func TestLoadFileEmptyFileSkipped(t *testing.T) {
	svc, _ := newTestService(t)
	loader := NewLoaderWithService(svc)

	path := writeNormalizedCSV(t, t.TempDir(),
		"VACIO_PERU_normalized.csv", "COL_A,COL_B\n")

	stats := loader.LoadFile(context.Background(), path, "PERU")
	require.NoError(t, stats.Err)
	assert.True(t, stats.Success)
	assert.Equal(t, 0, stats.Loaded)
	assert.Contains(t, stats.Warning, "empty file")
}

func TestLoadFileCopyFailureSurfaces(t *testing.T) {
	svc, mock := newTestService(t)
	loader := NewLoaderWithService(svc)

	path := writeNormalizedCSV(t, t.TempDir(),
		"MAEGC_MARCA_PERU_normalized.csv", "ID\n1\n")

	mock.ExpectQuery("SHOW TABLES LIKE").WillReturnRows(sqlmock.NewRows([]string{"name"}))
	mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("PUT file://").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("COPY INTO").WillReturnError(fmt.Errorf("Numeric value 'x' is not recognized"))

	stats := loader.LoadFile(context.Background(), path, "PERU")
	require.Error(t, stats.Err)
	assert.False(t, stats.Success)
	assert.Equal(t, 0, stats.Loaded)
}
