package extract

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snowlift/pkg/errors"
	"snowlift/pkg/models"
)

func TestAddEANMatchesTrimmedCodes(t *testing.T) {
	open, mocks := sessionQueue(t, 1)
	engine := NewEngineWithOpener(models.Chile, open)

	mocks[0].ExpectQuery("FROM dbo.maeGC_ProductoEquiv").
		WithArgs("CL").
		WillReturnRows(sqlmock.NewRows([]string{"cProducto", "EAN"}).
			AddRow("123", "000111"))

	rs := &ResultSet{
		Columns: []string{"CodigoProducto", "Cantidad"},
		Rows: [][]interface{}{
			{"123 ", 5},
			{"999", 2},
		},
	}

	require.NoError(t, engine.AddEAN(context.Background(), rs))
	require.Equal(t, []string{"CodigoProducto", "Cantidad", "EAN"}, rs.Columns)
	assert.Equal(t, "000111", rs.Rows[0][2])
	assert.Equal(t, "", rs.Rows[1][2])
	assert.NoError(t, mocks[0].ExpectationsWereMet())
}

func TestAddEANIdempotent(t *testing.T) {
	// No sessions prepared: a second enrichment must not touch the server.
	open, _ := sessionQueue(t, 0)
	engine := NewEngineWithOpener(models.Chile, open)

	rs := &ResultSet{
		Columns: []string{"CodigoProducto", "EAN"},
		Rows:    [][]interface{}{{"123", "000111"}},
	}

	require.NoError(t, engine.AddEAN(context.Background(), rs))
	assert.Equal(t, []string{"CodigoProducto", "EAN"}, rs.Columns)
}

func TestAddEANWithoutProductColumn(t *testing.T) {
	open, _ := sessionQueue(t, 0)
	engine := NewEngineWithOpener(models.Peru, open)

	rs := &ResultSet{
		Columns: []string{"Cuenta", "Total"},
		Rows:    [][]interface{}{{"100", 9.5}},
	}

	err := engine.AddEAN(context.Background(), rs)
	require.Error(t, err)
	assert.True(t, errors.IsRecoverable(err))
	assert.Equal(t, errors.ErrCodeProductCodeMissing, errors.GetErrorCode(err))
	require.Equal(t, []string{"Cuenta", "Total", "EAN"}, rs.Columns)
	assert.Equal(t, "", rs.Rows[0][2])
}

func TestAddEANPrefersFirstAliasInPriorityOrder(t *testing.T) {
	open, mocks := sessionQueue(t, 1)
	engine := NewEngineWithOpener(models.Ecuador, open)

	mocks[0].ExpectQuery("FROM dbo.maeGC_ProductoEquiv").
		WithArgs("EC").
		WillReturnRows(sqlmock.NewRows([]string{"cProducto", "EAN"}).
			AddRow("A1", "777"))

	rs := &ResultSet{
		Columns: []string{"ITEMNMBR", "cProducto"},
		Rows:    [][]interface{}{{"ZZ", "A1"}},
	}

	// cProducto outranks ITEMNMBR, so the join key is column 1.
	require.NoError(t, engine.AddEAN(context.Background(), rs))
	assert.Equal(t, "777", rs.Rows[0][2])
}
