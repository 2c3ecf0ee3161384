package snowflake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferColumns(t *testing.T) {
	headers := []string{"ID", "PRECIO", "ACTIVO", "FECHA", "CREADO", "NOMBRE", "VACIO"}
	rows := [][]string{
		{"1", "10.5", "true", "2025-01-01", "2025-01-01 10:00:00", "Acme", ""},
		{"2", "3", "false", "2025-02-01", "2025-02-01 11:30:00", "Beta", ""},
	}

	defs := InferColumns(headers, rows)
	types := map[string]string{}
	for _, d := range defs {
		types[d.Name] = d.Type
	}

	assert.Equal(t, "INTEGER", types["ID"])
	assert.Equal(t, "FLOAT", types["PRECIO"])
	assert.Equal(t, "BOOLEAN", types["ACTIVO"])
	assert.Equal(t, "DATE", types["FECHA"])
	assert.Equal(t, "TIMESTAMP_NTZ", types["CREADO"])
	assert.Equal(t, textType, types["NOMBRE"])
	assert.Equal(t, textType, types["VACIO"])
}

func TestInferColumnWidensMixedNumerics(t *testing.T) {
	defs := InferColumns([]string{"N"}, [][]string{{"1"}, {"2.5"}, {"3"}})
	assert.Equal(t, "FLOAT", defs[0].Type)
}

func TestInferColumnMixedTypesFallBackToText(t *testing.T) {
	defs := InferColumns([]string{"X"}, [][]string{{"1"}, {"hello"}})
	assert.Equal(t, textType, defs[0].Type)
}

func TestInferColumnIgnoresNullTokens(t *testing.T) {
	defs := InferColumns([]string{"N"}, [][]string{{"NULL"}, {"7"}, {"NaN"}})
	assert.Equal(t, "INTEGER", defs[0].Type)
}

func TestInferColumnsPreservesOrder(t *testing.T) {
	defs := InferColumns([]string{"B", "A"}, [][]string{{"x", "1"}})
	assert.Equal(t, "B", defs[0].Name)
	assert.Equal(t, "A", defs[1].Name)
}
