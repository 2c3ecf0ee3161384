package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseTablesCatalog(t *testing.T) {
	assert.Len(t, BaseTables, 11)
	assert.Contains(t, BaseTables, DetailTable)
	assert.Contains(t, BaseTables, "maeGC_ProductoEquiv")
}

func TestIsDetailTable(t *testing.T) {
	assert.True(t, IsDetailTable("movGC_vtDocumentoVtaDet"))
	assert.True(t, IsDetailTable("MOVGC_VTDOCUMENTOVTADET"))
	assert.False(t, IsDetailTable("movGC_vtDocumentoVtaCab"))
}

func TestDateFilterColumn(t *testing.T) {
	assert.Equal(t, "fEmision", DateFilterColumn("movGC_vtDocumentoVtaDet"))
	assert.Equal(t, "fEmision", DateFilterColumn("MOVGC_VTDOCUMENTOVTACAB"))
	assert.Empty(t, DateFilterColumn("maeGC_Marca"))
}

func TestProductCodeColumnPriority(t *testing.T) {
	assert.Equal(t, "Código de producto", ProductCodeColumns[0])
	assert.Contains(t, ProductCodeColumns, "ITEMNMBR")
	assert.Contains(t, ProductCodeColumns, "cProductoVta")
}

func TestHeaderMapBusinessTerms(t *testing.T) {
	assert.Equal(t, "TIPO_CAMBIO", HeaderMap["TC"])
	assert.Equal(t, "RAZON_SOCIAL", HeaderMap["Razón Social"])
	assert.Equal(t, "RAZON_SOCIAL", HeaderMap["Razon"])
	assert.Equal(t, "REBATE_FACT", HeaderMap["Rebate Fact."])
}
