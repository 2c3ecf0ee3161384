// Package metadata holds the fixed business catalogs the pipeline depends
// on: the base-table list, the stored-procedure report registry, header
// mappings and per-table date-column hints. Everything here is read-only
// and injected into the components that need it.
package metadata

import "strings"

// BaseTables lists the source tables downloaded on every full extraction,
// in processing order.
var BaseTables = []string{
	"movGC_DocumentoxDistribucion",
	"movGC_vtDocumentoVtaCab",
	"movGC_vtDocumentoVtaDet",
	"maeGC_ProductoEquiv",
	"maeGC_cfEstado",
	"maeGC_cfTipoDocumento",
	"RM00101",
	"RM00201",
	"maeGC_cfConcepto",
	"maeGC_Producto",
	"maeGC_Marca",
}

// DetailTable is the sales-detail entity. Its extraction query fuses the
// EAN equivalence lookup into a single round trip instead of running the
// post-hoc join.
const DetailTable = "movGC_vtDocumentoVtaDet"

// IsDetailTable matches the detail entity case-insensitively, the same way
// the extraction engine receives table names from configuration.
func IsDetailTable(table string) bool {
	return strings.EqualFold(table, DetailTable)
}

// ProductCodeColumns lists the column names that may carry a product code,
// in priority order. The EAN enrichment join uses the first one present.
var ProductCodeColumns = []string{
	"Código de producto",
	"CodigoProducto",
	"cProducto",
	"cProductoVta",
	"ITEMNMBR",
	"Codigo Producto",
	"Codigo de producto",
}

// dateFilterColumns maps tables to the temporal column used for the
// extraction window, for the tables where it is known up front. Tables not
// listed here fall back to an INFORMATION_SCHEMA probe.
var dateFilterColumns = map[string]string{
	"movgc_documentoxdistribucion": "fEmision",
	"movgc_vtdocumentovtacab":      "fEmision",
	"movgc_vtdocumentovtadet":      "fEmision",
}

// DateFilterColumn returns the known temporal column for a table, or ""
// when the table has no static hint.
func DateFilterColumn(table string) string {
	return dateFilterColumns[strings.ToLower(table)]
}
