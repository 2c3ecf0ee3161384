package extract

import "fmt"

// Report describes one named stored-procedure report: the remote procedure,
// its date-range contract, whether the EAN enrichment applies, and the
// local query used when the procedure does not exist on a server.
type Report struct {
	Name       string
	Procedure  string
	NeedsDates bool
	WantsEAN   bool
	// Fallback builds the replacement query. countryCode is the two-letter
	// code; from/to are empty for reports without a date contract.
	Fallback func(countryCode, from, to string) string
}

// Reports is the fixed catalog of extractable reports, keyed by name.
var Reports = map[string]Report{
	"ReporteUnicoDeVentas": {
		Name:       "Reporte Unico de Ventas",
		Procedure:  "uspGC_RptReporteUnicoDeVentasMACROS",
		NeedsDates: true,
		WantsEAN:   true,
		Fallback:   salesFallback,
	},
	"ReporteUnicoDeVentasSellin": {
		Name:       "Reporte Unico de Ventas Sellin",
		Procedure:  "uspGC_RptReporteUnicoDeVentasSellinMACROS",
		NeedsDates: true,
		WantsEAN:   true,
		Fallback:   salesFallback,
	},
	"ReporteUnicoDeVentasMercado": {
		Name:       "Reporte Unico de Ventas Mercado",
		Procedure:  "uspGC_RptReporteUnicoDeVentasMercadoMACROS",
		NeedsDates: true,
		WantsEAN:   true,
		Fallback:   salesFallback,
	},
	"ListarClientes": {
		Name:      "Listar Clientes",
		Procedure: "uspGC_ListarClientesMACROS",
		Fallback:  customersFallback,
	},
	"ListarProductosDetallado": {
		Name:      "Listar Productos Detallado",
		Procedure: "uspGC_ListarProductoDetalladoMACROS",
		Fallback:  productsFallback,
	},
	"StockXAlmacenLote": {
		Name:      "Stock por Almacen y Lote",
		Procedure: "uspGC_ListarStockXAlmacenLoteMACROS",
		Fallback:  stockFallback,
	},
	"PrecioLista": {
		Name:      "Obtener Precio Lista",
		Procedure: "uspGC_ObtenerPrecioListaMACROS",
		Fallback:  priceListFallback,
	},
	"ReporteCartera": {
		Name:       "Reporte Cartera",
		Procedure:  "usp_ReporteCarteraMACROS",
		NeedsDates: true,
		Fallback:   receivablesFallback,
	},
	"DocumentoVtaDetallada": {
		Name:       "Documento Vta Detallada",
		Procedure:  "uspGC_ListarDocumentoVtaDetalladaMACROS",
		NeedsDates: true,
		WantsEAN:   true,
		Fallback:   salesDetailFallback,
	},
	"DiferenciaPrecios": {
		Name:       "Diferencia Precios",
		Procedure:  "uspGC_ListarDiferenciaPreciosMACROS",
		NeedsDates: true,
		Fallback:   priceDiffFallback,
	},
	"FillRate": {
		Name:       "Fill Rate por Cliente Producto",
		Procedure:  "uspGC_ListarFillRateXClienteProductoMACROS",
		NeedsDates: true,
		Fallback:   fillRateFallback,
	},
	"LibroDiario": {
		Name:       "Reporte Libro Diario",
		Procedure:  "usp_ReporteLibroDiariMACROS",
		NeedsDates: true,
		Fallback:   journalFallback,
	},
	"LibroMayor": {
		Name:       "Reporte Libro Mayor",
		Procedure:  "usp_ReporteLibroMayorMACROS",
		NeedsDates: true,
		Fallback:   ledgerFallback,
	},
	"CuentaContraloria": {
		Name:       "Cuenta Contraloria",
		Procedure:  "uspGC_CuentaContraloriaMACROS",
		NeedsDates: true,
		Fallback:   comptrollerFallback,
	},
}

// ReportKeys returns the catalog keys in a stable order.
func ReportKeys() []string {
	keys := []string{
		"ReporteUnicoDeVentas",
		"ReporteUnicoDeVentasSellin",
		"ReporteUnicoDeVentasMercado",
		"ListarClientes",
		"ListarProductosDetallado",
		"StockXAlmacenLote",
		"PrecioLista",
		"ReporteCartera",
		"DocumentoVtaDetallada",
		"DiferenciaPrecios",
		"FillRate",
		"LibroDiario",
		"LibroMayor",
		"CuentaContraloria",
	}
	return keys
}

func salesFallback(countryCode, from, to string) string {
	return fmt.Sprintf(`WITH EAN_LOOKUP AS (
    SELECT RTRIM(cProducto) AS cProducto, RTRIM(cProductoEquiv) AS EAN
    FROM dbo.maeGC_ProductoEquiv WITH (NOLOCK)
    WHERE cEquivalencia = 'EAN12' AND cPais = '%s'
)
SELECT
    cab.cSerie + '-' + CAST(cab.nCorrelativo AS VARCHAR) AS NumeroDocumento,
    cab.fEmision AS FechaDocumento,
    cab.cCliente AS CodigoCliente,
    cab.dCliente AS NombreCliente,
    det.cProductoVta AS CodigoProducto,
    det.dProductoVta AS DescripcionProducto,
    COALESCE(ean.EAN, '') AS EAN,
    det.nCantidad AS Cantidad,
    det.nPrecioOrig AS PrecioUnitario,
    det.nTotalOrig AS PrecioExtendido,
    cab.nSubTotal AS Subtotal,
    cab.nImpuesto AS Impuesto,
    cab.nTotal AS TotalDocumento
FROM dbo.movGC_VtDocumentoVtaCab cab WITH (NOLOCK, INDEX(0))
INNER JOIN dbo.movGC_VtDocumentoVtaDet det WITH (NOLOCK, INDEX(0))
    ON cab.cSerie = det.cSerie AND cab.nCorrelativo = det.nCorrelativo
LEFT JOIN EAN_LOOKUP ean ON RTRIM(det.cProductoVta) = ean.cProducto
WHERE cab.fEmision >= '%s'
    AND cab.fEmision <= '%s'
OPTION (MAXDOP 4, OPTIMIZE FOR UNKNOWN)`, countryCode, from, to)
}

func customersFallback(_, _, _ string) string {
	return `SELECT
    RTRIM(CUSTNMBR) AS [Cod. Cliente],
    RTRIM(CUSTNAME) AS [Razón],
    RTRIM(ADDRESS1) AS [Dirección],
    RTRIM(COUNTRY) AS [Pais],
    RTRIM(CITY) AS [Ciudad],
    RTRIM(STATE) AS [Estado],
    RTRIM(CUSTCLAS) AS [Crédito],
    RTRIM(CURNCYID) AS [Moneda],
    CRLMTAMT AS [Cupo],
    (CASE WHEN INACTIVE = 1 THEN 'SI' ELSE 'NO' END) AS [Inactivo],
    (CASE WHEN HOLD = 1 THEN 'SI' ELSE 'NO' END) AS [Suspendido],
    CREATDDT AS [Fec. Creación]
FROM RM00101 WITH (NOLOCK)
ORDER BY CUSTNAME`
}

func productsFallback(_, _, _ string) string {
	return `SELECT
    RTRIM(ITEMNMBR) AS [Código],
    RTRIM(ITEMDESC) AS [Descripción],
    RTRIM(ITMSHNAM) AS [Desc. Corta],
    RTRIM(ITMCLSCD) AS [Clase],
    RTRIM(ITEMTYPE) AS [Tipo],
    CURRCOST AS [Costo Actual],
    STNDCOST AS [Costo Estándar],
    (CASE WHEN INACTIVE = 1 THEN 'SI' ELSE 'NO' END) AS [Inactivo]
FROM IV00101 WITH (NOLOCK)
ORDER BY ITEMDESC`
}

func stockFallback(_, _, _ string) string {
	return `SELECT
    RTRIM(iv.ITEMNMBR) AS [Código Producto],
    RTRIM(iv.ITEMDESC) AS [Descripción],
    RTRIM(iv00102.LOCNCODE) AS [Almacén],
    RTRIM(iv00102.LOTNUMBR) AS [Lote],
    iv00102.QTYONHND AS [Cantidad],
    iv00102.DATERECD AS [Fecha Recepción],
    iv00102.EXPNDATE AS [Fecha Vencimiento]
FROM IV00102 iv00102 WITH (NOLOCK)
INNER JOIN IV00101 iv WITH (NOLOCK) ON iv00102.ITEMNMBR = iv.ITEMNMBR
WHERE iv00102.QTYONHND > 0
ORDER BY iv.ITEMDESC, iv00102.LOCNCODE, iv00102.LOTNUMBR`
}

func priceListFallback(_, _, _ string) string {
	return `SELECT
    RTRIM(PRCLEVEL) AS [Nivel Precio],
    RTRIM(ITEMNMBR) AS [Código Producto],
    RTRIM(UOFM) AS [Unidad Medida],
    CURNCYID AS [Moneda],
    LISTPRCE AS [Precio Lista],
    STNDCOST AS [Costo Estándar]
FROM IV00108 WITH (NOLOCK)
ORDER BY ITEMNMBR, PRCLEVEL`
}

func receivablesFallback(_, from, to string) string {
	return fmt.Sprintf(`SELECT
    RTRIM(rm.CUSTNMBR) AS NumeroCliente,
    RTRIM(cust.CUSTNAME) AS NombreCliente,
    RTRIM(rm.DOCNUMBR) AS NumeroDocumento,
    RTRIM(dt.DOCDESCR) AS TipoDocumento,
    rm.DOCDATE AS FechaDocumento,
    rm.DUEDATE AS FechaVencimiento,
    RTRIM(rm.CURNCYID) AS Moneda,
    rm.ORTRXAMT AS MontoOriginal,
    rm.CURTRXAM AS MontoActual,
    (rm.ORTRXAMT - rm.CURTRXAM) AS MontoPagado,
    DATEDIFF(day, rm.DUEDATE, GETDATE()) AS DiasVencido
FROM RM20101 rm WITH (NOLOCK)
INNER JOIN RM00101 cust WITH (NOLOCK) ON rm.CUSTNMBR = cust.CUSTNMBR
LEFT JOIN RM40401 dt WITH (NOLOCK) ON rm.RMDTYPAL = dt.RMDTYPAL
WHERE rm.DOCDATE BETWEEN '%s' AND '%s'
    AND rm.CURTRXAM > 0
ORDER BY rm.CUSTNMBR, rm.DOCDATE`, from, to)
}

func salesDetailFallback(_, from, to string) string {
	return fmt.Sprintf(`SELECT
    RTRIM(h.SOPNUMBE) AS [Número Documento],
    h.SOPTYPE AS [Tipo],
    h.DOCDATE AS [Fecha],
    RTRIM(h.CUSTNMBR) AS [Código Cliente],
    RTRIM(c.CUSTNAME) AS [Nombre Cliente],
    RTRIM(d.ITEMNMBR) AS [Código Producto],
    RTRIM(d.ITEMDESC) AS [Descripción Producto],
    d.QUANTITY AS [Cantidad],
    d.UNITPRCE AS [Precio Unitario],
    d.XTNDPRCE AS [Precio Extendido],
    RTRIM(d.UOFM) AS [Unidad Medida],
    RTRIM(h.BACHNUMB) AS [Número Lote],
    h.SUBTOTAL AS [Subtotal],
    h.TAXAMNT AS [Impuesto],
    h.DOCAMNT AS [Total]
FROM SOP30200 h WITH (NOLOCK)
INNER JOIN SOP30300 d WITH (NOLOCK) ON h.SOPNUMBE = d.SOPNUMBE AND h.SOPTYPE = d.SOPTYPE
LEFT JOIN RM00101 c WITH (NOLOCK) ON h.CUSTNMBR = c.CUSTNMBR
WHERE h.DOCDATE BETWEEN '%s' AND '%s'
ORDER BY h.DOCDATE, h.SOPNUMBE, d.LNITMSEQ`, from, to)
}

func priceDiffFallback(_, from, to string) string {
	return fmt.Sprintf(`SELECT
    RTRIM(d.ITEMNMBR) AS [Código Producto],
    RTRIM(d.ITEMDESC) AS [Descripción],
    RTRIM(h.SOPNUMBE) AS [Número Documento],
    h.DOCDATE AS [Fecha],
    RTRIM(h.CUSTNMBR) AS [Código Cliente],
    d.UNITPRCE AS [Precio Venta],
    i.LISTPRCE AS [Precio Lista],
    (d.UNITPRCE - i.LISTPRCE) AS [Diferencia],
    CASE
        WHEN i.LISTPRCE > 0 THEN ((d.UNITPRCE - i.LISTPRCE) / i.LISTPRCE) * 100
        ELSE 0
    END AS [%% Diferencia]
FROM SOP30200 h WITH (NOLOCK)
INNER JOIN SOP30300 d WITH (NOLOCK) ON h.SOPNUMBE = d.SOPNUMBE AND h.SOPTYPE = d.SOPTYPE
LEFT JOIN IV00101 i WITH (NOLOCK) ON d.ITEMNMBR = i.ITEMNMBR
WHERE h.DOCDATE BETWEEN '%s' AND '%s'
    AND ABS(d.UNITPRCE - ISNULL(i.LISTPRCE, 0)) > 0.01
ORDER BY h.DOCDATE, d.ITEMNMBR`, from, to)
}

func fillRateFallback(_, from, to string) string {
	return fmt.Sprintf(`SELECT
    RTRIM(h.CUSTNMBR) AS [Código Cliente],
    RTRIM(c.CUSTNAME) AS [Nombre Cliente],
    RTRIM(d.ITEMNMBR) AS [Código Producto],
    RTRIM(d.ITEMDESC) AS [Descripción Producto],
    SUM(d.QUANTITY) AS [Cantidad Pedida],
    SUM(d.QTYTOINV) AS [Cantidad Entregada],
    SUM(d.QUANTITY - d.QTYTOINV) AS [Cantidad Pendiente],
    CASE
        WHEN SUM(d.QUANTITY) > 0 THEN (SUM(d.QTYTOINV) / SUM(d.QUANTITY)) * 100
        ELSE 0
    END AS [Fill Rate %%]
FROM SOP30200 h WITH (NOLOCK)
INNER JOIN SOP30300 d WITH (NOLOCK) ON h.SOPNUMBE = d.SOPNUMBE AND h.SOPTYPE = d.SOPTYPE
LEFT JOIN RM00101 c WITH (NOLOCK) ON h.CUSTNMBR = c.CUSTNMBR
WHERE h.DOCDATE BETWEEN '%s' AND '%s'
GROUP BY h.CUSTNMBR, c.CUSTNAME, d.ITEMNMBR, d.ITEMDESC
ORDER BY h.CUSTNMBR, d.ITEMNMBR`, from, to)
}

func journalFallback(_, from, to string) string {
	return fmt.Sprintf(`SELECT
    RTRIM(JRNENTRY) AS [Número Asiento],
    TRXDATE AS [Fecha Transacción],
    RTRIM(REFRENCE) AS [Referencia],
    RTRIM(ACTNUMST) AS [Cuenta Contable],
    RTRIM(DSCRIPTN) AS [Descripción],
    DEBITAMT AS [Débito],
    CRDTAMNT AS [Crédito],
    RTRIM(ORGNTSRC) AS [Origen],
    RTRIM(ORMSTRID) AS [ID Maestro],
    RTRIM(ORMSTRNM) AS [Nombre Maestro]
FROM GL20000 WITH (NOLOCK)
WHERE TRXDATE BETWEEN '%s' AND '%s'
ORDER BY TRXDATE, JRNENTRY, SEQNUMBR`, from, to)
}

func ledgerFallback(_, from, to string) string {
	return fmt.Sprintf(`SELECT
    RTRIM(ACTNUMST) AS [Cuenta Contable],
    RTRIM(ACTDESCR) AS [Descripción Cuenta],
    TRXDATE AS [Fecha],
    RTRIM(JRNENTRY) AS [Asiento],
    RTRIM(REFRENCE) AS [Referencia],
    DEBITAMT AS [Débito],
    CRDTAMNT AS [Crédito],
    (DEBITAMT - CRDTAMNT) AS [Saldo Movimiento]
FROM GL20000 WITH (NOLOCK)
WHERE TRXDATE BETWEEN '%s' AND '%s'
ORDER BY ACTNUMST, TRXDATE, JRNENTRY`, from, to)
}

func comptrollerFallback(_, from, to string) string {
	return fmt.Sprintf(`SELECT
    RTRIM(gl.ACTNUMST) AS [Cuenta],
    RTRIM(a.ACTDESCR) AS [Descripción],
    gl.TRXDATE AS [Fecha],
    RTRIM(gl.REFRENCE) AS [Referencia],
    gl.DEBITAMT AS [Débito],
    gl.CRDTAMNT AS [Crédito],
    RTRIM(gl.ORGNTSRC) AS [Origen],
    RTRIM(gl.ORMSTRID) AS [Documento Origen]
FROM GL20000 gl WITH (NOLOCK)
LEFT JOIN GL00100 a WITH (NOLOCK) ON gl.ACTINDX = a.ACTINDX
WHERE gl.TRXDATE BETWEEN '%s' AND '%s'
    AND gl.ACTNUMST LIKE '1%%'
ORDER BY gl.ACTNUMST, gl.TRXDATE`, from, to)
}
