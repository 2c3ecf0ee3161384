package metadata

// HeaderMap is the fixed business-term mapping applied before the generic
// transliteration rules. Keys are matched exactly against raw CSV headers.
var HeaderMap = map[string]string{
	"Rebate":            "REBATE",
	"Rebate Fact.":      "REBATE_FACT",
	"Estado Documento":  "ESTADO_DOCUMENTO",
	"Estado Anulado":    "ESTADO_ANULADO",
	"Tipo":              "TIPO",
	"Concepto":          "CONCEPTO",
	"Codigo":            "CODIGO",
	"Direccion":         "DIRECCION",
	"Serie":             "SERIE",
	"Correlativo":       "CORRELATIVO",
	"Marca":             "MARCA",
	"EAN":               "EAN",
	"Codigo Producto":   "CODIGO_PRODUCTO",
	"Nombre Producto":   "NOMBRE_PRODUCTO",
	"Categoria":         "CATEGORIA",
	"Numero Cliente":    "NUMERO_CLIENTE",
	"Nombre Cliente":    "NOMBRE_CLIENTE",
	"Clase Cliente":     "CLASE_CLIENTE",
	"Cod. Cliente":      "COD_CLIENTE",
	"Nombre":            "NOMBRE",
	"Razon":             "RAZON_SOCIAL",
	"Razón Social":      "RAZON_SOCIAL",
	"RUC":               "RUC",
	"RFC":               "RFC",
	"NIT":               "NIT",
	"DNI":               "DNI",
	"Cantidad":          "CANTIDAD",
	"Precio":            "PRECIO",
	"Subtotal":          "SUBTOTAL",
	"Descuento":         "DESCUENTO",
	"Total":             "TOTAL",
	"Fecha":             "FECHA",
	"Fecha Emision":     "FECHA_EMISION",
	"Fecha Vencimiento": "FECHA_VENCIMIENTO",
	"Moneda":            "MONEDA",
	"TC":                "TIPO_CAMBIO",
	"Almacen":           "ALMACEN",
	"Vendedor":          "VENDEDOR",
	"Zona":              "ZONA",
	"Region":            "REGION",
	"Pais":              "PAIS",
	"Ciudad":            "CIUDAD",
	"Departamento":      "DEPARTAMENTO",
	"Provincia":         "PROVINCIA",
	"Distrito":          "DISTRITO",
	"Comuna":            "COMUNA",
	"Telefono":          "TELEFONO",
	"Email":             "EMAIL",
	"Estado":            "ESTADO",
	"Observaciones":     "OBSERVACIONES",
	"Usuario":           "USUARIO",
	"Glosa":             "GLOSA",
}
