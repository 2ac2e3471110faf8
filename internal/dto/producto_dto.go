package dto

import "github.com/shopspring/decimal"

// ProductoResponse is the catalog entry served to the point of sale.
type ProductoResponse struct {
	ID          string          `json:"id"`
	Codigo      string          `json:"codigo"`
	Nombre      string          `json:"nombre"`
	Categoria   string          `json:"categoria"`
	PrecioVenta decimal.Decimal `json:"precio_venta"`
	StockActual int             `json:"stock_actual"`
}

type ProductoListResponse struct {
	Data []ProductoResponse `json:"data"`
}
