package dto

// MovimientoFilter is bound from the query string of the movement listings.
type MovimientoFilter struct {
	ProductoID string `form:"producto_id" validate:"omitempty,uuid"`
	Tipo       string `form:"tipo"        validate:"omitempty,oneof=venta"`
	Page       int    `form:"page,default=1"    validate:"min=1"`
	Limit      int    `form:"limit,default=50"  validate:"min=1,max=500"`
}

type MovimientoResponse struct {
	ID            string  `json:"id"`
	ProductoID    string  `json:"producto_id"`
	Producto      string  `json:"producto"`
	Tipo          string  `json:"tipo"`
	Cantidad      int     `json:"cantidad"`
	StockAnterior int     `json:"stock_anterior"`
	StockNuevo    int     `json:"stock_nuevo"`
	VentaID       *string `json:"venta_id"`
	Referencia    string  `json:"referencia"`
	CreatedAt     string  `json:"created_at"`
}

type MovimientoListResponse struct {
	Items      []MovimientoResponse `json:"items"`
	Pagination Pagination           `json:"pagination"`
}

// AlertaStockResponse is a product at or below the low-stock threshold.
type AlertaStockResponse struct {
	ProductoID  string `json:"producto_id"`
	Codigo      string `json:"codigo"`
	Nombre      string `json:"nombre"`
	StockActual int    `json:"stock_actual"`
	Umbral      int    `json:"umbral"`
}

type AlertaFilter struct {
	Umbral int `form:"umbral,default=5" validate:"min=0,max=10000"`
}
