package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	ProductoID     string          `json:"producto_id"     validate:"required,uuid"`
	Codigo         string          `json:"codigo"          validate:"required"`
	Cantidad       int             `json:"cantidad"        validate:"required,min=1"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"min=0"`
	Subtotal       decimal.Decimal `json:"subtotal"        validate:"min=0"`
}

// ClienteVentaSnapshot is the customer as it was selected at checkout.
// ID is empty for a walk-in customer that was never registered.
type ClienteVentaSnapshot struct {
	ID        *string `json:"id"        validate:"omitempty,uuid"`
	Nombre    string  `json:"nombre"    validate:"required"`
	Documento string  `json:"documento"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Telefono  *string `json:"telefono"`
}

// CrearVentaRequest commits a sale under a previously reserved code.
type CrearVentaRequest struct {
	Codigo              string                `json:"codigo"               validate:"required,startswith=VTA-,max=20"`
	Sesion              string                `json:"sesion"               validate:"required,uuid"`
	Items               []ItemVentaRequest    `json:"items"                validate:"required,min=1,dive"`
	MetodoPago          string                `json:"metodo_pago"          validate:"required,oneof=efectivo billetera transferencia"`
	Cliente             *ClienteVentaSnapshot `json:"cliente,omitempty"`
	DescuentoPorcentaje *decimal.Decimal      `json:"descuento_porcentaje,omitempty"`
	Total               decimal.Decimal       `json:"total"                validate:"min=0"`
	// Trabajador must match the JWT subject when sent.
	Trabajador *string `json:"trabajador,omitempty" validate:"omitempty,uuid"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	ProductoID     string          `json:"producto_id"`
	Codigo         string          `json:"codigo"`
	Producto       string          `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID                  string              `json:"id"`
	Codigo              string              `json:"codigo"`
	Items               []ItemVentaResponse `json:"items"`
	Subtotal            decimal.Decimal     `json:"subtotal"`
	DescuentoPorcentaje decimal.Decimal     `json:"descuento_porcentaje"`
	DescuentoTotal      decimal.Decimal     `json:"descuento_total"`
	Total               decimal.Decimal     `json:"total"`
	MetodoPago          string              `json:"metodo_pago"`
	Cliente             *ClienteResponse    `json:"cliente"`
	CreatedAt           string              `json:"created_at"`
}
