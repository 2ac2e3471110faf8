package dto

import "github.com/shopspring/decimal"

// ─── Filter / Pagination ─────────────────────────────────────────────────────

// ClienteFilter is bound from the query string of GET /v1/clientes.
// Search matches nombre, documento or email.
type ClienteFilter struct {
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=10" validate:"min=1,max=100"`
	Search string `form:"search"`
	Estado string `form:"estado"           validate:"omitempty,oneof=activo inactivo all"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// NewPagination derives the page count from total and limit.
func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearClienteRequest struct {
	Nombre                 string          `json:"nombre"                  validate:"required,min=2,max=120"`
	Documento              string          `json:"documento"               validate:"required,min=5,max=20"`
	Email                  *string         `json:"email"                   validate:"omitempty,email"`
	Telefono               *string         `json:"telefono"                validate:"omitempty,len=10,numeric"`
	DescuentoPersonalizado decimal.Decimal `json:"descuento_personalizado" validate:"min=0,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ClienteResponse struct {
	ID                     string          `json:"id"`
	Nombre                 string          `json:"nombre"`
	Documento              string          `json:"documento"`
	Email                  *string         `json:"email"`
	Telefono               *string         `json:"telefono"`
	DescuentoPersonalizado decimal.Decimal `json:"descuento_personalizado"`
	Estado                 string          `json:"estado"`
}

type ClienteListResponse struct {
	Items      []ClienteResponse `json:"items"`
	Pagination Pagination        `json:"pagination"`
}
