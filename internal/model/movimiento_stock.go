package model

import (
	"time"

	"github.com/google/uuid"
)

// MovimientoTipoVenta is the only movement the sale transaction writes.
const MovimientoTipoVenta = "venta"

// MovimientoStock records one stock change of a product. Cantidad is negative
// for units leaving the store.
type MovimientoStock struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Tipo          string     `gorm:"type:varchar(20);not null"`
	Cantidad      int        `gorm:"not null"`
	StockAnterior int        `gorm:"not null"`
	StockNuevo    int        `gorm:"not null"`
	VentaID       *uuid.UUID `gorm:"type:uuid;index"`
	Referencia    string     // sale code for "venta"
	CreatedAt     time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (MovimientoStock) TableName() string { return "movimientos_stock" }
