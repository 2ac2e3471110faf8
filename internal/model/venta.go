package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venta is a committed sale. Codigo (VTA-###) is unique; the customer fields
// are a snapshot taken at checkout so the receipt survives later edits.
type Venta struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo              string     `gorm:"uniqueIndex;not null"`
	UsuarioID           *uuid.UUID `gorm:"type:uuid;index"`
	ClienteID           *uuid.UUID `gorm:"type:uuid;index"`
	ClienteNombre       *string
	ClienteDocumento    *string
	ClienteEmail        *string
	ClienteTelefono     *string
	Subtotal            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DescuentoPorcentaje decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	DescuentoTotal      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total               decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// MetodoPago: "efectivo" | "billetera" | "transferencia"
	MetodoPago string `gorm:"type:varchar(20);not null"`
	CreatedAt  time.Time

	Items   []VentaItem `gorm:"foreignKey:VentaID"`
	Usuario *Usuario    `gorm:"foreignKey:UsuarioID"`
}

// VentaItem is one line of a sale at the price it was sold.
type VentaItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null"`
	Codigo         string          `gorm:"not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}
