package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cliente is a registered customer.
// Estado: "activo" | "inactivo"
type Cliente struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"index;not null"`
	Documento string    `gorm:"uniqueIndex;not null"`
	Email     *string
	Telefono  *string `gorm:"type:varchar(10)"`
	// DescuentoPersonalizado is a percentage in [0, 100].
	DescuentoPersonalizado decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Estado                 string          `gorm:"type:varchar(20);not null;default:'activo'"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}
