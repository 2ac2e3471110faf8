package repository

import (
	"context"
	"errors"

	"github.com/kevinserna01/react-cabina-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VentaRepository interface {
	Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	// LastCodigo returns the numerically highest VTA-### code, nil when no
	// sale exists.
	LastCodigo(ctx context.Context) (*string, error)
	ExistsCodigo(ctx context.Context, codigo string) (bool, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return tx.WithContext(ctx).Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).Preload("Items.Producto").First(&v, "id = ?", id).Error
	return &v, err
}

func (r *ventaRepo) LastCodigo(ctx context.Context) (*string, error) {
	var v model.Venta
	// Lexical order breaks at VTA-1000, so order by the numeric suffix.
	err := r.db.WithContext(ctx).
		Select("codigo").
		Where("codigo ~ '^VTA-[0-9]+$'").
		Order("CAST(SUBSTRING(codigo FROM 5) AS BIGINT) DESC").
		Take(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v.Codigo, nil
}

func (r *ventaRepo) ExistsCodigo(ctx context.Context, codigo string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Venta{}).Where("codigo = ?", codigo).Count(&n).Error
	return n > 0, err
}
