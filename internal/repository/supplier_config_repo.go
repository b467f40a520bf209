package repository

import (
	"context"
	"errors"

	"github.com/pharmaflow/pharmaml-gateway/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SupplierConfigRepository is the persistence port for per-supplier
// PharmaML configuration. Configs are upserted, never deleted.
type SupplierConfigRepository interface {
	Get(ctx context.Context, supplierID string) (*domain.SupplierConfig, error)
	Save(ctx context.Context, cfg *domain.SupplierConfig) error
}

type GormSupplierConfigRepo struct {
	db *gorm.DB
}

func NewGormSupplierConfigRepo(db *gorm.DB) *GormSupplierConfigRepo {
	return &GormSupplierConfigRepo{db: db}
}

func (r *GormSupplierConfigRepo) Get(ctx context.Context, supplierID string) (*domain.SupplierConfig, error) {
	var model SupplierConfigModel
	err := r.db.WithContext(ctx).First(&model, "supplier_id = ?", supplierID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return supplierConfigModelToDomain(&model), nil
}

func (r *GormSupplierConfigRepo) Save(ctx context.Context, cfg *domain.SupplierConfig) error {
	model := supplierConfigModelFromDomain(cfg)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "supplier_id"}},
			UpdateAll: true,
		}).
		Create(model).Error
	if err != nil {
		return err
	}
	if cfg != nil {
		*cfg = *supplierConfigModelToDomain(model)
	}
	return nil
}
