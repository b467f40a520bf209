package repository

import (
	"context"
	"errors"

	"github.com/pharmaflow/pharmaml-gateway/internal/domain"
	"gorm.io/gorm"
)

const defaultHistoryLimit = 50

// TransmissionRepository is the persistence port for the transmission
// ledger. Rows are appended as PENDING, finalized exactly once, and never
// updated again.
type TransmissionRepository interface {
	Create(ctx context.Context, record *domain.TransmissionRecord) error
	Finalize(ctx context.Context, recordID string, fin domain.TransmissionFinalization) error
	HasSuccess(ctx context.Context, orderID string) (bool, error)
	LastTerminalStatus(ctx context.Context, orderID string) (*domain.TransmissionStatus, error)
	ListByOrder(ctx context.Context, orderID string, limit int) ([]domain.TransmissionRecord, error)
	ListBySupplier(ctx context.Context, supplierID string, limit int) ([]domain.TransmissionRecord, error)
}

type GormTransmissionRepo struct {
	db *gorm.DB
}

func NewGormTransmissionRepo(db *gorm.DB) *GormTransmissionRepo {
	return &GormTransmissionRepo{db: db}
}

func (r *GormTransmissionRepo) Create(ctx context.Context, record *domain.TransmissionRecord) error {
	model := transmissionModelFromDomain(record)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if record != nil {
		*record = *transmissionModelToDomain(model)
	}
	return nil
}

// Finalize applies the terminal values to a pending row. The status guard
// makes the pending-to-terminal transition happen at most once; a second
// finalization reports ErrConflict instead of mutating the audit trail.
func (r *GormTransmissionRepo) Finalize(ctx context.Context, recordID string, fin domain.TransmissionFinalization) error {
	if err := fin.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&TransmissionRecordModel{}).
		Where("id = ? AND status = ?", recordID, domain.StatusPending).
		Updates(map[string]any{
			"status":                fin.Status,
			"response_xml":          fin.ResponseXML,
			"error_code":            fin.ErrorCode,
			"message":               fin.Message,
			"supplier_order_number": fin.SupplierOrderNumber,
			"duration_ms":           fin.DurationMs,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&TransmissionRecordModel{}).
			Where("id = ?", recordID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrConflict
	}
	return nil
}

// HasSuccess reports whether at least one finalized successful attempt
// exists for the order. Pending rows never count.
func (r *GormTransmissionRepo) HasSuccess(ctx context.Context, orderID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&TransmissionRecordModel{}).
		Where("order_id = ? AND status = ?", orderID, domain.StatusSuccess).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormTransmissionRepo) LastTerminalStatus(ctx context.Context, orderID string) (*domain.TransmissionStatus, error) {
	var model TransmissionRecordModel
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND status <> ?", orderID, domain.StatusPending).
		Order("created_at DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	status := model.Status
	return &status, nil
}

func (r *GormTransmissionRepo) ListByOrder(ctx context.Context, orderID string, limit int) ([]domain.TransmissionRecord, error) {
	return r.list(ctx, "order_id = ?", orderID, limit)
}

func (r *GormTransmissionRepo) ListBySupplier(ctx context.Context, supplierID string, limit int) ([]domain.TransmissionRecord, error) {
	return r.list(ctx, "supplier_id = ?", supplierID, limit)
}

func (r *GormTransmissionRepo) list(ctx context.Context, where string, arg string, limit int) ([]domain.TransmissionRecord, error) {
	if limit < 1 {
		limit = defaultHistoryLimit
	}

	var models []TransmissionRecordModel
	err := r.db.WithContext(ctx).
		Where(where, arg).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	records := make([]domain.TransmissionRecord, 0, len(models))
	for i := range models {
		records = append(records, *transmissionModelToDomain(&models[i]))
	}

	return records, nil
}
