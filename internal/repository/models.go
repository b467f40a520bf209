package repository

import (
	"time"

	"github.com/pharmaflow/pharmaml-gateway/internal/domain"
)

// SupplierConfigModel is the persistence model for supplier_pharmaml_configs.
type SupplierConfigModel struct {
	SupplierID     string `gorm:"type:varchar(64);primaryKey"`
	Enabled        bool   `gorm:"not null;default:false"`
	EndpointURL    string `gorm:"type:varchar(512)"`
	DispatcherCode string `gorm:"type:varchar(64)"`
	DispatcherID   string `gorm:"type:varchar(64)"`
	SecretKey      string `gorm:"type:varchar(255)"`
	OfficineID     string `gorm:"type:varchar(64)"`
	CountryCode    string `gorm:"type:varchar(2)"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (SupplierConfigModel) TableName() string {
	return "supplier_pharmaml_configs"
}

// TransmissionRecordModel is the persistence model for transmission_records.
type TransmissionRecordModel struct {
	ID                  string                    `gorm:"type:uuid;primaryKey"`
	OrderID             string                    `gorm:"type:varchar(64);not null"`
	SupplierID          string                    `gorm:"type:varchar(64);not null"`
	RequestXML          *string                   `gorm:"type:text"`
	ResponseXML         *string                   `gorm:"type:text"`
	Status              domain.TransmissionStatus `gorm:"type:varchar(10);not null"`
	ErrorCode           *string                   `gorm:"type:varchar(64)"`
	Message             *string                   `gorm:"type:text"`
	SupplierOrderNumber *string                   `gorm:"type:varchar(64)"`
	DurationMs          *int64                    `gorm:"type:bigint"`
	CreatedAt           time.Time
}

func (TransmissionRecordModel) TableName() string {
	return "transmission_records"
}

func supplierConfigModelFromDomain(c *domain.SupplierConfig) *SupplierConfigModel {
	if c == nil {
		return nil
	}

	return &SupplierConfigModel{
		SupplierID:     c.SupplierID,
		Enabled:        c.Enabled,
		EndpointURL:    c.EndpointURL,
		DispatcherCode: c.DispatcherCode,
		DispatcherID:   c.DispatcherID,
		SecretKey:      c.SecretKey,
		OfficineID:     c.OfficineID,
		CountryCode:    c.CountryCode,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func supplierConfigModelToDomain(m *SupplierConfigModel) *domain.SupplierConfig {
	if m == nil {
		return nil
	}

	return &domain.SupplierConfig{
		SupplierID:     m.SupplierID,
		Enabled:        m.Enabled,
		EndpointURL:    m.EndpointURL,
		DispatcherCode: m.DispatcherCode,
		DispatcherID:   m.DispatcherID,
		SecretKey:      m.SecretKey,
		OfficineID:     m.OfficineID,
		CountryCode:    m.CountryCode,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func transmissionModelFromDomain(r *domain.TransmissionRecord) *TransmissionRecordModel {
	if r == nil {
		return nil
	}

	return &TransmissionRecordModel{
		ID:                  r.ID,
		OrderID:             r.OrderID,
		SupplierID:          r.SupplierID,
		RequestXML:          r.RequestXML,
		ResponseXML:         r.ResponseXML,
		Status:              r.Status,
		ErrorCode:           r.ErrorCode,
		Message:             r.Message,
		SupplierOrderNumber: r.SupplierOrderNumber,
		DurationMs:          r.DurationMs,
		CreatedAt:           r.CreatedAt,
	}
}

func transmissionModelToDomain(m *TransmissionRecordModel) *domain.TransmissionRecord {
	if m == nil {
		return nil
	}

	return &domain.TransmissionRecord{
		ID:                  m.ID,
		OrderID:             m.OrderID,
		SupplierID:          m.SupplierID,
		RequestXML:          m.RequestXML,
		ResponseXML:         m.ResponseXML,
		Status:              m.Status,
		ErrorCode:           m.ErrorCode,
		Message:             m.Message,
		SupplierOrderNumber: m.SupplierOrderNumber,
		DurationMs:          m.DurationMs,
		CreatedAt:           m.CreatedAt,
	}
}
