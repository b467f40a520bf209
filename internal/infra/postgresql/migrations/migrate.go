package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/pharmaflow/pharmaml-gateway/internal/repository"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "000001_create_supplier_pharmaml_configs",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.SupplierConfigModel{}); err != nil {
					return err
				}
				return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_supplier_configs_country ON supplier_pharmaml_configs (country_code) WHERE enabled`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.SupplierConfigModel{})
			},
		},
		{
			ID: "000002_create_transmission_records",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.TransmissionRecordModel{}); err != nil {
					return err
				}
				indexes := []string{
					`CREATE INDEX IF NOT EXISTS idx_transmissions_order_created ON transmission_records (order_id, created_at DESC)`,
					`CREATE INDEX IF NOT EXISTS idx_transmissions_supplier_created ON transmission_records (supplier_id, created_at DESC)`,
					`CREATE INDEX IF NOT EXISTS idx_transmissions_order_success ON transmission_records (order_id) WHERE status = 'SUCCESS'`,
				}
				for _, sql := range indexes {
					if err := tx.Exec(sql).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.TransmissionRecordModel{})
			},
		},
	})

	return m.Migrate()
}
