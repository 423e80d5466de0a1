package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/pazarhub/notify-service/internal/repository"
	"gorm.io/gorm"
)

func createUserDevicesTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000003_create_user_devices",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&repository.UserDeviceModel{})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.UserDeviceModel{})
		},
	}
}
