package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/pazarhub/notify-service/internal/repository"
	"gorm.io/gorm"
)

func createPushAttemptsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000004_create_push_attempts",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&repository.PushAttemptModel{})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.PushAttemptModel{})
		},
	}
}
