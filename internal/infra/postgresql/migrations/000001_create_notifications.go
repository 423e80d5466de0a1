package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/pazarhub/notify-service/internal/repository"
	"gorm.io/gorm"
)

func createNotificationsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_notifications",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.NotificationModel{}); err != nil {
				return err
			}
			// Two partial unique indexes carry the dedup contract: the
			// explicit key when the caller provides one, otherwise the
			// user/type/payload signature.
			indexes := []string{
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_notifications_dedup_key ON notifications (dedup_key) WHERE dedup_key IS NOT NULL`,
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_notifications_signature ON notifications (user_id, notification_type, payload_hash) WHERE dedup_key IS NULL`,
				`CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications (user_id, created_at DESC)`,
			}
			for _, sql := range indexes {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.NotificationModel{})
		},
	}
}
