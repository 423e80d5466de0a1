package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/pazarhub/notify-service/internal/repository"
	"gorm.io/gorm"
)

func createOrderNotificationsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_create_order_notifications",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.OrderNotificationModel{}); err != nil {
				return err
			}
			// order_id stays a plain indexed column on purpose: audit rows
			// must survive order-side deletes.
			return tx.Exec(`ALTER TABLE order_notifications ADD CONSTRAINT fk_order_notifications_notification FOREIGN KEY (notification_id) REFERENCES notifications (id) ON DELETE CASCADE`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.OrderNotificationModel{})
		},
	}
}
