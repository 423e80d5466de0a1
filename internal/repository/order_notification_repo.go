package repository

import (
	"context"
	"errors"

	"github.com/pazarhub/notify-service/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderNotificationRepository interface {
	// Upsert creates the audit row for a notification or, when one already
	// exists, rewrites its status fields and replaces the snapshot whole.
	Upsert(ctx context.Context, on *domain.OrderNotification) error
	GetByNotificationID(ctx context.Context, notificationID string) (*domain.OrderNotification, error)
	// ListByOrder returns the order's audit records ordered by the parent
	// notification's creation time, which is the canonical status timeline.
	ListByOrder(ctx context.Context, orderID string) ([]domain.OrderNotification, error)
}

type GormOrderNotificationRepo struct {
	db *gorm.DB
}

func NewGormOrderNotificationRepo(db *gorm.DB) *GormOrderNotificationRepo {
	return &GormOrderNotificationRepo{db: db}
}

func (r *GormOrderNotificationRepo) Upsert(ctx context.Context, on *domain.OrderNotification) error {
	model, err := orderNotificationModelFromDomain(on)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "notification_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"order_id", "status_before", "status_after", "snapshot"}),
		}).
		Create(model).Error
	if err != nil {
		return err
	}

	if on != nil {
		restored, convErr := orderNotificationModelToDomain(model)
		if convErr != nil {
			return convErr
		}
		*on = *restored
	}
	return nil
}

func (r *GormOrderNotificationRepo) GetByNotificationID(ctx context.Context, notificationID string) (*domain.OrderNotification, error) {
	var model OrderNotificationModel
	err := r.db.WithContext(ctx).
		Where("notification_id = ?", notificationID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return orderNotificationModelToDomain(&model)
}

func (r *GormOrderNotificationRepo) ListByOrder(ctx context.Context, orderID string) ([]domain.OrderNotification, error) {
	var models []OrderNotificationModel
	err := r.db.WithContext(ctx).
		Model(&OrderNotificationModel{}).
		Select("order_notifications.*").
		Joins("JOIN notifications ON notifications.id = order_notifications.notification_id").
		Where("order_notifications.order_id = ?", orderID).
		Order("notifications.created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	records := make([]domain.OrderNotification, 0, len(models))
	for i := range models {
		record, convErr := orderNotificationModelToDomain(&models[i])
		if convErr != nil {
			return nil, convErr
		}
		records = append(records, *record)
	}
	return records, nil
}
