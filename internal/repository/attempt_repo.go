package repository

import (
	"context"

	"github.com/pazarhub/notify-service/internal/domain"
	"gorm.io/gorm"
)

type AttemptRepository interface {
	Create(ctx context.Context, a *domain.PushAttempt) error
	GetByNotificationID(ctx context.Context, notificationID string) ([]domain.PushAttempt, error)
}

type GormAttemptRepo struct {
	db *gorm.DB
}

func NewGormAttemptRepo(db *gorm.DB) *GormAttemptRepo {
	return &GormAttemptRepo{db: db}
}

func (r *GormAttemptRepo) Create(ctx context.Context, a *domain.PushAttempt) error {
	model := pushAttemptModelFromDomain(a)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if a != nil {
		*a = *pushAttemptModelToDomain(model)
	}
	return nil
}

func (r *GormAttemptRepo) GetByNotificationID(ctx context.Context, notificationID string) ([]domain.PushAttempt, error) {
	var models []PushAttemptModel
	err := r.db.WithContext(ctx).
		Where("notification_id = ?", notificationID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	attempts := make([]domain.PushAttempt, 0, len(models))
	for i := range models {
		attempts = append(attempts, *pushAttemptModelToDomain(&models[i]))
	}

	return attempts, nil
}
