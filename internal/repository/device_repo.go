package repository

import (
	"context"

	"github.com/pazarhub/notify-service/internal/domain"
	"gorm.io/gorm"
)

type DeviceRepository interface {
	// Register atomically removes any existing row for the token (whoever
	// owns it) and inserts a fresh one, so the token always maps to exactly
	// one user.
	Register(ctx context.Context, device *domain.UserDevice) error
	// Unregister deletes the row only when it is owned by userID; a
	// mismatched owner is a no-op.
	Unregister(ctx context.Context, userID, token string) error
	TokensFor(ctx context.Context, userID string) ([]string, error)
	DevicesFor(ctx context.Context, userID string) ([]domain.UserDevice, error)
	// Evict removes every row for the token, regardless of owner.
	Evict(ctx context.Context, token string) error
}

type GormDeviceRepo struct {
	db *gorm.DB
}

func NewGormDeviceRepo(db *gorm.DB) *GormDeviceRepo {
	return &GormDeviceRepo{db: db}
}

func (r *GormDeviceRepo) Register(ctx context.Context, device *domain.UserDevice) error {
	model := userDeviceModelFromDomain(device)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("token = ?", model.Token).Delete(&UserDeviceModel{}).Error; err != nil {
			return err
		}
		return tx.Create(model).Error
	})
	if err != nil {
		return err
	}

	if device != nil {
		*device = *userDeviceModelToDomain(model)
	}
	return nil
}

func (r *GormDeviceRepo) Unregister(ctx context.Context, userID, token string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND token = ?", userID, token).
		Delete(&UserDeviceModel{}).Error
}

func (r *GormDeviceRepo) TokensFor(ctx context.Context, userID string) ([]string, error) {
	var tokens []string
	err := r.db.WithContext(ctx).
		Model(&UserDeviceModel{}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Pluck("token", &tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *GormDeviceRepo) DevicesFor(ctx context.Context, userID string) ([]domain.UserDevice, error) {
	var models []UserDeviceModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	devices := make([]domain.UserDevice, 0, len(models))
	for i := range models {
		devices = append(devices, *userDeviceModelToDomain(&models[i]))
	}
	return devices, nil
}

func (r *GormDeviceRepo) Evict(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).
		Where("token = ?", token).
		Delete(&UserDeviceModel{}).Error
}
