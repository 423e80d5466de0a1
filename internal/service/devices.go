package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pazarhub/notify-service/internal/domain"
	"github.com/pazarhub/notify-service/internal/repository"
	"go.uber.org/zap"
)

// DeviceRegistry manages push token registrations. A token belongs to
// whoever registered it last; re-registering moves it to the new user.
type DeviceRegistry struct {
	devices repository.DeviceRepository
	logger  *zap.Logger
	now     func() time.Time
}

func NewDeviceRegistry(devices repository.DeviceRepository, logger *zap.Logger) (*DeviceRegistry, error) {
	if devices == nil {
		return nil, fmt.Errorf("device repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DeviceRegistry{
		devices: devices,
		logger:  logger,
		now:     time.Now,
	}, nil
}

func (s *DeviceRegistry) Register(ctx context.Context, userID, token, platform string) (*domain.UserDevice, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	parsedPlatform, err := domain.ParsePlatformFromString(platform)
	if err != nil {
		return nil, err
	}

	device := &domain.UserDevice{
		ID:        uuid.NewString(),
		UserID:    strings.TrimSpace(userID),
		Token:     strings.TrimSpace(token),
		Platform:  parsedPlatform,
		CreatedAt: s.now().UTC(),
	}
	if err := device.Validate(); err != nil {
		return nil, err
	}

	if err := s.devices.Register(ctx, device); err != nil {
		return nil, fmt.Errorf("failed to register device: %w", err)
	}

	s.logger.Info("device registered",
		zap.String("userId", device.UserID),
		zap.String("platform", device.Platform.String()),
	)
	return device, nil
}

func (s *DeviceRegistry) Unregister(ctx context.Context, userID, token string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	userID = strings.TrimSpace(userID)
	token = strings.TrimSpace(token)
	if userID == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	if token == "" {
		return fmt.Errorf("%w: device token is required", domain.ErrValidation)
	}

	return s.devices.Unregister(ctx, userID, token)
}

func (s *DeviceRegistry) DevicesFor(ctx context.Context, userID string) ([]domain.UserDevice, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	return s.devices.DevicesFor(ctx, userID)
}
