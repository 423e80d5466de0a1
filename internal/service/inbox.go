package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pazarhub/notify-service/internal/domain"
	"github.com/pazarhub/notify-service/internal/repository"
	"go.uber.org/zap"
)

// Inbox is the per-user read surface over stored notifications. Every
// operation is scoped to the requesting user; a foreign notification id reads
// as not found rather than forbidden.
type Inbox struct {
	notifications repository.NotificationRepository
	logger        *zap.Logger
}

func NewInbox(notifications repository.NotificationRepository, logger *zap.Logger) (*Inbox, error) {
	if notifications == nil {
		return nil, fmt.Errorf("notification repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Inbox{
		notifications: notifications,
		logger:        logger,
	}, nil
}

func (s *Inbox) List(ctx context.Context, params repository.ListParams) ([]domain.Notification, int64, error) {
	params.UserID = strings.TrimSpace(params.UserID)
	if params.UserID == "" {
		return nil, 0, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	return s.notifications.List(ctx, params)
}

// GetAndMarkRead returns the user's notification and flips it to read. The
// returned row reflects the post-read state.
func (s *Inbox) GetAndMarkRead(ctx context.Context, userID, id string) (*domain.Notification, error) {
	userID = strings.TrimSpace(userID)
	id = strings.TrimSpace(id)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	if id == "" {
		return nil, fmt.Errorf("%w: notification id is required", domain.ErrValidation)
	}

	notification, err := s.notifications.GetByIDForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if !notification.IsRead {
		if err := s.notifications.MarkRead(ctx, userID, id); err != nil {
			return nil, err
		}
		notification.IsRead = true
	}

	return notification, nil
}

func (s *Inbox) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}

	updated, err := s.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}

	s.logger.Debug("inbox marked read",
		zap.String("userId", userID),
		zap.Int64("updated", updated),
	)
	return updated, nil
}

func (s *Inbox) ClearAll(ctx context.Context, userID string) (int64, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}

	deleted, err := s.notifications.ClearAll(ctx, userID)
	if err != nil {
		return 0, err
	}

	s.logger.Info("inbox cleared",
		zap.String("userId", userID),
		zap.Int64("deleted", deleted),
	)
	return deleted, nil
}
