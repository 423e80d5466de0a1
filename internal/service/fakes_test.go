package service

import (
	"context"

	"github.com/pazarhub/notify-service/internal/domain"
	"github.com/pazarhub/notify-service/internal/push"
	"github.com/pazarhub/notify-service/internal/repository"
)

type fakeNotificationRepo struct {
	createFn         func(ctx context.Context, n *domain.Notification) error
	getByIDFn        func(ctx context.Context, id string) (*domain.Notification, error)
	getByIDForUserFn func(ctx context.Context, userID, id string) (*domain.Notification, error)
	getByDedupKeyFn  func(ctx context.Context, dedupKey string) (*domain.Notification, error)
	getBySignatureFn func(ctx context.Context, userID string, typ domain.NotificationType, payloadHash string) (*domain.Notification, error)
	listFn           func(ctx context.Context, params repository.ListParams) ([]domain.Notification, int64, error)
	markReadFn       func(ctx context.Context, userID, id string) error
	markAllReadFn    func(ctx context.Context, userID string) (int64, error)
	clearAllFn       func(ctx context.Context, userID string) (int64, error)
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	if f.createFn != nil {
		return f.createFn(ctx, n)
	}
	return nil
}

func (f *fakeNotificationRepo) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeNotificationRepo) GetByIDForUser(ctx context.Context, userID, id string) (*domain.Notification, error) {
	if f.getByIDForUserFn != nil {
		return f.getByIDForUserFn(ctx, userID, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeNotificationRepo) GetByDedupKey(ctx context.Context, dedupKey string) (*domain.Notification, error) {
	if f.getByDedupKeyFn != nil {
		return f.getByDedupKeyFn(ctx, dedupKey)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeNotificationRepo) GetBySignature(ctx context.Context, userID string, typ domain.NotificationType, payloadHash string) (*domain.Notification, error) {
	if f.getBySignatureFn != nil {
		return f.getBySignatureFn(ctx, userID, typ, payloadHash)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeNotificationRepo) List(ctx context.Context, params repository.ListParams) ([]domain.Notification, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, 0, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, userID, id string) error {
	if f.markReadFn != nil {
		return f.markReadFn(ctx, userID, id)
	}
	return nil
}

func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	if f.markAllReadFn != nil {
		return f.markAllReadFn(ctx, userID)
	}
	return 0, nil
}

func (f *fakeNotificationRepo) ClearAll(ctx context.Context, userID string) (int64, error) {
	if f.clearAllFn != nil {
		return f.clearAllFn(ctx, userID)
	}
	return 0, nil
}

type fakeDeviceRepo struct {
	registerFn   func(ctx context.Context, device *domain.UserDevice) error
	unregisterFn func(ctx context.Context, userID, token string) error
	tokensForFn  func(ctx context.Context, userID string) ([]string, error)
	devicesForFn func(ctx context.Context, userID string) ([]domain.UserDevice, error)
	evictFn      func(ctx context.Context, token string) error
}

func (f *fakeDeviceRepo) Register(ctx context.Context, device *domain.UserDevice) error {
	if f.registerFn != nil {
		return f.registerFn(ctx, device)
	}
	return nil
}

func (f *fakeDeviceRepo) Unregister(ctx context.Context, userID, token string) error {
	if f.unregisterFn != nil {
		return f.unregisterFn(ctx, userID, token)
	}
	return nil
}

func (f *fakeDeviceRepo) TokensFor(ctx context.Context, userID string) ([]string, error) {
	if f.tokensForFn != nil {
		return f.tokensForFn(ctx, userID)
	}
	return nil, nil
}

func (f *fakeDeviceRepo) DevicesFor(ctx context.Context, userID string) ([]domain.UserDevice, error) {
	if f.devicesForFn != nil {
		return f.devicesForFn(ctx, userID)
	}
	return nil, nil
}

func (f *fakeDeviceRepo) Evict(ctx context.Context, token string) error {
	if f.evictFn != nil {
		return f.evictFn(ctx, token)
	}
	return nil
}

type fakeAttemptRepo struct {
	createFn              func(ctx context.Context, a *domain.PushAttempt) error
	getByNotificationIDFn func(ctx context.Context, notificationID string) ([]domain.PushAttempt, error)
}

func (f *fakeAttemptRepo) Create(ctx context.Context, a *domain.PushAttempt) error {
	if f.createFn != nil {
		return f.createFn(ctx, a)
	}
	return nil
}

func (f *fakeAttemptRepo) GetByNotificationID(ctx context.Context, notificationID string) ([]domain.PushAttempt, error) {
	if f.getByNotificationIDFn != nil {
		return f.getByNotificationIDFn(ctx, notificationID)
	}
	return nil, nil
}

type fakeOrderNotificationRepo struct {
	upsertFn              func(ctx context.Context, on *domain.OrderNotification) error
	getByNotificationIDFn func(ctx context.Context, notificationID string) (*domain.OrderNotification, error)
	listByOrderFn         func(ctx context.Context, orderID string) ([]domain.OrderNotification, error)
}

func (f *fakeOrderNotificationRepo) Upsert(ctx context.Context, on *domain.OrderNotification) error {
	if f.upsertFn != nil {
		return f.upsertFn(ctx, on)
	}
	return nil
}

func (f *fakeOrderNotificationRepo) GetByNotificationID(ctx context.Context, notificationID string) (*domain.OrderNotification, error) {
	if f.getByNotificationIDFn != nil {
		return f.getByNotificationIDFn(ctx, notificationID)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeOrderNotificationRepo) ListByOrder(ctx context.Context, orderID string) ([]domain.OrderNotification, error) {
	if f.listByOrderFn != nil {
		return f.listByOrderFn(ctx, orderID)
	}
	return nil, nil
}

type fakeGateway struct {
	sendFn func(ctx context.Context, tokens []string, title, body string, data map[string]string) ([]push.TokenOutcome, error)
}

func (f *fakeGateway) Send(ctx context.Context, tokens []string, title, body string, data map[string]string) ([]push.TokenOutcome, error) {
	if f.sendFn != nil {
		return f.sendFn(ctx, tokens, title, body, data)
	}

	outcomes := make([]push.TokenOutcome, 0, len(tokens))
	for _, token := range tokens {
		outcomes = append(outcomes, push.TokenOutcome{Token: token, Class: push.ClassOK})
	}
	return outcomes, nil
}

type fakeRateLimiter struct {
	allowFn func(ctx context.Context, scope string) (bool, error)
	waitFn  func(ctx context.Context, scope string) error
}

func (f *fakeRateLimiter) Allow(ctx context.Context, scope string) (bool, error) {
	if f.allowFn != nil {
		return f.allowFn(ctx, scope)
	}
	return true, nil
}

func (f *fakeRateLimiter) Wait(ctx context.Context, scope string) error {
	if f.waitFn != nil {
		return f.waitFn(ctx, scope)
	}
	return nil
}
