package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pazarhub/notify-service/internal/content"
	"github.com/pazarhub/notify-service/internal/domain"
	"github.com/pazarhub/notify-service/internal/observability"
	"github.com/pazarhub/notify-service/internal/push"
	"github.com/pazarhub/notify-service/internal/ratelimit"
	"github.com/pazarhub/notify-service/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	defaultPushTimeout          = 5 * time.Second
	defaultMaxPushAttempts      = 3
	defaultBroadcastConcurrency = 8
	maxBroadcastSize            = 1000

	baseRetryDelay       = 200 * time.Millisecond
	maxRetryDelay        = 5 * time.Second
	maxRetryJitterMillis = 100

	pushLimiterScope = "push"
)

// DispatcherConfig tunes the delivery side of the dispatcher. Zero values
// fall back to defaults.
type DispatcherConfig struct {
	// PushTimeout bounds a single gateway call, not the whole dispatch.
	PushTimeout time.Duration
	// MaxPushAttempts caps in-call retries for transiently failed tokens.
	MaxPushAttempts int
	// BroadcastConcurrency limits parallel per-user deliveries in NotifyMany.
	BroadcastConcurrency int
}

// Dispatcher owns the write path: durable per-user notification rows with
// storage-level dedup, then best-effort push delivery. A delivery failure
// never rolls back the row.
type Dispatcher struct {
	notifications repository.NotificationRepository
	devices       repository.DeviceRepository
	attempts      repository.AttemptRepository
	gateway       push.Gateway
	rateLimiter   ratelimit.RateLimiter
	logger        *zap.Logger
	metrics       *observability.Metrics

	pushTimeout time.Duration
	maxAttempts int
	concurrency int
	now         func() time.Time
	randIntn    func(n int) int
}

func NewDispatcher(
	notifications repository.NotificationRepository,
	devices repository.DeviceRepository,
	attempts repository.AttemptRepository,
	gateway push.Gateway,
	rateLimiter ratelimit.RateLimiter,
	cfg DispatcherConfig,
	logger *zap.Logger,
) (*Dispatcher, error) {
	if notifications == nil {
		return nil, fmt.Errorf("notification repository is required")
	}
	if devices == nil {
		return nil, fmt.Errorf("device repository is required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("push gateway is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.PushTimeout <= 0 {
		cfg.PushTimeout = defaultPushTimeout
	}
	if cfg.MaxPushAttempts < 1 {
		cfg.MaxPushAttempts = defaultMaxPushAttempts
	}
	if cfg.BroadcastConcurrency < 1 {
		cfg.BroadcastConcurrency = defaultBroadcastConcurrency
	}

	return &Dispatcher{
		notifications: notifications,
		devices:       devices,
		attempts:      attempts,
		gateway:       gateway,
		rateLimiter:   rateLimiter,
		logger:        logger,
		pushTimeout:   cfg.PushTimeout,
		maxAttempts:   cfg.MaxPushAttempts,
		concurrency:   cfg.BroadcastConcurrency,
		now:           time.Now,
		randIntn:      rand.Intn,
	}, nil
}

func (s *Dispatcher) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// Notify persists one notification for the user and pushes it to the user's
// registered devices. A duplicate (same dedup key, or same user/type/payload
// when no key is given) resolves to the already-stored row without a second
// push. Push failures are logged and audited but never returned.
func (s *Dispatcher) Notify(
	ctx context.Context,
	userID string,
	message string,
	notificationType domain.NotificationType,
	payload domain.Payload,
	dedupKey *string,
) (*domain.Notification, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	notification, err := s.createNotification(ctx, userID, message, notificationType, payload, dedupKey)
	if err != nil {
		return nil, err
	}
	if notification.existing {
		return notification.row, nil
	}

	s.deliver(ctx, notification.row)
	return notification.row, nil
}

// NotifyMany creates one notification per recipient and fans the pushes out
// concurrently. Recipients whose row would be a duplicate are skipped
// silently; the returned slice holds only freshly created rows.
func (s *Dispatcher) NotifyMany(
	ctx context.Context,
	userIDs []string,
	message string,
	notificationType domain.NotificationType,
	payload domain.Payload,
) ([]domain.Notification, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if len(userIDs) == 0 {
		return nil, fmt.Errorf("%w: broadcast must include at least one recipient", domain.ErrValidation)
	}
	if len(userIDs) > maxBroadcastSize {
		return nil, fmt.Errorf("%w: broadcast size exceeds %d", domain.ErrValidation, maxBroadcastSize)
	}

	created := make([]domain.Notification, 0, len(userIDs))
	seen := make(map[string]struct{}, len(userIDs))
	for _, userID := range userIDs {
		userID = strings.TrimSpace(userID)
		if userID == "" {
			continue
		}
		if _, duplicateRecipient := seen[userID]; duplicateRecipient {
			continue
		}
		seen[userID] = struct{}{}

		notification, err := s.createNotification(ctx, userID, message, notificationType, payload, nil)
		if err != nil {
			return nil, err
		}
		if notification.existing {
			continue
		}
		created = append(created, *notification.row)
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range created {
		row := created[i]
		g.Go(func() error {
			s.deliver(groupCtx, &row)
			return nil
		})
	}
	_ = g.Wait()

	return created, nil
}

type createResult struct {
	row      *domain.Notification
	existing bool
}

func (s *Dispatcher) createNotification(
	ctx context.Context,
	userID string,
	message string,
	notificationType domain.NotificationType,
	payload domain.Payload,
	dedupKey *string,
) (*createResult, error) {
	notification := &domain.Notification{
		ID:          uuid.NewString(),
		UserID:      strings.TrimSpace(userID),
		Message:     strings.TrimSpace(message),
		Type:        notificationType,
		Payload:     payload,
		PayloadHash: payload.Hash(),
		DedupKey:    normalizeOptionalString(dedupKey),
		CreatedAt:   s.now().UTC(),
	}
	if err := notification.Validate(); err != nil {
		return nil, err
	}

	if err := s.notifications.Create(ctx, notification); err != nil {
		existing, resolved, resolveErr := s.resolveDuplicate(ctx, err, notification)
		if resolveErr != nil {
			return nil, resolveErr
		}
		if resolved {
			return &createResult{row: existing, existing: true}, nil
		}
		return nil, err
	}

	s.metrics.IncNotificationCreated(notification.Type.String())
	return &createResult{row: notification}, nil
}

// resolveDuplicate turns a unique-index violation into the already-stored
// row. With a dedup key the key index decides; without one the
// user/type/payload signature index does.
func (s *Dispatcher) resolveDuplicate(
	ctx context.Context,
	createErr error,
	notification *domain.Notification,
) (*domain.Notification, bool, error) {
	if !isUniqueViolationError(createErr) {
		return nil, false, nil
	}

	if notification.DedupKey != nil {
		existing, err := s.notifications.GetByDedupKey(ctx, *notification.DedupKey)
		if err != nil {
			return nil, false, fmt.Errorf("failed to load existing notification after dedup conflict: %w", err)
		}
		s.metrics.IncDuplicateSuppressed("dedup_key")
		s.logger.Info("duplicate notification suppressed",
			zap.String("existingId", existing.ID),
			zap.String("dedupKey", *notification.DedupKey),
		)
		return existing, true, nil
	}

	existing, err := s.notifications.GetBySignature(ctx, notification.UserID, notification.Type, notification.PayloadHash)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load existing notification after signature conflict: %w", err)
	}
	s.metrics.IncDuplicateSuppressed("signature")
	s.logger.Info("duplicate notification suppressed",
		zap.String("existingId", existing.ID),
		zap.String("userId", notification.UserID),
		zap.String("type", notification.Type.String()),
	)
	return existing, true, nil
}

// deliver pushes a freshly created notification to every registered device
// token of its user. Best effort: failures are logged and audited, the stored
// row stands regardless.
func (s *Dispatcher) deliver(ctx context.Context, notification *domain.Notification) {
	logger := observability.WithContextLogger(s.logger, ctx)

	tokens, err := s.devices.TokensFor(ctx, notification.UserID)
	if err != nil {
		logger.Error("failed to load device tokens",
			zap.String("notificationId", notification.ID),
			zap.String("userId", notification.UserID),
			zap.Error(err),
		)
		return
	}
	if len(tokens) == 0 {
		logger.Debug("no registered devices, skipping push",
			zap.String("notificationId", notification.ID),
			zap.String("userId", notification.UserID),
		)
		return
	}

	payloadData := notification.Payload.Strings()
	title, body := content.Resolve(notification.Type, payloadData)

	data := make(map[string]string, len(payloadData)+2)
	for k, v := range payloadData {
		data[k] = v
	}
	data["notification_id"] = notification.ID
	data["type"] = notification.Type.String()

	if s.rateLimiter != nil {
		if err := s.rateLimiter.Wait(ctx, pushLimiterScope); err != nil {
			logger.Warn("rate limiter wait failed, skipping push",
				zap.String("notificationId", notification.ID),
				zap.Error(err),
			)
			s.metrics.IncPushAborted("rate_limited")
			return
		}
	}

	pending := tokens
	for attemptNumber := 1; attemptNumber <= s.maxAttempts; attemptNumber++ {
		var retry bool
		pending, retry = s.sendOnce(ctx, notification, pending, title, body, data, attemptNumber)
		if !retry || len(pending) == 0 {
			return
		}
		if attemptNumber == s.maxAttempts {
			logger.Warn("push retries exhausted",
				zap.String("notificationId", notification.ID),
				zap.Int("remainingTokens", len(pending)),
			)
			return
		}

		s.metrics.IncPushRetry()
		if err := sleepContext(ctx, s.computeRetryDelay(attemptNumber)); err != nil {
			return
		}
	}
}

// sendOnce performs a single timeout-bounded gateway call for the pending
// tokens. It returns the tokens whose failure was transient and whether
// another attempt is worthwhile.
func (s *Dispatcher) sendOnce(
	ctx context.Context,
	notification *domain.Notification,
	tokens []string,
	title, body string,
	data map[string]string,
	attemptNumber int,
) ([]string, bool) {
	pushCtx, cancel := context.WithTimeout(ctx, s.pushTimeout)
	defer cancel()

	sendStart := s.now()
	outcomes, err := s.gateway.Send(pushCtx, tokens, title, body, data)
	s.metrics.ObservePushSendDuration(pushLimiterScope, s.now().Sub(sendStart))

	if err != nil {
		s.logger.Error("push send failed",
			zap.String("notificationId", notification.ID),
			zap.Int("attempt", attemptNumber),
			zap.Int("tokenCount", len(tokens)),
			zap.Error(err),
		)
		s.metrics.IncPushAborted("provider_error")
		s.recordAttempt(ctx, notification.ID, len(tokens), 0, len(tokens), err)

		// A whole-call failure produced no per-token outcomes; retry the
		// full pending set when the failure is transient.
		if push.IsTransient(err) {
			return tokens, true
		}
		return nil, false
	}

	var succeeded, failed int
	var transientTokens []string
	var lastErr error
	for _, outcome := range outcomes {
		s.metrics.IncPushOutcome(string(outcome.Class))

		switch outcome.Class {
		case push.ClassOK:
			succeeded++
		case push.ClassPermanent:
			failed++
			lastErr = outcome.Err
			s.evictToken(ctx, notification, outcome)
		case push.ClassTransient:
			failed++
			lastErr = outcome.Err
			transientTokens = append(transientTokens, outcome.Token)
		}
	}

	s.recordAttempt(ctx, notification.ID, len(tokens), succeeded, failed, lastErr)

	if failed > 0 {
		s.logger.Warn("push completed with token failures",
			zap.String("notificationId", notification.ID),
			zap.Int("attempt", attemptNumber),
			zap.Int("succeeded", succeeded),
			zap.Int("failed", failed),
			zap.Int("transient", len(transientTokens)),
		)
	}

	return transientTokens, len(transientTokens) > 0
}

func (s *Dispatcher) evictToken(ctx context.Context, notification *domain.Notification, outcome push.TokenOutcome) {
	if err := s.devices.Evict(ctx, outcome.Token); err != nil {
		s.logger.Error("failed to evict device token",
			zap.String("notificationId", notification.ID),
			zap.String("code", outcome.Code),
			zap.Error(err),
		)
		return
	}
	s.metrics.IncTokenEvicted()
	s.logger.Info("device token evicted",
		zap.String("userId", notification.UserID),
		zap.String("code", outcome.Code),
	)
}

func (s *Dispatcher) recordAttempt(ctx context.Context, notificationID string, tokenCount, succeeded, failed int, sendErr error) {
	if s.attempts == nil {
		return
	}

	var attemptErr *string
	if sendErr != nil {
		value := sendErr.Error()
		attemptErr = &value
	}

	attempt := &domain.PushAttempt{
		ID:             uuid.NewString(),
		NotificationID: notificationID,
		TokenCount:     tokenCount,
		SuccessCount:   succeeded,
		FailureCount:   failed,
		Error:          attemptErr,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		s.logger.Error("failed to record push attempt",
			zap.String("notificationId", notificationID),
			zap.Error(err),
		)
	}
}

func (s *Dispatcher) computeRetryDelay(attemptNumber int) time.Duration {
	if attemptNumber < 1 {
		attemptNumber = 1
	}

	delay := baseRetryDelay
	for i := 1; i < attemptNumber; i++ {
		delay *= 2
		if delay >= maxRetryDelay {
			delay = maxRetryDelay
			break
		}
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}

	jitterMillis := 0
	if s.randIntn != nil && maxRetryJitterMillis > 0 {
		jitterMillis = s.randIntn(maxRetryJitterMillis + 1)
	}

	return delay + time.Duration(jitterMillis)*time.Millisecond
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func normalizeOptionalString(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func isUniqueViolationError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
