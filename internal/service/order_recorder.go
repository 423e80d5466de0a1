package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pazarhub/notify-service/internal/domain"
	"github.com/pazarhub/notify-service/internal/repository"
	"go.uber.org/zap"
)

// RecordOrderEventParams carries the optional knobs of a recording call.
// A nil Snapshot means capture the order as it stands now; an empty
// StatusBefore is recorded as the unknown sentinel.
type RecordOrderEventParams struct {
	Snapshot     *domain.OrderSnapshot
	StatusBefore string
	DedupKey     *string
}

// OrderRecorder couples a notification with an immutable order audit record:
// the status transition and the order snapshot taken at event time.
type OrderRecorder struct {
	dispatcher         *Dispatcher
	orderNotifications repository.OrderNotificationRepository
	logger             *zap.Logger
}

func NewOrderRecorder(
	dispatcher *Dispatcher,
	orderNotifications repository.OrderNotificationRepository,
	logger *zap.Logger,
) (*OrderRecorder, error) {
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if orderNotifications == nil {
		return nil, fmt.Errorf("order notification repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OrderRecorder{
		dispatcher:         dispatcher,
		orderNotifications: orderNotifications,
		logger:             logger,
	}, nil
}

// RecordOrderEvent dispatches an order-scoped notification to the recipient
// and attaches the order audit child. The payload carries the status
// transition and a digest of the snapshot, so two distinct transitions (or
// snapshots) of the same order never collapse into one row, while a retried
// identical call does.
func (s *OrderRecorder) RecordOrderEvent(
	ctx context.Context,
	recipientUserID string,
	order domain.Order,
	message string,
	notificationType domain.NotificationType,
	statusAfter string,
	params RecordOrderEventParams,
) (*domain.Notification, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}
	statusAfter = strings.TrimSpace(statusAfter)
	if statusAfter == "" {
		return nil, fmt.Errorf("%w: status after is required", domain.ErrValidation)
	}

	statusBefore := strings.TrimSpace(params.StatusBefore)
	if statusBefore == "" {
		statusBefore = domain.StatusUnknown
	}

	snapshot := domain.SnapshotOf(order)
	if params.Snapshot != nil {
		snapshot = *params.Snapshot
	}

	payload := domain.Payload{
		"order_id":        order.ID,
		"total":           domain.FormatCents(snapshot.TotalCents),
		"item_count":      len(snapshot.Items),
		"product_ids":     order.ProductIDs(),
		"status_before":   statusBefore,
		"status_after":    statusAfter,
		"snapshot_digest": snapshot.Digest(),
	}
	if order.VendorID != "" {
		payload["vendor_id"] = order.VendorID
	}

	notification, err := s.dispatcher.Notify(ctx, recipientUserID, message, notificationType, payload, params.DedupKey)
	if err != nil {
		return nil, err
	}

	record := &domain.OrderNotification{
		ID:             uuid.NewString(),
		NotificationID: notification.ID,
		OrderID:        order.ID,
		StatusBefore:   statusBefore,
		StatusAfter:    statusAfter,
		Snapshot:       snapshot,
		CreatedAt:      notification.CreatedAt,
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}
	if err := s.orderNotifications.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store order audit record: %w", err)
	}

	s.logger.Debug("order event recorded",
		zap.String("notificationId", notification.ID),
		zap.String("orderId", order.ID),
		zap.String("statusBefore", statusBefore),
		zap.String("statusAfter", statusAfter),
	)

	return notification, nil
}

// OrderTimeline returns the order's audit records in the order their parent
// notifications were created.
func (s *OrderRecorder) OrderTimeline(ctx context.Context, orderID string) ([]domain.OrderNotification, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, fmt.Errorf("%w: order id is required", domain.ErrValidation)
	}
	return s.orderNotifications.ListByOrder(ctx, orderID)
}
