package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pazarhub/notify-service/internal/domain"
	"go.uber.org/zap"
)

// Events is the typed surface the marketplace domain calls on its lifecycle
// hooks. Every helper routes through the dispatcher or the order recorder, so
// dedup, snapshots, and push delivery behave the same everywhere.
type Events struct {
	dispatcher *Dispatcher
	recorder   *OrderRecorder
	logger     *zap.Logger
}

func NewEvents(dispatcher *Dispatcher, recorder *OrderRecorder, logger *zap.Logger) (*Events, error) {
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("order recorder is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Events{
		dispatcher: dispatcher,
		recorder:   recorder,
		logger:     logger,
	}, nil
}

// OrderPlaced records the confirmation for the customer and, when the order
// carries a vendor user, notifies the vendor of the incoming order.
func (e *Events) OrderPlaced(ctx context.Context, order domain.Order) (*domain.Notification, error) {
	notification, err := e.recorder.RecordOrderEvent(
		ctx,
		order.CustomerUserID,
		order,
		fmt.Sprintf("Your order #%s has been confirmed.", order.ID),
		domain.TypeOrderConfirmation,
		"confirmed",
		RecordOrderEventParams{},
	)
	if err != nil {
		return nil, err
	}

	if order.VendorUserID != "" {
		if _, err := e.recorder.RecordOrderEvent(
			ctx,
			order.VendorUserID,
			order,
			fmt.Sprintf("New order #%s received, total %s.", order.ID, domain.FormatCents(order.TotalCents())),
			domain.TypeNewOrder,
			"confirmed",
			RecordOrderEventParams{},
		); err != nil {
			e.logger.Error("failed to notify vendor of new order",
				zap.String("orderId", order.ID),
				zap.Error(err),
			)
		}
	}

	return notification, nil
}

// OrderStatusChanged records the customer-facing transition. Cancellations
// get their own type so display text and client handling can differ.
func (e *Events) OrderStatusChanged(ctx context.Context, order domain.Order, statusBefore, statusAfter string) (*domain.Notification, error) {
	notificationType := domain.TypeOrderStatusChange
	message := fmt.Sprintf("Order #%s is now %s.", order.ID, statusAfter)
	if strings.EqualFold(statusAfter, "cancelled") {
		notificationType = domain.TypeOrderCancellation
		message = fmt.Sprintf("Order #%s has been cancelled.", order.ID)
	}

	return e.recorder.RecordOrderEvent(
		ctx,
		order.CustomerUserID,
		order,
		message,
		notificationType,
		statusAfter,
		RecordOrderEventParams{StatusBefore: statusBefore},
	)
}

// PaymentResolved fans the payment outcome out: the customer always hears,
// the vendor hears on success (payout) and on failure (order at risk).
func (e *Events) PaymentResolved(ctx context.Context, order domain.Order, succeeded bool) (*domain.Notification, error) {
	customerType := domain.TypePaymentSuccess
	customerMessage := fmt.Sprintf("Payment for order #%s went through.", order.ID)
	statusAfter := "paid"
	if !succeeded {
		customerType = domain.TypePaymentFailed
		customerMessage = fmt.Sprintf("Payment for order #%s failed. Please try again.", order.ID)
		statusAfter = "payment_failed"
	}

	notification, err := e.recorder.RecordOrderEvent(
		ctx,
		order.CustomerUserID,
		order,
		customerMessage,
		customerType,
		statusAfter,
		RecordOrderEventParams{},
	)
	if err != nil {
		return nil, err
	}

	if order.VendorUserID != "" {
		vendorType := domain.TypePaymentReceived
		vendorMessage := fmt.Sprintf("Payment for order #%s has been received.", order.ID)
		if !succeeded {
			vendorType = domain.TypeVendorOrderCancellation
			vendorMessage = fmt.Sprintf("Order #%s is on hold: payment failed.", order.ID)
		}
		if _, err := e.recorder.RecordOrderEvent(
			ctx,
			order.VendorUserID,
			order,
			vendorMessage,
			vendorType,
			statusAfter,
			RecordOrderEventParams{},
		); err != nil {
			e.logger.Error("failed to notify vendor of payment outcome",
				zap.String("orderId", order.ID),
				zap.Error(err),
			)
		}
	}

	return notification, nil
}

// DeliveryDelay tells the customer their order is running late.
func (e *Events) DeliveryDelay(ctx context.Context, order domain.Order, reason string) (*domain.Notification, error) {
	message := fmt.Sprintf("Order #%s is running late. Sorry for the wait.", order.ID)
	if strings.TrimSpace(reason) != "" {
		message = fmt.Sprintf("Order #%s is running late: %s", order.ID, strings.TrimSpace(reason))
	}

	return e.recorder.RecordOrderEvent(
		ctx,
		order.CustomerUserID,
		order,
		message,
		domain.TypeDeliveryDelay,
		"delayed",
		RecordOrderEventParams{StatusBefore: order.DeliveryStatus},
	)
}

// ReviewPosted notifies the vendor that a customer reviewed their product.
func (e *Events) ReviewPosted(ctx context.Context, vendorUserID, productName string, rating int) (*domain.Notification, error) {
	return e.dispatcher.Notify(
		ctx,
		vendorUserID,
		fmt.Sprintf("A customer rated %s with %d stars.", productName, rating),
		domain.TypeNewReview,
		domain.Payload{"product": productName, "rating": rating},
		nil,
	)
}

// VendorReplied notifies the reviewer that the vendor answered their review.
func (e *Events) VendorReplied(ctx context.Context, reviewerUserID, vendorName, productName string) (*domain.Notification, error) {
	return e.dispatcher.Notify(
		ctx,
		reviewerUserID,
		fmt.Sprintf("%s replied to your review.", vendorName),
		domain.TypeRestaurantReply,
		domain.Payload{"vendor": vendorName, "product": productName},
		nil,
	)
}

// SellerVerificationChanged notifies the seller of a verification decision.
func (e *Events) SellerVerificationChanged(ctx context.Context, sellerUserID string, verified bool) (*domain.Notification, error) {
	message := "Your seller account has been verified. You can start selling now."
	decision := "verified"
	if !verified {
		message = "Your seller verification was rejected. Check your documents and try again."
		decision = "rejected"
	}

	return e.dispatcher.Notify(
		ctx,
		sellerUserID,
		message,
		domain.TypeAccount,
		domain.Payload{"event": "seller_verification", "decision": decision},
		nil,
	)
}

// AccountActivated welcomes a freshly activated account.
func (e *Events) AccountActivated(ctx context.Context, userID string) (*domain.Notification, error) {
	return e.dispatcher.Notify(
		ctx,
		userID,
		"Your account has been activated. Welcome aboard!",
		domain.TypeAccount,
		domain.Payload{"event": "account_activated"},
		nil,
	)
}

// NewVendorAnnounced broadcasts a freshly onboarded vendor to nearby users.
func (e *Events) NewVendorAnnounced(ctx context.Context, userIDs []string, vendorName string) ([]domain.Notification, error) {
	return e.dispatcher.NotifyMany(
		ctx,
		userIDs,
		fmt.Sprintf("%s just joined. Take a look at their menu.", vendorName),
		domain.TypeNewRestaurant,
		domain.Payload{"vendor": vendorName},
	)
}

// LowStock warns the vendor that a product's inventory dropped below the
// threshold.
func (e *Events) LowStock(ctx context.Context, vendorUserID, productName string, remaining int) (*domain.Notification, error) {
	return e.dispatcher.Notify(
		ctx,
		vendorUserID,
		fmt.Sprintf("%s is running low (%d left).", productName, remaining),
		domain.TypeLowStock,
		domain.Payload{"product": productName, "inventory": remaining},
		nil,
	)
}
