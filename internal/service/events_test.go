package service

import (
	"context"
	"sync"
	"testing"

	"github.com/pazarhub/notify-service/internal/domain"
)

type capturedRow struct {
	userID string
	typ    domain.NotificationType
}

func newTestEvents(t *testing.T) (*Events, *[]capturedRow) {
	t.Helper()

	var mu sync.Mutex
	rows := &[]capturedRow{}
	notifications := &fakeNotificationRepo{
		createFn: func(ctx context.Context, n *domain.Notification) error {
			mu.Lock()
			*rows = append(*rows, capturedRow{userID: n.UserID, typ: n.Type})
			mu.Unlock()
			return nil
		},
	}

	dispatcher := newTestDispatcher(t, notifications, &fakeDeviceRepo{}, &fakeAttemptRepo{}, &fakeGateway{})
	recorder, err := NewOrderRecorder(dispatcher, &fakeOrderNotificationRepo{}, nil)
	if err != nil {
		t.Fatalf("NewOrderRecorder() error = %v", err)
	}
	events, err := NewEvents(dispatcher, recorder, nil)
	if err != nil {
		t.Fatalf("NewEvents() error = %v", err)
	}
	return events, rows
}

func TestEventsOrderPlacedNotifiesCustomerAndVendor(t *testing.T) {
	t.Parallel()

	events, rows := newTestEvents(t)

	if _, err := events.OrderPlaced(context.Background(), testRecorderOrder()); err != nil {
		t.Fatalf("OrderPlaced() error = %v", err)
	}

	if len(*rows) != 2 {
		t.Fatalf("created %d rows, want 2 (customer + vendor)", len(*rows))
	}
	if (*rows)[0].userID != "user-1" || (*rows)[0].typ != domain.TypeOrderConfirmation {
		t.Fatalf("first row = %+v, want customer order_confirmation", (*rows)[0])
	}
	if (*rows)[1].userID != "vendor-user-1" || (*rows)[1].typ != domain.TypeNewOrder {
		t.Fatalf("second row = %+v, want vendor new_order", (*rows)[1])
	}
}

func TestEventsOrderStatusChangedCancellationGetsOwnType(t *testing.T) {
	t.Parallel()

	events, rows := newTestEvents(t)
	order := testRecorderOrder()

	if _, err := events.OrderStatusChanged(context.Background(), order, "preparing", "shipping"); err != nil {
		t.Fatalf("OrderStatusChanged() error = %v", err)
	}
	if _, err := events.OrderStatusChanged(context.Background(), order, "shipping", "cancelled"); err != nil {
		t.Fatalf("OrderStatusChanged() error = %v", err)
	}

	if len(*rows) != 2 {
		t.Fatalf("created %d rows, want 2", len(*rows))
	}
	if (*rows)[0].typ != domain.TypeOrderStatusChange {
		t.Fatalf("first row type = %s, want order_status_change", (*rows)[0].typ)
	}
	if (*rows)[1].typ != domain.TypeOrderCancellation {
		t.Fatalf("second row type = %s, want order_cancellation", (*rows)[1].typ)
	}
}

func TestEventsPaymentResolvedFailureFanOut(t *testing.T) {
	t.Parallel()

	events, rows := newTestEvents(t)

	if _, err := events.PaymentResolved(context.Background(), testRecorderOrder(), false); err != nil {
		t.Fatalf("PaymentResolved() error = %v", err)
	}

	if len(*rows) != 2 {
		t.Fatalf("created %d rows, want customer + vendor", len(*rows))
	}
	if (*rows)[0].typ != domain.TypePaymentFailed {
		t.Fatalf("customer type = %s, want payment_failed", (*rows)[0].typ)
	}
	if (*rows)[1].userID != "vendor-user-1" || (*rows)[1].typ != domain.TypeVendorOrderCancellation {
		t.Fatalf("vendor row = %+v, want restaurant_order_cancellation", (*rows)[1])
	}
}

func TestEventsPaymentResolvedSuccessFanOut(t *testing.T) {
	t.Parallel()

	events, rows := newTestEvents(t)

	if _, err := events.PaymentResolved(context.Background(), testRecorderOrder(), true); err != nil {
		t.Fatalf("PaymentResolved() error = %v", err)
	}

	if len(*rows) != 2 {
		t.Fatalf("created %d rows, want customer + vendor", len(*rows))
	}
	if (*rows)[0].typ != domain.TypePaymentSuccess {
		t.Fatalf("customer type = %s, want payment_success", (*rows)[0].typ)
	}
	if (*rows)[1].typ != domain.TypePaymentReceived {
		t.Fatalf("vendor type = %s, want payment_received", (*rows)[1].typ)
	}
}

func TestEventsSellerVerificationChanged(t *testing.T) {
	t.Parallel()

	events, rows := newTestEvents(t)

	if _, err := events.SellerVerificationChanged(context.Background(), "seller-1", true); err != nil {
		t.Fatalf("SellerVerificationChanged() error = %v", err)
	}
	if _, err := events.SellerVerificationChanged(context.Background(), "seller-1", false); err != nil {
		t.Fatalf("SellerVerificationChanged() error = %v", err)
	}

	if len(*rows) != 2 {
		t.Fatalf("created %d rows, want 2", len(*rows))
	}
	for _, row := range *rows {
		if row.typ != domain.TypeAccount {
			t.Fatalf("row type = %s, want account", row.typ)
		}
	}
}

func TestEventsNewVendorAnnouncedBroadcasts(t *testing.T) {
	t.Parallel()

	events, rows := newTestEvents(t)

	created, err := events.NewVendorAnnounced(context.Background(), []string{"user-1", "user-2", "user-3"}, "Pideci 46")
	if err != nil {
		t.Fatalf("NewVendorAnnounced() error = %v", err)
	}

	if len(created) != 3 {
		t.Fatalf("created = %d rows, want 3", len(created))
	}
	if len(*rows) != 3 {
		t.Fatalf("insert calls = %d, want 3", len(*rows))
	}
	for _, row := range *rows {
		if row.typ != domain.TypeNewRestaurant {
			t.Fatalf("row type = %s, want new_restaurant", row.typ)
		}
	}
}

func TestEventsLowStockTargetsVendor(t *testing.T) {
	t.Parallel()

	events, rows := newTestEvents(t)

	if _, err := events.LowStock(context.Background(), "vendor-user-1", "Lahmacun", 3); err != nil {
		t.Fatalf("LowStock() error = %v", err)
	}

	if len(*rows) != 1 || (*rows)[0].userID != "vendor-user-1" || (*rows)[0].typ != domain.TypeLowStock {
		t.Fatalf("rows = %+v, want single vendor low_stock", *rows)
	}
}
