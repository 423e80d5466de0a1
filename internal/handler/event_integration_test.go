package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/pazarhub/notify-service/internal/domain"
	"github.com/pazarhub/notify-service/internal/transport"
	"go.uber.org/zap"
)

func TestEventIntegration_OrderPlaced(t *testing.T) {
	t.Parallel()

	events := &stubEventService{
		orderPlacedFn: func(ctx context.Context, order domain.Order) (*domain.Notification, error) {
			if err := order.Validate(); err != nil {
				return nil, err
			}
			if order.ID != "o-1" {
				t.Fatalf("order id = %q, want o-1", order.ID)
			}
			if len(order.Items) != 1 || order.Items[0].UnitPriceCents != 575 {
				t.Fatalf("items = %+v, want one item at 575 cents", order.Items)
			}
			return &domain.Notification{ID: "n-placed"}, nil
		},
	}

	app := newEventTestApp(t, events)

	validBody := `{"order":{"id":"o-1","customerUserId":"user-1","vendorUserId":"vendor-user-1","items":[{"productId":"p-1","productName":"Lahmacun","quantity":2,"unitPriceCents":575}]}}`
	resp, body := performRequest(t, app, http.MethodPost, "/internal/v1/events/order-placed", validBody, "")
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201, body=%s", resp.StatusCode, string(body))
	}

	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if parsed["notificationId"] != "n-placed" {
		t.Fatalf("notificationId = %v, want n-placed", parsed["notificationId"])
	}

	missingCustomerBody := `{"order":{"id":"o-1"}}`
	resp, _ = performRequest(t, app, http.MethodPost, "/internal/v1/events/order-placed", missingCustomerBody, "")
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for missing customer", resp.StatusCode)
	}
}

func TestEventIntegration_OrderStatusChanged(t *testing.T) {
	t.Parallel()

	events := &stubEventService{
		orderStatusChangedFn: func(ctx context.Context, order domain.Order, statusBefore, statusAfter string) (*domain.Notification, error) {
			if statusBefore != "confirmed" || statusAfter != "shipped" {
				t.Fatalf("transition = %q -> %q, want confirmed -> shipped", statusBefore, statusAfter)
			}
			return &domain.Notification{ID: "n-status"}, nil
		},
	}

	app := newEventTestApp(t, events)

	body := `{"order":{"id":"o-1","customerUserId":"user-1"},"statusBefore":"confirmed","statusAfter":"shipped"}`
	resp, respBody := performRequest(t, app, http.MethodPost, "/internal/v1/events/order-status-changed", body, "")
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201, body=%s", resp.StatusCode, string(respBody))
	}
}

func TestEventIntegration_NewVendorBroadcast(t *testing.T) {
	t.Parallel()

	events := &stubEventService{
		newVendorAnnouncedFn: func(ctx context.Context, userIDs []string, vendorName string) ([]domain.Notification, error) {
			if len(userIDs) != 3 {
				t.Fatalf("userIDs len = %d, want 3", len(userIDs))
			}
			if vendorName != "Pideci 46" {
				t.Fatalf("vendorName = %q, want Pideci 46", vendorName)
			}
			return make([]domain.Notification, 3), nil
		},
	}

	app := newEventTestApp(t, events)

	body := `{"userIds":["user-1","user-2","user-3"],"vendorName":"Pideci 46"}`
	resp, respBody := performRequest(t, app, http.MethodPost, "/internal/v1/events/new-vendor", body, "")
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201, body=%s", resp.StatusCode, string(respBody))
	}

	var parsed map[string]any
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if parsed["created"] != float64(3) {
		t.Fatalf("created = %v, want 3", parsed["created"])
	}
}

func TestEventIntegration_LowStock(t *testing.T) {
	t.Parallel()

	events := &stubEventService{
		lowStockFn: func(ctx context.Context, vendorUserID, productName string, remaining int) (*domain.Notification, error) {
			if vendorUserID != "vendor-user-1" || productName != "Ayran" || remaining != 2 {
				t.Fatalf("args = %q %q %d, want vendor-user-1 Ayran 2", vendorUserID, productName, remaining)
			}
			return &domain.Notification{ID: "n-low-stock"}, nil
		},
	}

	app := newEventTestApp(t, events)

	body := `{"vendorUserId":"vendor-user-1","productName":"Ayran","remaining":2}`
	resp, respBody := performRequest(t, app, http.MethodPost, "/internal/v1/events/low-stock", body, "")
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201, body=%s", resp.StatusCode, string(respBody))
	}
}

type stubEventService struct {
	orderPlacedFn        func(ctx context.Context, order domain.Order) (*domain.Notification, error)
	orderStatusChangedFn func(ctx context.Context, order domain.Order, statusBefore, statusAfter string) (*domain.Notification, error)
	newVendorAnnouncedFn func(ctx context.Context, userIDs []string, vendorName string) ([]domain.Notification, error)
	lowStockFn           func(ctx context.Context, vendorUserID, productName string, remaining int) (*domain.Notification, error)
}

func (s *stubEventService) OrderPlaced(ctx context.Context, order domain.Order) (*domain.Notification, error) {
	if s.orderPlacedFn != nil {
		return s.orderPlacedFn(ctx, order)
	}
	return nil, fmt.Errorf("not implemented")
}

func (s *stubEventService) OrderStatusChanged(
	ctx context.Context,
	order domain.Order,
	statusBefore, statusAfter string,
) (*domain.Notification, error) {
	if s.orderStatusChangedFn != nil {
		return s.orderStatusChangedFn(ctx, order, statusBefore, statusAfter)
	}
	return nil, fmt.Errorf("not implemented")
}

func (s *stubEventService) PaymentResolved(ctx context.Context, order domain.Order, succeeded bool) (*domain.Notification, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *stubEventService) DeliveryDelay(ctx context.Context, order domain.Order, reason string) (*domain.Notification, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *stubEventService) ReviewPosted(ctx context.Context, vendorUserID, productName string, rating int) (*domain.Notification, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *stubEventService) VendorReplied(ctx context.Context, reviewerUserID, vendorName, productName string) (*domain.Notification, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *stubEventService) SellerVerificationChanged(ctx context.Context, sellerUserID string, verified bool) (*domain.Notification, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *stubEventService) AccountActivated(ctx context.Context, userID string) (*domain.Notification, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *stubEventService) NewVendorAnnounced(ctx context.Context, userIDs []string, vendorName string) ([]domain.Notification, error) {
	if s.newVendorAnnouncedFn != nil {
		return s.newVendorAnnouncedFn(ctx, userIDs, vendorName)
	}
	return nil, fmt.Errorf("not implemented")
}

func (s *stubEventService) LowStock(ctx context.Context, vendorUserID, productName string, remaining int) (*domain.Notification, error) {
	if s.lowStockFn != nil {
		return s.lowStockFn(ctx, vendorUserID, productName, remaining)
	}
	return nil, fmt.Errorf("not implemented")
}

func newEventTestApp(t *testing.T, events EventService) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(zap.NewNop()),
	})

	if err := RegisterEventRoutes(app, events); err != nil {
		t.Fatalf("RegisterEventRoutes() error = %v", err)
	}

	return app
}
