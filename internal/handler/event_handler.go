package handler

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/pazarhub/notify-service/internal/domain"
)

// EventService is the marketplace-facing ingestion surface. These routes sit
// behind the internal network; the edge gateway never exposes them.
type EventService interface {
	OrderPlaced(ctx context.Context, order domain.Order) (*domain.Notification, error)
	OrderStatusChanged(ctx context.Context, order domain.Order, statusBefore, statusAfter string) (*domain.Notification, error)
	PaymentResolved(ctx context.Context, order domain.Order, succeeded bool) (*domain.Notification, error)
	DeliveryDelay(ctx context.Context, order domain.Order, reason string) (*domain.Notification, error)
	ReviewPosted(ctx context.Context, vendorUserID, productName string, rating int) (*domain.Notification, error)
	VendorReplied(ctx context.Context, reviewerUserID, vendorName, productName string) (*domain.Notification, error)
	SellerVerificationChanged(ctx context.Context, sellerUserID string, verified bool) (*domain.Notification, error)
	AccountActivated(ctx context.Context, userID string) (*domain.Notification, error)
	NewVendorAnnounced(ctx context.Context, userIDs []string, vendorName string) ([]domain.Notification, error)
	LowStock(ctx context.Context, vendorUserID, productName string, remaining int) (*domain.Notification, error)
}

type EventHandler struct {
	events EventService
}

func NewEventHandler(events EventService) (*EventHandler, error) {
	if events == nil {
		return nil, fmt.Errorf("event service is required")
	}
	return &EventHandler{events: events}, nil
}

func RegisterEventRoutes(router fiber.Router, events EventService) error {
	h, err := NewEventHandler(events)
	if err != nil {
		return err
	}

	v1 := router.Group("/internal/v1/events")
	v1.Post("/order-placed", h.OrderPlaced)
	v1.Post("/order-status-changed", h.OrderStatusChanged)
	v1.Post("/payment-resolved", h.PaymentResolved)
	v1.Post("/delivery-delay", h.DeliveryDelay)
	v1.Post("/review-posted", h.ReviewPosted)
	v1.Post("/vendor-replied", h.VendorReplied)
	v1.Post("/seller-verification", h.SellerVerification)
	v1.Post("/account-activated", h.AccountActivated)
	v1.Post("/new-vendor", h.NewVendor)
	v1.Post("/low-stock", h.LowStock)

	return nil
}

type orderPayload struct {
	ID              string             `json:"id"`
	CustomerUserID  string             `json:"customerUserId"`
	VendorUserID    string             `json:"vendorUserId"`
	VendorID        string             `json:"vendorId"`
	VendorName      string             `json:"vendorName"`
	DeliveryAddress string             `json:"deliveryAddress"`
	PaymentStatus   string             `json:"paymentStatus"`
	DeliveryStatus  string             `json:"deliveryStatus"`
	Items           []orderItemPayload `json:"items"`
}

type orderItemPayload struct {
	ProductID      string `json:"productId"`
	ProductName    string `json:"productName"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

func (p orderPayload) toDomain() domain.Order {
	items := make([]domain.OrderItem, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, domain.OrderItem{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}

	return domain.Order{
		ID:              p.ID,
		CustomerUserID:  p.CustomerUserID,
		VendorUserID:    p.VendorUserID,
		VendorID:        p.VendorID,
		VendorName:      p.VendorName,
		DeliveryAddress: p.DeliveryAddress,
		PaymentStatus:   p.PaymentStatus,
		DeliveryStatus:  p.DeliveryStatus,
		Items:           items,
	}
}

func (h *EventHandler) OrderPlaced(c *fiber.Ctx) error {
	var req struct {
		Order orderPayload `json:"order"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	notification, err := h.events.OrderPlaced(c.UserContext(), req.Order.toDomain())
	if err != nil {
		return toHTTPError(err)
	}
	return createdNotification(c, notification)
}

func (h *EventHandler) OrderStatusChanged(c *fiber.Ctx) error {
	var req struct {
		Order        orderPayload `json:"order"`
		StatusBefore string       `json:"statusBefore"`
		StatusAfter  string       `json:"statusAfter"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	notification, err := h.events.OrderStatusChanged(c.UserContext(), req.Order.toDomain(), req.StatusBefore, req.StatusAfter)
	if err != nil {
		return toHTTPError(err)
	}
	return createdNotification(c, notification)
}

func (h *EventHandler) PaymentResolved(c *fiber.Ctx) error {
	var req struct {
		Order     orderPayload `json:"order"`
		Succeeded bool         `json:"succeeded"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	notification, err := h.events.PaymentResolved(c.UserContext(), req.Order.toDomain(), req.Succeeded)
	if err != nil {
		return toHTTPError(err)
	}
	return createdNotification(c, notification)
}

func (h *EventHandler) DeliveryDelay(c *fiber.Ctx) error {
	var req struct {
		Order  orderPayload `json:"order"`
		Reason string       `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	notification, err := h.events.DeliveryDelay(c.UserContext(), req.Order.toDomain(), req.Reason)
	if err != nil {
		return toHTTPError(err)
	}
	return createdNotification(c, notification)
}

func (h *EventHandler) ReviewPosted(c *fiber.Ctx) error {
	var req struct {
		VendorUserID string `json:"vendorUserId"`
		ProductName  string `json:"productName"`
		Rating       int    `json:"rating"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	notification, err := h.events.ReviewPosted(c.UserContext(), req.VendorUserID, req.ProductName, req.Rating)
	if err != nil {
		return toHTTPError(err)
	}
	return createdNotification(c, notification)
}

func (h *EventHandler) VendorReplied(c *fiber.Ctx) error {
	var req struct {
		ReviewerUserID string `json:"reviewerUserId"`
		VendorName     string `json:"vendorName"`
		ProductName    string `json:"productName"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	notification, err := h.events.VendorReplied(c.UserContext(), req.ReviewerUserID, req.VendorName, req.ProductName)
	if err != nil {
		return toHTTPError(err)
	}
	return createdNotification(c, notification)
}

func (h *EventHandler) SellerVerification(c *fiber.Ctx) error {
	var req struct {
		SellerUserID string `json:"sellerUserId"`
		Verified     bool   `json:"verified"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	notification, err := h.events.SellerVerificationChanged(c.UserContext(), req.SellerUserID, req.Verified)
	if err != nil {
		return toHTTPError(err)
	}
	return createdNotification(c, notification)
}

func (h *EventHandler) AccountActivated(c *fiber.Ctx) error {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	notification, err := h.events.AccountActivated(c.UserContext(), req.UserID)
	if err != nil {
		return toHTTPError(err)
	}
	return createdNotification(c, notification)
}

func (h *EventHandler) NewVendor(c *fiber.Ctx) error {
	var req struct {
		UserIDs    []string `json:"userIds"`
		VendorName string   `json:"vendorName"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	notifications, err := h.events.NewVendorAnnounced(c.UserContext(), req.UserIDs, req.VendorName)
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"created": len(notifications)})
}

func (h *EventHandler) LowStock(c *fiber.Ctx) error {
	var req struct {
		VendorUserID string `json:"vendorUserId"`
		ProductName  string `json:"productName"`
		Remaining    int    `json:"remaining"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	notification, err := h.events.LowStock(c.UserContext(), req.VendorUserID, req.ProductName, req.Remaining)
	if err != nil {
		return toHTTPError(err)
	}
	return createdNotification(c, notification)
}

func createdNotification(c *fiber.Ctx, n *domain.Notification) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"notificationId": n.ID,
	})
}
