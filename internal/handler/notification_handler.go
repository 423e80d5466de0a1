package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pazarhub/notify-service/internal/domain"
	"github.com/pazarhub/notify-service/internal/repository"
)

const (
	defaultPage     = 1
	defaultPageSize = 50
	maxPageSize     = 100

	userIDHeader = "X-User-ID"
)

type InboxService interface {
	List(ctx context.Context, params repository.ListParams) ([]domain.Notification, int64, error)
	GetAndMarkRead(ctx context.Context, userID, id string) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	ClearAll(ctx context.Context, userID string) (int64, error)
}

type OrderTimelineService interface {
	OrderTimeline(ctx context.Context, orderID string) ([]domain.OrderNotification, error)
}

type NotificationHandler struct {
	inbox    InboxService
	timeline OrderTimelineService
}

func NewNotificationHandler(inbox InboxService, timeline OrderTimelineService) (*NotificationHandler, error) {
	if inbox == nil {
		return nil, fmt.Errorf("inbox service is required")
	}
	if timeline == nil {
		return nil, fmt.Errorf("order timeline service is required")
	}
	return &NotificationHandler{inbox: inbox, timeline: timeline}, nil
}

func RegisterNotificationRoutes(router fiber.Router, inbox InboxService, timeline OrderTimelineService) error {
	h, err := NewNotificationHandler(inbox, timeline)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Get("/notifications", h.ListNotifications)
	v1.Post("/notifications/mark-all-read", h.MarkAllRead)
	v1.Delete("/notifications", h.ClearNotifications)
	v1.Get("/notifications/:id", h.GetNotification)
	v1.Get("/orders/:orderId/notifications", h.GetOrderTimeline)

	return nil
}

type notificationResponse struct {
	ID        string         `json:"id"`
	Message   string         `json:"message"`
	Type      string         `json:"type"`
	IsRead    bool           `json:"isRead"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

type listNotificationsResponse struct {
	Data []notificationResponse `json:"data"`
	Meta listMeta               `json:"meta"`
}

type listMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

type orderNotificationResponse struct {
	ID             string               `json:"id"`
	NotificationID string               `json:"notificationId"`
	OrderID        string               `json:"orderId"`
	StatusBefore   string               `json:"statusBefore"`
	StatusAfter    string               `json:"statusAfter"`
	Snapshot       domain.OrderSnapshot `json:"snapshot"`
	CreatedAt      time.Time            `json:"createdAt"`
}

func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	userID, err := requestUserID(c)
	if err != nil {
		return toHTTPError(err)
	}

	params, err := parseListParams(c, userID)
	if err != nil {
		return toHTTPError(err)
	}

	notifications, total, err := h.inbox.List(c.UserContext(), params)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(listNotificationsResponse{
		Data: toNotificationResponses(notifications),
		Meta: listMeta{
			Page:     params.Page,
			PageSize: params.PageSize,
			Total:    total,
		},
	})
}

// GetNotification returns one of the caller's notifications and marks it read
// in the same request, mirroring an inbox open.
func (h *NotificationHandler) GetNotification(c *fiber.Ctx) error {
	userID, err := requestUserID(c)
	if err != nil {
		return toHTTPError(err)
	}

	id := strings.TrimSpace(c.Params("id"))
	notification, err := h.inbox.GetAndMarkRead(c.UserContext(), userID, id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toNotificationResponse(notification))
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, err := requestUserID(c)
	if err != nil {
		return toHTTPError(err)
	}

	updated, err := h.inbox.MarkAllRead(c.UserContext(), userID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"updated": updated})
}

func (h *NotificationHandler) ClearNotifications(c *fiber.Ctx) error {
	userID, err := requestUserID(c)
	if err != nil {
		return toHTTPError(err)
	}

	deleted, err := h.inbox.ClearAll(c.UserContext(), userID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"deleted": deleted})
}

func (h *NotificationHandler) GetOrderTimeline(c *fiber.Ctx) error {
	orderID := strings.TrimSpace(c.Params("orderId"))
	records, err := h.timeline.OrderTimeline(c.UserContext(), orderID)
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]orderNotificationResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, orderNotificationResponse{
			ID:             record.ID,
			NotificationID: record.NotificationID,
			OrderID:        record.OrderID,
			StatusBefore:   record.StatusBefore,
			StatusAfter:    record.StatusAfter,
			Snapshot:       record.Snapshot,
			CreatedAt:      record.CreatedAt,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": responses})
}

func parseListParams(c *fiber.Ctx, userID string) (repository.ListParams, error) {
	params := repository.ListParams{
		UserID:   userID,
		Page:     c.QueryInt("page", defaultPage),
		PageSize: c.QueryInt("pageSize", defaultPageSize),
	}

	if params.Page < 1 {
		return repository.ListParams{}, fmt.Errorf("%w: page must be >= 1", domain.ErrValidation)
	}
	if params.PageSize < 1 || params.PageSize > maxPageSize {
		return repository.ListParams{}, fmt.Errorf("%w: pageSize must be between 1 and %d", domain.ErrValidation, maxPageSize)
	}

	if rawType := strings.TrimSpace(c.Query("type")); rawType != "" {
		typ, err := domain.ParseNotificationType(rawType)
		if err != nil {
			return repository.ListParams{}, err
		}
		params.Type = &typ
	}

	if rawUnread := strings.TrimSpace(c.Query("unread")); rawUnread != "" {
		unread, err := strconv.ParseBool(rawUnread)
		if err != nil {
			return repository.ListParams{}, fmt.Errorf("%w: unread must be a boolean", domain.ErrValidation)
		}
		params.Unread = &unread
	}

	from, err := parseRFC3339Query(c.Query("from"), "from")
	if err != nil {
		return repository.ListParams{}, err
	}
	to, err := parseRFC3339Query(c.Query("to"), "to")
	if err != nil {
		return repository.ListParams{}, err
	}
	params.From = from
	params.To = to

	return params, nil
}

func parseRFC3339Query(value string, field string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be RFC3339", domain.ErrValidation, field)
	}
	return &t, nil
}

// requestUserID reads the authenticated subject injected by the edge gateway.
func requestUserID(c *fiber.Ctx) (string, error) {
	userID := strings.TrimSpace(c.Get(userIDHeader))
	if userID == "" {
		return "", fmt.Errorf("%w: %s header is required", domain.ErrValidation, userIDHeader)
	}
	return userID, nil
}

func toNotificationResponses(notifications []domain.Notification) []notificationResponse {
	responses := make([]notificationResponse, 0, len(notifications))
	for i := range notifications {
		responses = append(responses, toNotificationResponse(&notifications[i]))
	}
	return responses
}

func toNotificationResponse(n *domain.Notification) notificationResponse {
	if n == nil {
		return notificationResponse{}
	}

	return notificationResponse{
		ID:        n.ID,
		Message:   n.Message,
		Type:      n.Type.String(),
		IsRead:    n.IsRead,
		Payload:   n.Payload,
		CreatedAt: n.CreatedAt,
	}
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return err
	}
}
