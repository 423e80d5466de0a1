package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pazarhub/notify-service/internal/domain"
)

type DeviceService interface {
	Register(ctx context.Context, userID, token, platform string) (*domain.UserDevice, error)
	Unregister(ctx context.Context, userID, token string) error
}

type DeviceHandler struct {
	devices DeviceService
}

func NewDeviceHandler(devices DeviceService) (*DeviceHandler, error) {
	if devices == nil {
		return nil, fmt.Errorf("device service is required")
	}
	return &DeviceHandler{devices: devices}, nil
}

func RegisterDeviceRoutes(router fiber.Router, devices DeviceService) error {
	h, err := NewDeviceHandler(devices)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/devices", h.RegisterDevice)
	v1.Delete("/devices", h.UnregisterDevice)

	return nil
}

type deviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type deviceResponse struct {
	ID        string    `json:"id"`
	Platform  string    `json:"platform"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *DeviceHandler) RegisterDevice(c *fiber.Ctx) error {
	userID, err := requestUserID(c)
	if err != nil {
		return toHTTPError(err)
	}

	var req deviceRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	device, err := h.devices.Register(c.UserContext(), userID, req.Token, req.Platform)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(deviceResponse{
		ID:        device.ID,
		Platform:  device.Platform.String(),
		CreatedAt: device.CreatedAt,
	})
}

func (h *DeviceHandler) UnregisterDevice(c *fiber.Ctx) error {
	userID, err := requestUserID(c)
	if err != nil {
		return toHTTPError(err)
	}

	var req deviceRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Token) == "" {
		return toHTTPError(fmt.Errorf("%w: token is required", domain.ErrValidation))
	}

	if err := h.devices.Unregister(c.UserContext(), userID, req.Token); err != nil {
		return toHTTPError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
