package service

import (
	"context"
	"errors"
	"testing"

	"github.com/pazarhub/notify-service/internal/domain"
)

func TestDeviceRegistryRegister(t *testing.T) {
	t.Parallel()

	var registered *domain.UserDevice
	devices := &fakeDeviceRepo{
		registerFn: func(ctx context.Context, device *domain.UserDevice) error {
			registered = device
			return nil
		},
	}

	registry, err := NewDeviceRegistry(devices, nil)
	if err != nil {
		t.Fatalf("NewDeviceRegistry() error = %v", err)
	}

	device, err := registry.Register(context.Background(), " user-1 ", " tok-a ", "ANDROID")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if registered == nil {
		t.Fatal("expected repository Register to be called")
	}
	if device.UserID != "user-1" || device.Token != "tok-a" {
		t.Fatalf("device = %+v, want trimmed user and token", device)
	}
	if device.Platform != domain.PlatformAndroid {
		t.Fatalf("platform = %s, want android", device.Platform)
	}
	if device.ID == "" || device.CreatedAt.IsZero() {
		t.Fatal("id and created at should be set")
	}
}

func TestDeviceRegistryRegisterValidation(t *testing.T) {
	t.Parallel()

	registry, err := NewDeviceRegistry(&fakeDeviceRepo{}, nil)
	if err != nil {
		t.Fatalf("NewDeviceRegistry() error = %v", err)
	}

	if _, err := registry.Register(context.Background(), "user-1", "tok-a", "windows"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Register() error = %v, want ErrValidation for unknown platform", err)
	}
	if _, err := registry.Register(context.Background(), "", "tok-a", "ios"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Register() error = %v, want ErrValidation for missing user", err)
	}
	if _, err := registry.Register(context.Background(), "user-1", "  ", "ios"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Register() error = %v, want ErrValidation for missing token", err)
	}
}

func TestDeviceRegistryUnregister(t *testing.T) {
	t.Parallel()

	called := false
	devices := &fakeDeviceRepo{
		unregisterFn: func(ctx context.Context, userID, token string) error {
			if userID != "user-1" || token != "tok-a" {
				t.Fatalf("unregister = %s/%s, want user-1/tok-a", userID, token)
			}
			called = true
			return nil
		},
	}

	registry, err := NewDeviceRegistry(devices, nil)
	if err != nil {
		t.Fatalf("NewDeviceRegistry() error = %v", err)
	}

	if err := registry.Unregister(context.Background(), "user-1", "tok-a"); err != nil {
		t.Fatalf("Unregister() error = %v", err)
	}
	if !called {
		t.Fatal("expected repository Unregister to be called")
	}

	if err := registry.Unregister(context.Background(), "", "tok-a"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Unregister() error = %v, want ErrValidation", err)
	}
}
