package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestNotificationTypeIsRecognized(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		typ  NotificationType
		want bool
	}{
		{name: "order confirmation", typ: TypeOrderConfirmation, want: true},
		{name: "vendor new order", typ: TypeNewOrder, want: true},
		{name: "account", typ: TypeAccount, want: true},
		{name: "unknown type", typ: NotificationType("flash_sale_v2"), want: false},
		{name: "empty", typ: NotificationType(""), want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.typ.IsRecognized(); got != tt.want {
				t.Fatalf("IsRecognized() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseNotificationType(t *testing.T) {
	t.Parallel()

	got, err := ParseNotificationType(" New_Order ")
	if err != nil {
		t.Fatalf("ParseNotificationType() unexpected error = %v", err)
	}
	if got != TypeNewOrder {
		t.Fatalf("ParseNotificationType() = %s, want %s", got, TypeNewOrder)
	}

	if _, err := ParseNotificationType("  "); !errors.Is(err, ErrValidation) {
		t.Fatalf("ParseNotificationType() error = %v, want ErrValidation", err)
	}
}

func TestPayloadHashStableAcrossKeyOrder(t *testing.T) {
	t.Parallel()

	a := Payload{"order_id": "5", "total": 1250, "vendor_id": "v-1"}
	b := Payload{"vendor_id": "v-1", "order_id": "5", "total": 1250}

	if a.Hash() != b.Hash() {
		t.Fatal("equal payloads should hash equally regardless of key order")
	}

	c := Payload{"order_id": "6", "total": 1250, "vendor_id": "v-1"}
	if a.Hash() == c.Hash() {
		t.Fatal("different payloads should not collide")
	}
}

func TestPayloadStringsCoercion(t *testing.T) {
	t.Parallel()

	p := Payload{
		"order_id": 5,
		"total":    12.5,
		"vendor":   "Pide Palace",
		"urgent":   true,
		"count":    int64(3),
		"ids":      []string{"a", "b"},
		"missing":  nil,
	}

	got := p.Strings()

	want := map[string]string{
		"order_id": "5",
		"total":    "12.5",
		"vendor":   "Pide Palace",
		"urgent":   "true",
		"count":    "3",
		"ids":      `["a","b"]`,
		"missing":  "",
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("Strings()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestNotificationValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Notification)
		wantErr bool
	}{
		{name: "valid", mutate: func(n *Notification) {}},
		{name: "missing user", mutate: func(n *Notification) { n.UserID = " " }, wantErr: true},
		{name: "missing message", mutate: func(n *Notification) { n.Message = "" }, wantErr: true},
		{name: "missing type", mutate: func(n *Notification) { n.Type = "" }, wantErr: true},
		{name: "oversized message", mutate: func(n *Notification) {
			n.Message = strings.Repeat("x", MaxMessageLength+1)
		}, wantErr: true},
		{name: "unrecognized type accepted", mutate: func(n *Notification) {
			n.Type = NotificationType("flash_sale_v2")
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n := Notification{
				UserID:  "u-1",
				Message: "Order #5 confirmed!",
				Type:    TypeOrderConfirmation,
				Payload: Payload{"order_id": "5"},
			}
			tt.mutate(&n)

			err := n.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("Validate() error = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() unexpected error = %v", err)
			}
		})
	}
}
