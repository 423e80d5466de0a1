package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NotificationType identifies the domain event a notification describes.
type NotificationType string

const (
	// Customer-facing
	TypeOrderConfirmation NotificationType = "order_confirmation"
	TypeOrderStatusChange NotificationType = "order_status_change"
	TypeDeliveryDelay     NotificationType = "delivery_delay"
	TypeOrderCancellation NotificationType = "order_cancellation"
	TypePaymentSuccess    NotificationType = "payment_success"
	TypePaymentFailed     NotificationType = "payment_failed"
	TypeRefundProcessed   NotificationType = "refund_processed"
	TypeDiscountOffer     NotificationType = "discount_offer"
	TypeNewRestaurant     NotificationType = "new_restaurant"
	TypeReviewReminder    NotificationType = "review_reminder"
	TypeRestaurantReply   NotificationType = "restaurant_reply"
	// Vendor-facing
	TypeNewOrder                NotificationType = "new_order"
	TypeVendorOrderCancellation NotificationType = "restaurant_order_cancellation"
	TypeNewReview               NotificationType = "new_review"
	TypeLowStock                NotificationType = "low_stock"
	TypePaymentReceived         NotificationType = "payment_received"
	// Account lifecycle
	TypeAccount NotificationType = "account"
)

func (t NotificationType) String() string { return string(t) }

// IsRecognized reports whether the type belongs to the known set. Unknown
// types are still accepted for delivery; they only lose their canned display
// text and fall back to the generic title/body.
func (t NotificationType) IsRecognized() bool {
	switch t {
	case TypeOrderConfirmation, TypeOrderStatusChange, TypeDeliveryDelay,
		TypeOrderCancellation, TypePaymentSuccess, TypePaymentFailed,
		TypeRefundProcessed, TypeDiscountOffer, TypeNewRestaurant,
		TypeReviewReminder, TypeRestaurantReply, TypeNewOrder,
		TypeVendorOrderCancellation, TypeNewReview, TypeLowStock,
		TypePaymentReceived, TypeAccount:
		return true
	}
	return false
}

func ParseNotificationType(s string) (NotificationType, error) {
	t := NotificationType(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return "", fmt.Errorf("%w: notification type is required", ErrValidation)
	}
	return t, nil
}

// Payload carries structured context alongside a notification. It is stored
// as JSON and, for the push wire format, coerced to string values.
type Payload map[string]any

// Hash returns the hex sha256 of the canonical JSON encoding. Go's JSON
// encoder emits map keys in sorted order, so equal payloads hash equally.
func (p Payload) Hash() string {
	raw, err := json.Marshal(p)
	if err != nil {
		raw = []byte(fmt.Sprintf("%v", map[string]any(p)))
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Strings coerces every value to a string for the push data map, which
// requires string values on the wire.
func (p Payload) Strings() map[string]string {
	out := make(map[string]string, len(p))
	for k, v := range p {
		out[k] = coerceString(v)
	}
	return out
}

func coerceString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case json.Number:
		return value.String()
	default:
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(raw)
	}
}

const MaxMessageLength = 2000

// Notification is one delivered-or-attempted notification row owned by a
// single user. Created exactly once; afterwards only read-state transitions
// mutate it.
type Notification struct {
	ID          string           `json:"id"`
	UserID      string           `json:"userId"`
	Message     string           `json:"message"`
	Type        NotificationType `json:"type"`
	IsRead      bool             `json:"isRead"`
	Payload     Payload          `json:"payload,omitempty"`
	PayloadHash string           `json:"-"`
	DedupKey    *string          `json:"dedupKey,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}

func (n *Notification) Validate() error {
	if strings.TrimSpace(n.UserID) == "" {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if strings.TrimSpace(n.Message) == "" {
		return fmt.Errorf("%w: message is required", ErrValidation)
	}
	if len([]rune(n.Message)) > MaxMessageLength {
		return fmt.Errorf("%w: message exceeds %d characters", ErrValidation, MaxMessageLength)
	}
	if strings.TrimSpace(n.Type.String()) == "" {
		return fmt.Errorf("%w: notification type is required", ErrValidation)
	}
	return nil
}
