package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// StatusUnknown is the sentinel recorded when a caller does not supply the
// prior order status. The audit field is never left empty.
const StatusUnknown = "unknown"

// OrderItem is one line of an order as handed over by the order domain.
// Monetary amounts are minor units (cents) so totals stay exact.
type OrderItem struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// Order is the order domain's view of an order at event time. This subsystem
// never loads or mutates orders; it only reads what the emitter passes in.
type Order struct {
	ID              string
	CustomerUserID  string
	VendorUserID    string
	VendorID        string
	VendorName      string
	DeliveryAddress string
	PaymentStatus   string
	DeliveryStatus  string
	Items           []OrderItem
}

// TotalCents sums quantity × unit price over all line items.
func (o Order) TotalCents() int64 {
	var total int64
	for _, item := range o.Items {
		total += int64(item.Quantity) * item.UnitPriceCents
	}
	return total
}

// ProductIDs returns the distinct product ids in line-item order, so a push
// consumer can correlate the notification with catalog entries without a
// second fetch.
func (o Order) ProductIDs() []string {
	seen := make(map[string]struct{}, len(o.Items))
	ids := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

func (o Order) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return fmt.Errorf("%w: order id is required", ErrValidation)
	}
	if strings.TrimSpace(o.CustomerUserID) == "" {
		return fmt.Errorf("%w: order customer user id is required", ErrValidation)
	}
	for i, item := range o.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item %d quantity must be positive", ErrValidation, i)
		}
		if item.UnitPriceCents < 0 {
			return fmt.Errorf("%w: item %d unit price must not be negative", ErrValidation, i)
		}
	}
	return nil
}

// OrderSnapshot is the immutable capture stored with an order notification.
// It is written whole at creation time and never recomputed from the live
// order, so it stays valid after the order's items change or disappear.
type OrderSnapshot struct {
	Items           []OrderItem `json:"items"`
	TotalCents      int64       `json:"total_cents"`
	Total           string      `json:"total"`
	DeliveryAddress string      `json:"delivery_address"`
	PaymentStatus   string      `json:"payment_status"`
	Vendor          string      `json:"vendor,omitempty"`
}

// SnapshotOf captures the order as it stands right now.
func SnapshotOf(order Order) OrderSnapshot {
	items := make([]OrderItem, len(order.Items))
	copy(items, order.Items)

	total := order.TotalCents()
	return OrderSnapshot{
		Items:           items,
		TotalCents:      total,
		Total:           FormatCents(total),
		DeliveryAddress: order.DeliveryAddress,
		PaymentStatus:   order.PaymentStatus,
		Vendor:          order.VendorName,
	}
}

// Digest returns a short hex digest of the snapshot content. Two calls
// recording different snapshots for the same order yield different digests,
// which keeps their notifications distinct under payload-signature dedup.
func (s OrderSnapshot) Digest() string {
	raw, err := json.Marshal(s)
	if err != nil {
		raw = []byte(fmt.Sprintf("%+v", s))
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:8])
}

// FormatCents renders minor units as a decimal amount, e.g. 1250 -> "12.50".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// OrderNotification is the audit child of an order-related notification:
// status transition plus the snapshot taken when the notification was
// created. At most one exists per notification; the status fields may be
// rewritten by a later pass over the same notification, the snapshot is only
// ever replaced whole.
type OrderNotification struct {
	ID             string        `json:"id"`
	NotificationID string        `json:"notificationId"`
	OrderID        string        `json:"orderId"`
	StatusBefore   string        `json:"statusBefore"`
	StatusAfter    string        `json:"statusAfter"`
	Snapshot       OrderSnapshot `json:"snapshot"`
	CreatedAt      time.Time     `json:"createdAt"`
}

func (o *OrderNotification) Validate() error {
	if strings.TrimSpace(o.NotificationID) == "" {
		return fmt.Errorf("%w: notification id is required", ErrValidation)
	}
	if strings.TrimSpace(o.OrderID) == "" {
		return fmt.Errorf("%w: order id is required", ErrValidation)
	}
	if strings.TrimSpace(o.StatusBefore) == "" {
		return fmt.Errorf("%w: status before is required", ErrValidation)
	}
	if strings.TrimSpace(o.StatusAfter) == "" {
		return fmt.Errorf("%w: status after is required", ErrValidation)
	}
	return nil
}
