package repository

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pazarhub/notify-service/internal/domain"
)

// JSONMap stores a payload map as a JSONB column.
type JSONMap map[string]any

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", value)
	}
}

// NotificationModel is the persistence model for the notifications table.
type NotificationModel struct {
	ID          string                  `gorm:"type:uuid;primaryKey"`
	UserID      string                  `gorm:"type:uuid;not null"`
	Message     string                  `gorm:"type:text;not null"`
	Type        domain.NotificationType `gorm:"column:notification_type;type:varchar(50);not null"`
	IsRead      bool                    `gorm:"not null;default:false"`
	Payload     JSONMap                 `gorm:"type:jsonb"`
	PayloadHash string                  `gorm:"type:char(64);not null"`
	DedupKey    *string                 `gorm:"type:varchar(255)"`
	CreatedAt   time.Time
}

func (NotificationModel) TableName() string {
	return "notifications"
}

// OrderNotificationModel is the persistence model for order_notifications.
// The order reference is a plain column without a cascading constraint: the
// row is an audit record and must survive order-side deletes.
type OrderNotificationModel struct {
	ID             string `gorm:"type:uuid;primaryKey"`
	NotificationID string `gorm:"type:uuid;not null;uniqueIndex:idx_order_notifications_notification"`
	OrderID        string `gorm:"type:varchar(64);not null;index:idx_order_notifications_order"`
	StatusBefore   string `gorm:"type:varchar(50);not null"`
	StatusAfter    string `gorm:"type:varchar(50);not null"`
	Snapshot       []byte `gorm:"type:jsonb;not null"`
	CreatedAt      time.Time
}

func (OrderNotificationModel) TableName() string {
	return "order_notifications"
}

// UserDeviceModel is the persistence model for user_devices.
type UserDeviceModel struct {
	ID        string          `gorm:"type:uuid;primaryKey"`
	UserID    string          `gorm:"type:uuid;not null;index:idx_user_devices_user"`
	Token     string          `gorm:"type:text;not null;uniqueIndex:idx_user_devices_token"`
	Platform  domain.Platform `gorm:"type:varchar(10);not null"`
	CreatedAt time.Time
}

func (UserDeviceModel) TableName() string {
	return "user_devices"
}

// PushAttemptModel is the persistence model for push_attempts.
type PushAttemptModel struct {
	ID             string  `gorm:"type:uuid;primaryKey"`
	NotificationID string  `gorm:"type:uuid;not null;index:idx_push_attempts_notification"`
	TokenCount     int     `gorm:"not null"`
	SuccessCount   int     `gorm:"not null"`
	FailureCount   int     `gorm:"not null"`
	Error          *string `gorm:"type:text"`
	CreatedAt      time.Time
}

func (PushAttemptModel) TableName() string {
	return "push_attempts"
}

func notificationModelFromDomain(n *domain.Notification) *NotificationModel {
	if n == nil {
		return nil
	}

	return &NotificationModel{
		ID:          n.ID,
		UserID:      n.UserID,
		Message:     n.Message,
		Type:        n.Type,
		IsRead:      n.IsRead,
		Payload:     JSONMap(n.Payload),
		PayloadHash: n.PayloadHash,
		DedupKey:    n.DedupKey,
		CreatedAt:   n.CreatedAt,
	}
}

func notificationModelToDomain(m *NotificationModel) *domain.Notification {
	if m == nil {
		return nil
	}

	return &domain.Notification{
		ID:          m.ID,
		UserID:      m.UserID,
		Message:     m.Message,
		Type:        m.Type,
		IsRead:      m.IsRead,
		Payload:     domain.Payload(m.Payload),
		PayloadHash: m.PayloadHash,
		DedupKey:    m.DedupKey,
		CreatedAt:   m.CreatedAt,
	}
}

func orderNotificationModelFromDomain(o *domain.OrderNotification) (*OrderNotificationModel, error) {
	if o == nil {
		return nil, nil
	}

	snapshot, err := json.Marshal(o.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order snapshot: %w", err)
	}

	return &OrderNotificationModel{
		ID:             o.ID,
		NotificationID: o.NotificationID,
		OrderID:        o.OrderID,
		StatusBefore:   o.StatusBefore,
		StatusAfter:    o.StatusAfter,
		Snapshot:       snapshot,
		CreatedAt:      o.CreatedAt,
	}, nil
}

func orderNotificationModelToDomain(m *OrderNotificationModel) (*domain.OrderNotification, error) {
	if m == nil {
		return nil, nil
	}

	var snapshot domain.OrderSnapshot
	if len(m.Snapshot) > 0 {
		if err := json.Unmarshal(m.Snapshot, &snapshot); err != nil {
			return nil, fmt.Errorf("failed to decode order snapshot: %w", err)
		}
	}

	return &domain.OrderNotification{
		ID:             m.ID,
		NotificationID: m.NotificationID,
		OrderID:        m.OrderID,
		StatusBefore:   m.StatusBefore,
		StatusAfter:    m.StatusAfter,
		Snapshot:       snapshot,
		CreatedAt:      m.CreatedAt,
	}, nil
}

func userDeviceModelFromDomain(d *domain.UserDevice) *UserDeviceModel {
	if d == nil {
		return nil
	}

	return &UserDeviceModel{
		ID:        d.ID,
		UserID:    d.UserID,
		Token:     d.Token,
		Platform:  d.Platform,
		CreatedAt: d.CreatedAt,
	}
}

func userDeviceModelToDomain(m *UserDeviceModel) *domain.UserDevice {
	if m == nil {
		return nil
	}

	return &domain.UserDevice{
		ID:        m.ID,
		UserID:    m.UserID,
		Token:     m.Token,
		Platform:  m.Platform,
		CreatedAt: m.CreatedAt,
	}
}

func pushAttemptModelFromDomain(a *domain.PushAttempt) *PushAttemptModel {
	if a == nil {
		return nil
	}

	return &PushAttemptModel{
		ID:             a.ID,
		NotificationID: a.NotificationID,
		TokenCount:     a.TokenCount,
		SuccessCount:   a.SuccessCount,
		FailureCount:   a.FailureCount,
		Error:          a.Error,
		CreatedAt:      a.CreatedAt,
	}
}

func pushAttemptModelToDomain(m *PushAttemptModel) *domain.PushAttempt {
	if m == nil {
		return nil
	}

	return &domain.PushAttempt{
		ID:             m.ID,
		NotificationID: m.NotificationID,
		TokenCount:     m.TokenCount,
		SuccessCount:   m.SuccessCount,
		FailureCount:   m.FailureCount,
		Error:          m.Error,
		CreatedAt:      m.CreatedAt,
	}
}
