package domain

import "time"

// PushAttempt records the outcome summary of one multicast push call for a
// notification. Best-effort audit only; a failed write never affects the
// notification itself.
type PushAttempt struct {
	ID             string
	NotificationID string
	TokenCount     int
	SuccessCount   int
	FailureCount   int
	Error          *string
	CreatedAt      time.Time
}
