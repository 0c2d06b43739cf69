package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationEmergencyRequest  NotificationType = "EMERGENCY_REQUEST"
	NotificationEmergencyAccepted NotificationType = "EMERGENCY_ACCEPTED"
	NotificationEmergencyExpired  NotificationType = "EMERGENCY_EXPIRED"
	NotificationSystem            NotificationType = "SYSTEM"
	NotificationGeneral           NotificationType = "GENERAL"
)

// Notification is one delivery unit fanned out from an alert to a single
// recipient. Notifications created in the same fan-out wave share a batch
// number, starting at 1.
type Notification struct {
	ID          uuid.UUID        `json:"id"`
	AlertID     uuid.UUID        `json:"alert_id"`
	RecipientID uuid.UUID        `json:"recipient_id"`
	Type        NotificationType `json:"type"`
	BatchNumber int              `json:"batch_number"`
	Message     string           `json:"message,omitempty"`
	IsRead      bool             `json:"is_read"`
	CreatedAt   time.Time        `json:"created_at"`
	// ExpiresAt nil means the notification never expires.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	// Expired is client-local presentation state maintained by the TTL
	// reconciler; it hides the entry from actionable views without ever
	// removing it from history.
	Expired bool `json:"-"`
}

// DueToExpire reports whether the notification's TTL has passed at now and
// it has not been flagged yet.
func (n *Notification) DueToExpire(now time.Time) bool {
	return !n.Expired && n.ExpiresAt != nil && n.ExpiresAt.Before(now)
}

// EmailNotification mirrors the backend's record of an email delivery for an
// alert. The client only reads these in the per-alert audit view.
type EmailNotification struct {
	ID             uuid.UUID `json:"id"`
	AlertID        uuid.UUID `json:"alert_id"`
	RecipientEmail string    `json:"recipient_email"`
	Subject        string    `json:"subject"`
	Status         string    `json:"status"`
	SentAt         time.Time `json:"sent_at"`
}
