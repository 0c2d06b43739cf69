package mockserver

import (
	"time"

	"github.com/google/uuid"
)

// Persistence rows for the development backend. The real backend owns its own
// schema; these only need to be faithful to the wire contract the client
// core tests against.

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	FullName     string
	Role         string `gorm:"type:varchar(20);not null;default:user"` // user | responder
	CreatedAt    time.Time
}

type Alert struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID `gorm:"type:uuid;index;not null"`
	TriggerMethod    string    `gorm:"type:varchar(10);not null"`
	Status           string    `gorm:"type:varchar(10);index;not null"`
	Latitude         *float64
	Longitude        *float64
	Address          string
	LocationDegraded bool
	Message          string
	AudioRef         string
	// LastBatch is the highest fan-out wave dispatched so far; the sweep
	// widens to wave 2 once, when a pending alert goes unanswered.
	LastBatch   int `gorm:"not null;default:1"`
	TriggeredAt time.Time
	UpdatedAt   time.Time
}

type Notification struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	AlertID     uuid.UUID `gorm:"type:uuid;index"`
	RecipientID uuid.UUID `gorm:"type:uuid;index;not null"`
	Type        string    `gorm:"type:varchar(30);not null"`
	BatchNumber int       `gorm:"not null;default:1"`
	Message     string
	IsRead      bool `gorm:"not null;default:false"`
	CreatedAt   time.Time
	ExpiresAt   *time.Time
}

type EmailNotification struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	AlertID        uuid.UUID `gorm:"type:uuid;index;not null"`
	RecipientEmail string    `gorm:"not null"`
	Subject        string
	Status         string `gorm:"type:varchar(10);not null;default:sent"`
	SentAt         time.Time
}

type AlertResponder struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	AlertID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_alert_responder"`
	ResponderID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_alert_responder"`
	ResponderName string
	Status        string `gorm:"type:varchar(10);not null;default:ACCEPTED"`
	AcceptedAt    time.Time
}
