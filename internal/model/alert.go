package model

import (
	"time"

	"github.com/google/uuid"
)

type AlertStatus string

const (
	AlertStatusPending   AlertStatus = "PENDING"
	AlertStatusAccepted  AlertStatus = "ACCEPTED"
	AlertStatusResolved  AlertStatus = "RESOLVED"
	AlertStatusCancelled AlertStatus = "CANCELLED"
	AlertStatusExpired   AlertStatus = "EXPIRED"
)

// Terminal reports whether no further transition is allowed out of s.
func (s AlertStatus) Terminal() bool {
	switch s {
	case AlertStatusResolved, AlertStatusCancelled, AlertStatusExpired:
		return true
	}
	return false
}

// CanTransition reports whether the status machine allows moving to next.
//
//	PENDING  -> ACCEPTED | CANCELLED | EXPIRED | RESOLVED
//	ACCEPTED -> RESOLVED
func (s AlertStatus) CanTransition(next AlertStatus) bool {
	switch s {
	case AlertStatusPending:
		return next == AlertStatusAccepted || next == AlertStatusCancelled ||
			next == AlertStatusExpired || next == AlertStatusResolved
	case AlertStatusAccepted:
		return next == AlertStatusResolved
	}
	return false
}

type TriggerMethod string

const (
	TriggerMethodManual TriggerMethod = "manual"
	TriggerMethodVoice  TriggerMethod = "voice"
	TriggerMethodText   TriggerMethod = "text"
)

func (m TriggerMethod) Valid() bool {
	return m == TriggerMethodManual || m == TriggerMethodVoice || m == TriggerMethodText
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// Alert is one emergency event as the backend reports it. The location
// pointer is nil when acquisition failed at trigger time; the alert is
// dispatched anyway with LocationDegraded set.
type Alert struct {
	ID               uuid.UUID     `json:"id"`
	UserID           uuid.UUID     `json:"user_id"`
	TriggerMethod    TriggerMethod `json:"trigger_method"`
	Status           AlertStatus   `json:"status"`
	Location         *Location     `json:"location,omitempty"`
	LocationDegraded bool          `json:"location_degraded"`
	Message          string        `json:"message,omitempty"`
	AudioEvidenceRef string        `json:"audio_ref,omitempty"`
	TriggeredAt      time.Time     `json:"triggered_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// ContactRef is one resolved recipient for alert fan-out: a trusted contact
// who consented to location sharing, or an on-duty responder.
type ContactRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
}
