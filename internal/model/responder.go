package model

import (
	"time"

	"github.com/google/uuid"
)

type ResponderStatus string

const (
	ResponderStatusAccepted ResponderStatus = "ACCEPTED"
	ResponderStatusEnRoute  ResponderStatus = "EN_ROUTE"
	ResponderStatusResolved ResponderStatus = "RESOLVED"
)

// AlertResponder records one responder's successful claim of an alert. The
// backend may allow several responders per alert; each claim is its own row.
type AlertResponder struct {
	AlertID       uuid.UUID       `json:"alert_id"`
	ResponderID   uuid.UUID       `json:"responder_id"`
	ResponderName string          `json:"responder_name"`
	Status        ResponderStatus `json:"status"`
	AcceptedAt    time.Time       `json:"accepted_at"`
}
