package dto

import (
	"github.com/cse408-project/secureherai-go/internal/model"
	"github.com/google/uuid"
)

type LocationPayload struct {
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
	Address   string  `json:"address"`
}

type ContactPayload struct {
	ID    uuid.UUID `json:"id" binding:"required"`
	Name  string    `json:"name" binding:"required"`
	Email string    `json:"email" binding:"omitempty,email"`
}

// TriggerAlertRequest is the POST /emergency/alert payload. Location is
// optional: an alert with no fix is still dispatched, flagged degraded.
type TriggerAlertRequest struct {
	TriggerMethod    string           `json:"trigger_method" binding:"required,oneof=manual voice text"`
	Message          string           `json:"message"`
	AudioRef         string           `json:"audio_ref"`
	Location         *LocationPayload `json:"location"`
	LocationDegraded bool             `json:"location_degraded"`
	Contacts         []ContactPayload `json:"contacts" binding:"dive"`
}

type AcceptAlertRequest struct {
	AlertID       uuid.UUID `json:"alert_id" binding:"required"`
	AlertUserID   uuid.UUID `json:"alert_user_id" binding:"required"`
	ResponderName string    `json:"responder_name" binding:"required"`
}

type AlertResponse struct {
	Alert model.Alert `json:"alert"`
}

type AcceptAlertResponse struct {
	Responder model.AlertResponder `json:"responder"`
}

type AlertListResponse struct {
	Data []model.Alert `json:"data"`
}
