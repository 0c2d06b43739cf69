package dto

import "github.com/cse408-project/secureherai-go/internal/model"

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
}

type NotificationListResponse struct {
	Data []model.Notification `json:"data"`
	Meta PaginationMeta       `json:"meta"`
}

type UnreadNotificationsResponse struct {
	Data []model.Notification `json:"data"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// AlertNotificationsResponse is the per-alert audit view: every delivery the
// backend made for one alert, expired entries included.
type AlertNotificationsResponse struct {
	InAppNotifications   []model.Notification      `json:"in_app_notifications"`
	EmailNotifications   []model.EmailNotification `json:"email_notifications"`
	ResponderAcceptances []model.AlertResponder    `json:"responder_acceptances"`
	TotalNotifications   int                       `json:"total_notifications"`
}
