package mockserver

import "github.com/cse408-project/secureherai-go/internal/model"

func toModelAlert(row *Alert) *model.Alert {
	alert := &model.Alert{
		ID:               row.ID,
		UserID:           row.UserID,
		TriggerMethod:    model.TriggerMethod(row.TriggerMethod),
		Status:           model.AlertStatus(row.Status),
		LocationDegraded: row.LocationDegraded,
		Message:          row.Message,
		AudioEvidenceRef: row.AudioRef,
		TriggeredAt:      row.TriggeredAt,
		UpdatedAt:        row.UpdatedAt,
	}
	if row.Latitude != nil && row.Longitude != nil {
		alert.Location = &model.Location{
			Latitude:  *row.Latitude,
			Longitude: *row.Longitude,
			Address:   row.Address,
		}
	}
	return alert
}

func toModelAlerts(rows []Alert) []model.Alert {
	out := make([]model.Alert, 0, len(rows))
	for i := range rows {
		out = append(out, *toModelAlert(&rows[i]))
	}
	return out
}

func toModelNotification(row *Notification) *model.Notification {
	return &model.Notification{
		ID:          row.ID,
		AlertID:     row.AlertID,
		RecipientID: row.RecipientID,
		Type:        model.NotificationType(row.Type),
		BatchNumber: row.BatchNumber,
		Message:     row.Message,
		IsRead:      row.IsRead,
		CreatedAt:   row.CreatedAt,
		ExpiresAt:   row.ExpiresAt,
	}
}

func toModelNotifications(rows []Notification) []model.Notification {
	out := make([]model.Notification, 0, len(rows))
	for i := range rows {
		out = append(out, *toModelNotification(&rows[i]))
	}
	return out
}

func toModelResponder(row *AlertResponder) *model.AlertResponder {
	return &model.AlertResponder{
		AlertID:       row.AlertID,
		ResponderID:   row.ResponderID,
		ResponderName: row.ResponderName,
		Status:        model.ResponderStatus(row.Status),
		AcceptedAt:    row.AcceptedAt,
	}
}

func toModelResponders(rows []AlertResponder) []model.AlertResponder {
	out := make([]model.AlertResponder, 0, len(rows))
	for i := range rows {
		out = append(out, *toModelResponder(&rows[i]))
	}
	return out
}

func toModelEmails(rows []EmailNotification) []model.EmailNotification {
	out := make([]model.EmailNotification, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.EmailNotification{
			ID:             row.ID,
			AlertID:        row.AlertID,
			RecipientEmail: row.RecipientEmail,
			Subject:        row.Subject,
			Status:         row.Status,
			SentAt:         row.SentAt,
		})
	}
	return out
}
