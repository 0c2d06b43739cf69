package mockserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cse408-project/secureherai-go/internal/dto"
	"github.com/cse408-project/secureherai-go/internal/model"
	"github.com/cse408-project/secureherai-go/pkg/apperror"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AlertService interface {
	Trigger(ctx context.Context, userID uuid.UUID, req dto.TriggerAlertRequest, idempotencyKey string) (*model.Alert, error)
	Cancel(userID, alertID uuid.UUID) error
	Resolve(userID, alertID uuid.UUID) error
	Accept(ctx context.Context, responderID uuid.UUID, req dto.AcceptAlertRequest) (*model.AlertResponder, error)
	Pending(responderID uuid.UUID) ([]model.Alert, error)
	Accepted(responderID uuid.UUID) ([]model.Alert, error)
}

type alertService struct {
	alerts        AlertRepository
	notifications NotificationRepository
	responders    ResponderRepository
	users         UserRepository
	redisClient   *redis.Client
	idempotency   *gocache.Cache
	sanitizer     *bluemonday.Policy
	alertTTL      time.Duration
	logger        *logrus.Logger
}

func NewAlertService(
	alerts AlertRepository,
	notifications NotificationRepository,
	responders ResponderRepository,
	users UserRepository,
	redisClient *redis.Client,
	alertTTL, idempotencyWindow time.Duration,
	logger *logrus.Logger,
) AlertService {
	return &alertService{
		alerts:        alerts,
		notifications: notifications,
		responders:    responders,
		users:         users,
		redisClient:   redisClient,
		idempotency:   gocache.New(idempotencyWindow, 2*idempotencyWindow),
		sanitizer:     bluemonday.StrictPolicy(),
		alertTTL:      alertTTL,
		logger:        logger,
	}
}

// Trigger creates the alert and fans out wave 1 to the submitted contacts.
// A repeated idempotency key replays the original alert instead of creating
// a duplicate.
func (s *alertService) Trigger(ctx context.Context, userID uuid.UUID, req dto.TriggerAlertRequest, idempotencyKey string) (*model.Alert, error) {
	if idempotencyKey != "" {
		if cached, ok := s.idempotency.Get(idempotencyKey); ok {
			row, err := s.alerts.FindByID(cached.(uuid.UUID))
			if err != nil {
				return nil, apperror.New(0, "failed to replay alert", apperror.ErrInternal)
			}
			s.logger.WithField("alert_id", row.ID).Info("replayed trigger for repeated idempotency key")
			return toModelAlert(row), nil
		}
	}

	creator, err := s.users.FindByID(userID)
	if err != nil {
		return nil, apperror.New(0, "unknown user", apperror.ErrUnauthorized)
	}

	now := time.Now()
	row := &Alert{
		ID:               uuid.New(),
		UserID:           userID,
		TriggerMethod:    req.TriggerMethod,
		Status:           string(model.AlertStatusPending),
		Message:          s.sanitizer.Sanitize(req.Message),
		AudioRef:         req.AudioRef,
		LocationDegraded: req.LocationDegraded,
		LastBatch:        1,
		TriggeredAt:      now,
		UpdatedAt:        now,
	}
	if req.Location != nil {
		row.Latitude = &req.Location.Latitude
		row.Longitude = &req.Location.Longitude
		row.Address = req.Location.Address
	}
	if err := s.alerts.Create(row); err != nil {
		return nil, apperror.New(0, "failed to store alert", apperror.ErrStorageUnavailable)
	}

	expiresAt := now.Add(s.alertTTL)
	for _, contact := range req.Contacts {
		notification := &Notification{
			ID:          uuid.New(),
			AlertID:     row.ID,
			RecipientID: contact.ID,
			Type:        string(model.NotificationEmergencyRequest),
			BatchNumber: 1,
			Message:     fmt.Sprintf("%s needs help right now", creator.FullName),
			CreatedAt:   now,
			ExpiresAt:   &expiresAt,
		}
		if err := s.notifications.Create(notification); err != nil {
			return nil, apperror.New(0, "failed to fan out notification", apperror.ErrStorageUnavailable)
		}
		s.publish(ctx, notification)

		if contact.Email != "" {
			email := &EmailNotification{
				ID:             uuid.New(),
				AlertID:        row.ID,
				RecipientEmail: contact.Email,
				Subject:        fmt.Sprintf("Emergency alert from %s", creator.FullName),
				Status:         "sent",
				SentAt:         now,
			}
			if err := s.notifications.CreateEmail(email); err != nil {
				return nil, apperror.New(0, "failed to record email delivery", apperror.ErrStorageUnavailable)
			}
		}
	}

	if idempotencyKey != "" {
		s.idempotency.Set(idempotencyKey, row.ID, gocache.DefaultExpiration)
	}
	return toModelAlert(row), nil
}

func (s *alertService) Cancel(userID, alertID uuid.UUID) error {
	row, err := s.alerts.FindByID(alertID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.New(0, "alert not found", apperror.ErrNotFound)
		}
		return apperror.New(0, "failed to load alert", apperror.ErrStorageUnavailable)
	}
	if row.UserID != userID {
		return apperror.New(0, "only the alert creator may cancel", apperror.ErrForbidden)
	}

	ok, err := s.alerts.TransitionStatus(alertID, []string{string(model.AlertStatusPending)}, string(model.AlertStatusCancelled))
	if err != nil {
		return apperror.New(0, "failed to cancel alert", apperror.ErrStorageUnavailable)
	}
	if !ok {
		return apperror.New(0, fmt.Sprintf("cannot cancel alert in state %s", row.Status), apperror.ErrInvalidState)
	}
	return nil
}

func (s *alertService) Resolve(userID, alertID uuid.UUID) error {
	row, err := s.alerts.FindByID(alertID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.New(0, "alert not found", apperror.ErrNotFound)
		}
		return apperror.New(0, "failed to load alert", apperror.ErrStorageUnavailable)
	}
	if row.UserID != userID {
		// A responder who claimed the alert may also resolve it.
		if _, err := s.responders.FindByAlertAndResponder(alertID, userID); err != nil {
			return apperror.New(0, "not a party to this alert", apperror.ErrForbidden)
		}
	}

	ok, err := s.alerts.TransitionStatus(alertID,
		[]string{string(model.AlertStatusPending), string(model.AlertStatusAccepted)},
		string(model.AlertStatusResolved))
	if err != nil {
		return apperror.New(0, "failed to resolve alert", apperror.ErrStorageUnavailable)
	}
	if !ok {
		return apperror.New(0, fmt.Sprintf("cannot resolve alert in state %s", row.Status), apperror.ErrInvalidState)
	}
	if err := s.responders.ResolveByAlert(alertID); err != nil {
		s.logger.WithError(err).Warn("failed to resolve responder rows")
	}
	return nil
}

// Accept settles the claim race with one conditional update: whoever flips
// PENDING to ACCEPTED first wins, everyone else gets a conflict or, if the
// alert already aged out, a gone.
func (s *alertService) Accept(ctx context.Context, responderID uuid.UUID, req dto.AcceptAlertRequest) (*model.AlertResponder, error) {
	ok, err := s.alerts.TransitionStatus(req.AlertID, []string{string(model.AlertStatusPending)}, string(model.AlertStatusAccepted))
	if err != nil {
		return nil, apperror.New(0, "failed to claim alert", apperror.ErrStorageUnavailable)
	}
	if !ok {
		row, err := s.alerts.FindByID(req.AlertID)
		if err != nil {
			return nil, apperror.New(0, "alert not found", apperror.ErrNotFound)
		}
		switch row.Status {
		case string(model.AlertStatusAccepted):
			return nil, apperror.New(0, "alert already claimed by another responder", apperror.ErrAlreadyClaimed)
		default:
			// Expired, cancelled or resolved: no longer actionable either way.
			return nil, apperror.New(0, fmt.Sprintf("alert is %s", row.Status), apperror.ErrExpired)
		}
	}

	now := time.Now()
	responder := &AlertResponder{
		ID:            uuid.New(),
		AlertID:       req.AlertID,
		ResponderID:   responderID,
		ResponderName: req.ResponderName,
		Status:        string(model.ResponderStatusAccepted),
		AcceptedAt:    now,
	}
	if err := s.responders.Create(responder); err != nil {
		return nil, apperror.New(0, "failed to record acceptance", apperror.ErrStorageUnavailable)
	}

	// Tell the creator someone is coming. This notification never expires.
	notification := &Notification{
		ID:          uuid.New(),
		AlertID:     req.AlertID,
		RecipientID: req.AlertUserID,
		Type:        string(model.NotificationEmergencyAccepted),
		BatchNumber: 1,
		Message:     fmt.Sprintf("%s accepted your emergency alert", req.ResponderName),
		CreatedAt:   now,
	}
	if err := s.notifications.Create(notification); err != nil {
		s.logger.WithError(err).Warn("failed to create acceptance notification")
	} else {
		s.publish(ctx, notification)
	}

	return toModelResponder(responder), nil
}

func (s *alertService) Pending(responderID uuid.UUID) ([]model.Alert, error) {
	rows, err := s.alerts.PendingExcluding(responderID)
	if err != nil {
		return nil, apperror.New(0, "failed to list pending alerts", apperror.ErrStorageUnavailable)
	}
	return toModelAlerts(rows), nil
}

func (s *alertService) Accepted(responderID uuid.UUID) ([]model.Alert, error) {
	rows, err := s.alerts.AcceptedByResponder(responderID)
	if err != nil {
		return nil, apperror.New(0, "failed to list accepted alerts", apperror.ErrStorageUnavailable)
	}
	return toModelAlerts(rows), nil
}

// publish pushes the notification onto the recipient's redis channel when
// redis is configured; the REST polling surface works the same without it.
func (s *alertService) publish(ctx context.Context, notification *Notification) {
	if s.redisClient == nil {
		return
	}
	channel := fmt.Sprintf("user_notifications:%s", notification.RecipientID)
	payload, err := json.Marshal(toModelNotification(notification))
	if err == nil {
		s.redisClient.Publish(ctx, channel, payload)
	}
}

type NotificationService interface {
	List(recipientID uuid.UUID, page, size int) ([]model.Notification, dto.PaginationMeta, error)
	Unread(recipientID uuid.UUID) ([]model.Notification, error)
	UnreadCount(recipientID uuid.UUID) (int64, error)
	MarkRead(id, recipientID uuid.UUID) error
	MarkAllRead(recipientID uuid.UUID) error
	ByAlert(alertID uuid.UUID) (*dto.AlertNotificationsResponse, error)
}

type notificationService struct {
	notifications NotificationRepository
	responders    ResponderRepository
}

func NewNotificationService(notifications NotificationRepository, responders ResponderRepository) NotificationService {
	return &notificationService{notifications: notifications, responders: responders}
}

func (s *notificationService) List(recipientID uuid.UUID, page, size int) ([]model.Notification, dto.PaginationMeta, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	rows, err := s.notifications.ByRecipient(recipientID, size, (page-1)*size)
	if err != nil {
		return nil, dto.PaginationMeta{}, apperror.New(0, "failed to list notifications", apperror.ErrStorageUnavailable)
	}
	total, err := s.notifications.CountByRecipient(recipientID)
	if err != nil {
		return nil, dto.PaginationMeta{}, apperror.New(0, "failed to count notifications", apperror.ErrStorageUnavailable)
	}

	meta := dto.PaginationMeta{
		CurrentPage: page,
		TotalItems:  total,
		Limit:       size,
		TotalPages:  int((total + int64(size) - 1) / int64(size)),
	}
	return toModelNotifications(rows), meta, nil
}

func (s *notificationService) Unread(recipientID uuid.UUID) ([]model.Notification, error) {
	rows, err := s.notifications.UnreadByRecipient(recipientID, time.Now())
	if err != nil {
		return nil, apperror.New(0, "failed to list unread notifications", apperror.ErrStorageUnavailable)
	}
	return toModelNotifications(rows), nil
}

func (s *notificationService) UnreadCount(recipientID uuid.UUID) (int64, error) {
	count, err := s.notifications.CountUnread(recipientID, time.Now())
	if err != nil {
		return 0, apperror.New(0, "failed to count unread notifications", apperror.ErrStorageUnavailable)
	}
	return count, nil
}

func (s *notificationService) MarkRead(id, recipientID uuid.UUID) error {
	if err := s.notifications.MarkRead(id, recipientID); err != nil {
		return apperror.New(0, "failed to mark notification read", apperror.ErrStorageUnavailable)
	}
	return nil
}

func (s *notificationService) MarkAllRead(recipientID uuid.UUID) error {
	if err := s.notifications.MarkAllRead(recipientID); err != nil {
		return apperror.New(0, "failed to mark notifications read", apperror.ErrStorageUnavailable)
	}
	return nil
}

// ByAlert assembles the audit view for one alert: every in-app delivery
// (expired included), every email record, and every acceptance.
func (s *notificationService) ByAlert(alertID uuid.UUID) (*dto.AlertNotificationsResponse, error) {
	inApp, err := s.notifications.ByAlert(alertID)
	if err != nil {
		return nil, apperror.New(0, "failed to load alert notifications", apperror.ErrStorageUnavailable)
	}
	emails, err := s.notifications.EmailsByAlert(alertID)
	if err != nil {
		return nil, apperror.New(0, "failed to load alert emails", apperror.ErrStorageUnavailable)
	}
	responders, err := s.responders.ByAlert(alertID)
	if err != nil {
		return nil, apperror.New(0, "failed to load alert acceptances", apperror.ErrStorageUnavailable)
	}

	return &dto.AlertNotificationsResponse{
		InAppNotifications:   toModelNotifications(inApp),
		EmailNotifications:   toModelEmails(emails),
		ResponderAcceptances: toModelResponders(responders),
		TotalNotifications:   len(inApp) + len(emails),
	}, nil
}
