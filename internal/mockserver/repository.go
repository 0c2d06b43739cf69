package mockserver

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(user *User) error
	FindByEmail(email string) (*User, error)
	FindByID(id uuid.UUID) (*User, error)
	Responders() ([]User, error)
	CountByEmail(email string) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) FindByEmail(email string) (*User, error) {
	var user User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(id uuid.UUID) (*User, error) {
	var user User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Responders() ([]User, error) {
	var users []User
	err := r.db.Where("role = ?", "responder").Find(&users).Error
	return users, err
}

func (r *userRepository) CountByEmail(email string) (int64, error) {
	var count int64
	err := r.db.Model(&User{}).Where("email = ?", email).Count(&count).Error
	return count, err
}

type AlertRepository interface {
	Create(alert *Alert) error
	FindByID(id uuid.UUID) (*Alert, error)
	// TransitionStatus flips the alert to next only if its current status is
	// still from; the conditional update is what decides the claim race.
	TransitionStatus(id uuid.UUID, from []string, next string) (bool, error)
	PendingExcluding(userID uuid.UUID) ([]Alert, error)
	ByUser(userID uuid.UUID) ([]Alert, error)
	AcceptedByResponder(responderID uuid.UUID) ([]Alert, error)
	PendingTriggeredBefore(cutoff time.Time, lastBatch int) ([]Alert, error)
	PendingBefore(cutoff time.Time) ([]Alert, error)
	MarkBatch(id uuid.UUID, batch int) error
}

type alertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(alert *Alert) error {
	return r.db.Create(alert).Error
}

func (r *alertRepository) FindByID(id uuid.UUID) (*Alert, error) {
	var alert Alert
	if err := r.db.Where("id = ?", id).First(&alert).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *alertRepository) TransitionStatus(id uuid.UUID, from []string, next string) (bool, error) {
	res := r.db.Model(&Alert{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]any{"status": next, "updated_at": time.Now()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *alertRepository) PendingExcluding(userID uuid.UUID) ([]Alert, error) {
	var alerts []Alert
	err := r.db.Where("status = ? AND user_id <> ?", "PENDING", userID).
		Order("triggered_at desc").
		Find(&alerts).Error
	return alerts, err
}

func (r *alertRepository) ByUser(userID uuid.UUID) ([]Alert, error) {
	var alerts []Alert
	err := r.db.Where("user_id = ?", userID).
		Order("triggered_at desc").
		Find(&alerts).Error
	return alerts, err
}

func (r *alertRepository) AcceptedByResponder(responderID uuid.UUID) ([]Alert, error) {
	var alerts []Alert
	err := r.db.
		Joins("JOIN alert_responders ON alert_responders.alert_id = alerts.id").
		Where("alert_responders.responder_id = ?", responderID).
		Order("alerts.triggered_at desc").
		Find(&alerts).Error
	return alerts, err
}

func (r *alertRepository) PendingTriggeredBefore(cutoff time.Time, lastBatch int) ([]Alert, error) {
	var alerts []Alert
	err := r.db.Where("status = ? AND last_batch = ? AND triggered_at < ?", "PENDING", lastBatch, cutoff).
		Find(&alerts).Error
	return alerts, err
}

func (r *alertRepository) PendingBefore(cutoff time.Time) ([]Alert, error) {
	var alerts []Alert
	err := r.db.Where("status = ? AND triggered_at < ?", "PENDING", cutoff).
		Find(&alerts).Error
	return alerts, err
}

func (r *alertRepository) MarkBatch(id uuid.UUID, batch int) error {
	return r.db.Model(&Alert{}).Where("id = ?", id).Update("last_batch", batch).Error
}

type NotificationRepository interface {
	Create(notification *Notification) error
	ByRecipient(recipientID uuid.UUID, limit, offset int) ([]Notification, error)
	CountByRecipient(recipientID uuid.UUID) (int64, error)
	UnreadByRecipient(recipientID uuid.UUID, now time.Time) ([]Notification, error)
	CountUnread(recipientID uuid.UUID, now time.Time) (int64, error)
	MarkRead(id, recipientID uuid.UUID) error
	MarkAllRead(recipientID uuid.UUID) error
	ByAlert(alertID uuid.UUID) ([]Notification, error)
	CreateEmail(email *EmailNotification) error
	EmailsByAlert(alertID uuid.UUID) ([]EmailNotification, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(notification *Notification) error {
	return r.db.Create(notification).Error
}

func (r *notificationRepository) ByRecipient(recipientID uuid.UUID, limit, offset int) ([]Notification, error) {
	var notifications []Notification
	err := r.db.Where("recipient_id = ?", recipientID).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) CountByRecipient(recipientID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&Notification{}).Where("recipient_id = ?", recipientID).Count(&count).Error
	return count, err
}

func (r *notificationRepository) UnreadByRecipient(recipientID uuid.UUID, now time.Time) ([]Notification, error) {
	var notifications []Notification
	err := r.db.Where("recipient_id = ? AND is_read = ? AND (expires_at IS NULL OR expires_at > ?)",
		recipientID, false, now).
		Order("created_at desc").
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) CountUnread(recipientID uuid.UUID, now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&Notification{}).
		Where("recipient_id = ? AND is_read = ? AND (expires_at IS NULL OR expires_at > ?)",
			recipientID, false, now).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) MarkRead(id, recipientID uuid.UUID) error {
	return r.db.Model(&Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("is_read", true).Error
}

func (r *notificationRepository) MarkAllRead(recipientID uuid.UUID) error {
	return r.db.Model(&Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true).Error
}

func (r *notificationRepository) ByAlert(alertID uuid.UUID) ([]Notification, error) {
	var notifications []Notification
	err := r.db.Where("alert_id = ?", alertID).
		Order("created_at asc").
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) CreateEmail(email *EmailNotification) error {
	return r.db.Create(email).Error
}

func (r *notificationRepository) EmailsByAlert(alertID uuid.UUID) ([]EmailNotification, error) {
	var emails []EmailNotification
	err := r.db.Where("alert_id = ?", alertID).Order("sent_at asc").Find(&emails).Error
	return emails, err
}

type ResponderRepository interface {
	Create(responder *AlertResponder) error
	ByAlert(alertID uuid.UUID) ([]AlertResponder, error)
	FindByAlertAndResponder(alertID, responderID uuid.UUID) (*AlertResponder, error)
	ResolveByAlert(alertID uuid.UUID) error
}

type responderRepository struct {
	db *gorm.DB
}

func NewResponderRepository(db *gorm.DB) ResponderRepository {
	return &responderRepository{db: db}
}

func (r *responderRepository) Create(responder *AlertResponder) error {
	return r.db.Create(responder).Error
}

func (r *responderRepository) ByAlert(alertID uuid.UUID) ([]AlertResponder, error) {
	var responders []AlertResponder
	err := r.db.Where("alert_id = ?", alertID).Order("accepted_at asc").Find(&responders).Error
	return responders, err
}

func (r *responderRepository) FindByAlertAndResponder(alertID, responderID uuid.UUID) (*AlertResponder, error) {
	var responder AlertResponder
	err := r.db.Where("alert_id = ? AND responder_id = ?", alertID, responderID).First(&responder).Error
	if err != nil {
		return nil, err
	}
	return &responder, nil
}

func (r *responderRepository) ResolveByAlert(alertID uuid.UUID) error {
	return r.db.Model(&AlertResponder{}).
		Where("alert_id = ?", alertID).
		Update("status", "RESOLVED").Error
}
