package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/cse408-project/secureherai-go/internal/dto"
	"github.com/cse408-project/secureherai-go/internal/model"
	"github.com/cse408-project/secureherai-go/internal/store"
	"github.com/cse408-project/secureherai-go/pkg/apperror"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AlertChannel is the slice of the backend transport the lifecycle controller
// needs. Satisfied by *client.Client.
type AlertChannel interface {
	TriggerAlert(ctx context.Context, req dto.TriggerAlertRequest, idempotencyKey string) (*model.Alert, error)
	CancelAlert(ctx context.Context, alertID uuid.UUID) error
	ResolveAlert(ctx context.Context, alertID uuid.UUID) error
}

// LocationProvider is the device location service. Implementations live
// outside this module; tests use fakes.
type LocationProvider interface {
	CurrentLocation(ctx context.Context, timeout time.Duration) (*model.Location, error)
}

// RecipientResolver yields the fan-out set: trusted contacts with location
// consent plus on-duty responders. An empty result is valid.
type RecipientResolver interface {
	ResolveRecipients(ctx context.Context) ([]model.ContactRef, error)
}

// LifecycleController turns an SOS gesture into a dispatched alert and
// manages the alert's client-visible status until it terminates.
type LifecycleController struct {
	channel         AlertChannel
	location        LocationProvider
	recipients      RecipientResolver
	alerts          *store.AlertStore
	locationTimeout time.Duration
	logger          *logrus.Logger
}

func NewLifecycleController(
	channel AlertChannel,
	location LocationProvider,
	recipients RecipientResolver,
	alerts *store.AlertStore,
	locationTimeout time.Duration,
	logger *logrus.Logger,
) *LifecycleController {
	return &LifecycleController{
		channel:         channel,
		location:        location,
		recipients:      recipients,
		alerts:          alerts,
		locationTimeout: locationTimeout,
		logger:          logger,
	}
}

// Trigger dispatches a new alert. Location acquisition is time-bounded and
// never fatal: an alert without a fix still goes out, flagged degraded,
// because silence is worse than imprecision. An empty recipient set is not an
// error either; it produces an alert with zero notifications.
//
// A timed-out submission is retried exactly once, reusing the same
// idempotency key so the backend cannot create a duplicate alert.
func (c *LifecycleController) Trigger(ctx context.Context, method model.TriggerMethod, message, audioRef string) (*model.Alert, error) {
	if !method.Valid() {
		return nil, apperror.New(0, fmt.Sprintf("unknown trigger method %q", method), apperror.ErrInvalidInput)
	}

	location, err := c.location.CurrentLocation(ctx, c.locationTimeout)
	degraded := err != nil
	if degraded {
		c.logger.WithError(err).Warn("location acquisition failed, dispatching without a fix")
		location = nil
	}

	contacts, err := c.recipients.ResolveRecipients(ctx)
	if err != nil {
		// Dispatching with nobody resolved still beats not dispatching at
		// all; the caller warns the user separately.
		c.logger.WithError(err).Warn("recipient resolution failed, dispatching with empty set")
		contacts = nil
	}

	req := dto.TriggerAlertRequest{
		TriggerMethod:    string(method),
		Message:          message,
		AudioRef:         audioRef,
		LocationDegraded: degraded,
		Contacts:         toContactPayloads(contacts),
	}
	if location != nil {
		req.Location = &dto.LocationPayload{
			Latitude:  location.Latitude,
			Longitude: location.Longitude,
			Address:   location.Address,
		}
	}

	idempotencyKey := uuid.NewString()
	alert, err := c.channel.TriggerAlert(ctx, req, idempotencyKey)
	if err != nil && apperror.Retryable(err) {
		c.logger.WithField("idempotency_key", idempotencyKey).Warn("trigger timed out, retrying once")
		alert, err = c.channel.TriggerAlert(ctx, req, idempotencyKey)
	}
	if err != nil {
		return nil, err
	}

	c.alerts.AppendSent(*alert)
	c.logger.WithFields(logrus.Fields{
		"alert_id":   alert.ID,
		"recipients": len(contacts),
		"degraded":   degraded,
	}).Info("alert dispatched")
	return alert, nil
}

// Cancel withdraws one of the creator's own pending alerts. The local guard
// refuses obviously-futile requests without touching the network; the backend
// remains the authority for races across devices.
func (c *LifecycleController) Cancel(ctx context.Context, alertID uuid.UUID) error {
	if status, ok := c.alerts.SentStatus(alertID); ok && status != model.AlertStatusPending {
		return apperror.New(0, fmt.Sprintf("cannot cancel alert in state %s", status), apperror.ErrInvalidState)
	}
	if err := c.channel.CancelAlert(ctx, alertID); err != nil {
		return err
	}
	// Optimistic; reconciled on the next history fetch.
	c.alerts.UpdateSentStatus(alertID, model.AlertStatusCancelled)
	return nil
}

// Resolve closes an alert from PENDING or ACCEPTED.
func (c *LifecycleController) Resolve(ctx context.Context, alertID uuid.UUID) error {
	if status, ok := c.alerts.SentStatus(alertID); ok && !status.CanTransition(model.AlertStatusResolved) {
		return apperror.New(0, fmt.Sprintf("cannot resolve alert in state %s", status), apperror.ErrInvalidState)
	}
	if err := c.channel.ResolveAlert(ctx, alertID); err != nil {
		return err
	}
	c.alerts.UpdateSentStatus(alertID, model.AlertStatusResolved)
	return nil
}

// SentHistory returns a snapshot of the creator's dispatched alerts.
func (c *LifecycleController) SentHistory() []model.Alert {
	return c.alerts.Sent()
}

// Reconcile installs a freshly fetched history. Last fetch wins over any
// optimistic local status.
func (c *LifecycleController) Reconcile(fetched []model.Alert) {
	c.alerts.ReplaceSent(fetched)
}

func toContactPayloads(contacts []model.ContactRef) []dto.ContactPayload {
	out := make([]dto.ContactPayload, 0, len(contacts))
	for _, contact := range contacts {
		out = append(out, dto.ContactPayload{
			ID:    contact.ID,
			Name:  contact.Name,
			Email: contact.Email,
		})
	}
	return out
}
