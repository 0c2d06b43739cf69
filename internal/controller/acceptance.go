package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/cse408-project/secureherai-go/internal/dto"
	"github.com/cse408-project/secureherai-go/internal/model"
	"github.com/cse408-project/secureherai-go/internal/store"
	"github.com/cse408-project/secureherai-go/pkg/apperror"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AcceptanceChannel is the slice of the backend transport the coordinator
// needs. Satisfied by *client.Client.
type AcceptanceChannel interface {
	AcceptAlert(ctx context.Context, req dto.AcceptAlertRequest) (*model.AlertResponder, error)
	PendingAlerts(ctx context.Context) ([]model.Alert, error)
	AcceptedAlerts(ctx context.Context) ([]model.Alert, error)
	MarkRead(ctx context.Context, notificationID uuid.UUID) error
}

// AcceptanceCoordinator runs the responder side of the claim race. It never
// assumes claim exclusivity itself: whatever outcome the backend reports is
// applied to the local views, which keeps the client correct under either a
// single-claim or multi-claim backend policy.
type AcceptanceCoordinator struct {
	channel       AcceptanceChannel
	alerts        *store.AlertStore
	notifications *store.NotificationStore
	logger        *logrus.Logger
}

func NewAcceptanceCoordinator(
	channel AcceptanceChannel,
	alerts *store.AlertStore,
	notifications *store.NotificationStore,
	logger *logrus.Logger,
) *AcceptanceCoordinator {
	return &AcceptanceCoordinator{
		channel:       channel,
		alerts:        alerts,
		notifications: notifications,
		logger:        logger,
	}
}

// Accept claims a pending alert for this responder. Three outcomes are
// distinguished: success promotes the alert to the accepted view; an
// already-claimed conflict or an expiry removes the stale alert from the
// pending view and surfaces a distinct non-retryable error so the UI never
// implies a retry could win.
func (c *AcceptanceCoordinator) Accept(
	ctx context.Context,
	alertID, alertUserID uuid.UUID,
	responderName string,
	sourceNotificationID *uuid.UUID,
) (*model.AlertResponder, error) {
	// Advisory guard only; the backend stays authoritative.
	if status, ok := c.alerts.PendingStatus(alertID); ok && status != model.AlertStatusPending {
		return nil, apperror.New(0, fmt.Sprintf("alert is %s, not pending", status), apperror.ErrInvalidState)
	}

	responder, err := c.channel.AcceptAlert(ctx, dto.AcceptAlertRequest{
		AlertID:       alertID,
		AlertUserID:   alertUserID,
		ResponderName: responderName,
	})
	switch {
	case err == nil:
		if !c.alerts.Promote(alertID) {
			c.logger.WithField("alert_id", alertID).Debug("accepted alert was not in the pending view")
		}
		if sourceNotificationID != nil {
			c.notifications.MarkRead(*sourceNotificationID)
			if err := c.channel.MarkRead(ctx, *sourceNotificationID); err != nil {
				// The claim is already committed server-side; reporting a
				// failed read receipt as a failed accept would mislead the
				// UI into a retry the backend forbids. Read state re-syncs
				// on the next fetch.
				c.logger.WithError(err).Warn("failed to mark source notification read on backend")
			}
		}
		c.logger.WithFields(logrus.Fields{
			"alert_id":  alertID,
			"responder": responder.ResponderID,
		}).Info("alert claim accepted")
		return responder, nil

	case errors.Is(err, apperror.ErrAlreadyClaimed), errors.Is(err, apperror.ErrExpired):
		// Stale either way; drop it from the actionable view.
		c.alerts.RemovePending(alertID)
		return nil, err

	default:
		return nil, err
	}
}

// RefreshPending refetches the responder's pending view. The replacement is
// wholesale: a full fetch is authoritative.
func (c *AcceptanceCoordinator) RefreshPending(ctx context.Context) error {
	alerts, err := c.channel.PendingAlerts(ctx)
	if err != nil {
		return err
	}
	c.alerts.ReplacePending(alerts)
	return nil
}

func (c *AcceptanceCoordinator) RefreshAccepted(ctx context.Context) error {
	alerts, err := c.channel.AcceptedAlerts(ctx)
	if err != nil {
		return err
	}
	c.alerts.ReplaceAccepted(alerts)
	return nil
}

// PendingAlerts returns the current local pending view.
func (c *AcceptanceCoordinator) PendingAlerts() []model.Alert {
	return c.alerts.Pending()
}

// AcceptedAlerts returns the current local accepted view.
func (c *AcceptanceCoordinator) AcceptedAlerts() []model.Alert {
	return c.alerts.Accepted()
}
