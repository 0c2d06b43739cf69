package mockserver

import (
	"fmt"
	"time"

	"github.com/cse408-project/secureherai-go/internal/model"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Sweeper runs the periodic background passes over pending alerts: widening
// the fan-out to registered responders when the initial contacts have not
// answered, and expiring alerts that outlived their TTL.
type Sweeper struct {
	alerts        AlertRepository
	notifications NotificationRepository
	users         UserRepository
	interval      time.Duration
	widenAfter    time.Duration
	alertTTL      time.Duration
	logger        *logrus.Logger
	cron          *cron.Cron
}

func NewSweeper(
	alerts AlertRepository,
	notifications NotificationRepository,
	users UserRepository,
	interval, widenAfter, alertTTL time.Duration,
	logger *logrus.Logger,
) *Sweeper {
	return &Sweeper{
		alerts:        alerts,
		notifications: notifications,
		users:         users,
		interval:      interval,
		widenAfter:    widenAfter,
		alertTTL:      alertTTL,
		logger:        logger,
	}
}

func (s *Sweeper) Start() {
	s.cron = cron.New()
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, func() { s.SweepOnce(time.Now()) }); err != nil {
		s.logger.WithError(err).Error("failed to schedule alert sweep")
		return
	}
	s.cron.Start()
	s.logger.WithField("interval", s.interval.String()).Info("alert sweeper started")
}

func (s *Sweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// SweepOnce performs a single widen-then-expire pass at the given instant.
func (s *Sweeper) SweepOnce(now time.Time) {
	s.widen(now)
	s.expire(now)
}

// widen fans out a second notification wave to all registered responders for
// pending alerts whose first wave went unanswered.
func (s *Sweeper) widen(now time.Time) {
	stale, err := s.alerts.PendingTriggeredBefore(now.Add(-s.widenAfter), 1)
	if err != nil {
		s.logger.WithError(err).Error("widen pass query failed")
		return
	}

	for _, alert := range stale {
		responders, err := s.users.Responders()
		if err != nil {
			s.logger.WithError(err).Error("widen pass responder lookup failed")
			return
		}

		expiresAt := alert.TriggeredAt.Add(s.alertTTL)
		for _, responder := range responders {
			if responder.ID == alert.UserID {
				continue
			}
			notification := &Notification{
				ID:          uuid.New(),
				AlertID:     alert.ID,
				RecipientID: responder.ID,
				Type:        string(model.NotificationEmergencyRequest),
				BatchNumber: 2,
				Message:     "Someone nearby needs help right now",
				CreatedAt:   now,
				ExpiresAt:   &expiresAt,
			}
			if err := s.notifications.Create(notification); err != nil {
				s.logger.WithError(err).WithField("alert_id", alert.ID).Warn("widen fan-out insert failed")
			}
		}

		if err := s.alerts.MarkBatch(alert.ID, 2); err != nil {
			s.logger.WithError(err).WithField("alert_id", alert.ID).Error("failed to record widened batch")
			continue
		}
		s.logger.WithFields(logrus.Fields{
			"alert_id":   alert.ID,
			"responders": len(responders),
		}).Info("widened alert fan-out to responders")
	}
}

// expire transitions overdue pending alerts to EXPIRED and tells the creator.
func (s *Sweeper) expire(now time.Time) {
	overdue, err := s.alerts.PendingBefore(now.Add(-s.alertTTL))
	if err != nil {
		s.logger.WithError(err).Error("expiry pass query failed")
		return
	}

	for _, alert := range overdue {
		ok, err := s.alerts.TransitionStatus(alert.ID, []string{string(model.AlertStatusPending)}, string(model.AlertStatusExpired))
		if err != nil {
			s.logger.WithError(err).WithField("alert_id", alert.ID).Error("expiry transition failed")
			continue
		}
		if !ok {
			// Lost the race to an acceptance or cancellation; nothing to do.
			continue
		}

		notification := &Notification{
			ID:          uuid.New(),
			AlertID:     alert.ID,
			RecipientID: alert.UserID,
			Type:        string(model.NotificationEmergencyExpired),
			Message:     "Your emergency alert expired with no responder",
			CreatedAt:   now,
		}
		if err := s.notifications.Create(notification); err != nil {
			s.logger.WithError(err).WithField("alert_id", alert.ID).Warn("expiry notification insert failed")
		}

		s.logger.WithField("alert_id", alert.ID).Info("expired stale alert")
	}
}
