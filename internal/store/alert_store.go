package store

import (
	"sync"

	"github.com/cse408-project/secureherai-go/internal/model"
	"github.com/google/uuid"
)

// AlertStore holds the three client-side alert collections: the creator's
// sent history and the responder's pending/accepted views. Statuses here are
// optimistic; a refresh from the backend always wins.
type AlertStore struct {
	mu       sync.Mutex
	sent     []model.Alert
	pending  []model.Alert
	accepted []model.Alert
}

func NewAlertStore() *AlertStore {
	return &AlertStore{}
}

func (s *AlertStore) AppendSent(alert model.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, alert)
}

// UpdateSentStatus applies a local, optimistic status change to one of the
// creator's own alerts. Illegal transitions are refused.
func (s *AlertStore) UpdateSentStatus(alertID uuid.UUID, next model.AlertStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.sent {
		if s.sent[i].ID == alertID {
			if !s.sent[i].Status.CanTransition(next) {
				return false
			}
			s.sent[i].Status = next
			return true
		}
	}
	return false
}

// SentStatus reports the locally-known status of one of the creator's own
// alerts. The second return is false when the alert is not in local history.
func (s *AlertStore) SentStatus(alertID uuid.UUID) (model.AlertStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.sent {
		if s.sent[i].ID == alertID {
			return s.sent[i].Status, true
		}
	}
	return "", false
}

// ReplaceSent installs a fetched copy of the creator's history. Last fetch
// wins: whatever statuses the backend reports replace local assumptions.
func (s *AlertStore) ReplaceSent(alerts []model.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = copyAlerts(alerts)
}

func (s *AlertStore) ReplacePending(alerts []model.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = copyAlerts(alerts)
}

func (s *AlertStore) ReplaceAccepted(alerts []model.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accepted = copyAlerts(alerts)
}

func (s *AlertStore) PendingStatus(alertID uuid.UUID) (model.AlertStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.pending {
		if s.pending[i].ID == alertID {
			return s.pending[i].Status, true
		}
	}
	return "", false
}

// RemovePending drops a stale alert from the pending view, e.g. after another
// responder claimed it or it expired mid-claim.
func (s *AlertStore) RemovePending(alertID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.pending {
		if s.pending[i].ID == alertID {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return true
		}
	}
	return false
}

// Promote moves a pending alert into the accepted view after a successful
// claim. Returns false when the alert was not in the pending view; callers
// then rely on the next accepted-alerts refresh to pick it up.
func (s *AlertStore) Promote(alertID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.pending {
		if s.pending[i].ID == alertID {
			alert := s.pending[i]
			alert.Status = model.AlertStatusAccepted
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			s.accepted = append(s.accepted, alert)
			return true
		}
	}
	return false
}

func (s *AlertStore) Sent() []model.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyAlerts(s.sent)
}

func (s *AlertStore) Pending() []model.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyAlerts(s.pending)
}

func (s *AlertStore) Accepted() []model.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyAlerts(s.accepted)
}

func copyAlerts(alerts []model.Alert) []model.Alert {
	out := make([]model.Alert, len(alerts))
	copy(out, alerts)
	return out
}
