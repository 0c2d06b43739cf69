package store

import (
	"sync"
	"time"

	"github.com/cse408-project/secureherai-go/internal/model"
	"github.com/google/uuid"
)

// NotificationStore is the client-local source of truth for notification
// state between network refreshes. The unread counter always equals the
// number of entries that are neither read nor expired; every mutation runs an
// expiry pass and recomputes the counter before releasing the lock, so no
// caller can observe the two out of sync.
type NotificationStore struct {
	mu     sync.Mutex
	items  []model.Notification
	index  map[uuid.UUID]int
	unread int
	now    func() time.Time
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{
		index: make(map[uuid.UUID]int),
		now:   time.Now,
	}
}

// ReplaceAll installs a full refresh. Entries absent from the argument are
// dropped: a full fetch is authoritative for absence.
func (s *NotificationStore) ReplaceAll(notifications []model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make([]model.Notification, len(notifications))
	copy(s.items, notifications)
	s.reindex()
	s.settle()
}

// MergeUnread folds in a partial, unread-only refresh. Entries already in the
// store but absent from the argument are kept, because a partial fetch says
// nothing about absence. A locally-read entry stays read even if the server
// copy has not caught up yet.
func (s *NotificationStore) MergeUnread(notifications []model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, incoming := range notifications {
		if i, ok := s.index[incoming.ID]; ok {
			read := s.items[i].IsRead || incoming.IsRead
			s.items[i] = incoming
			s.items[i].IsRead = read
			continue
		}
		s.items = append(s.items, incoming)
		s.index[incoming.ID] = len(s.items) - 1
	}
	s.settle()
}

// MarkRead flags one notification read. Marking an already-read or unknown id
// is a no-op, not an error.
func (s *NotificationStore) MarkRead(notificationID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[notificationID]; ok {
		s.items[i].IsRead = true
	}
	s.settle()
}

func (s *NotificationStore) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		s.items[i].IsRead = true
	}
	s.settle()
}

// Append inserts one out-of-band notification, e.g. a push-delivered one that
// no fetch has reported yet. A duplicate id updates the existing entry.
func (s *NotificationStore) Append(notification model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[notification.ID]; ok {
		s.items[i] = notification
	} else {
		s.items = append(s.items, notification)
		s.index[notification.ID] = len(s.items) - 1
	}
	s.settle()
}

// ExpireDue flags every notification whose TTL passed before now and reports
// how many were newly flagged. Nothing is ever deleted; expired entries stay
// in the list for audit views.
func (s *NotificationStore) ExpireDue(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	flagged := s.expireDue(now)
	s.recount()
	return flagged
}

// UnreadCount returns the number of entries that are unread and not expired.
func (s *NotificationStore) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// Snapshot returns a copy of every stored notification, expired included.
func (s *NotificationStore) Snapshot() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Notification, len(s.items))
	copy(out, s.items)
	return out
}

// Actionable returns the non-expired notifications, i.e. what the inbox and
// responder surfaces may act on.
func (s *NotificationStore) Actionable() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Notification, 0, len(s.items))
	for _, n := range s.items {
		if !n.Expired {
			out = append(out, n)
		}
	}
	return out
}

// settle runs the expiry pass and recomputes the unread counter. Callers must
// hold the lock.
func (s *NotificationStore) settle() {
	s.expireDue(s.now())
	s.recount()
}

func (s *NotificationStore) expireDue(now time.Time) int {
	flagged := 0
	for i := range s.items {
		if s.items[i].DueToExpire(now) {
			s.items[i].Expired = true
			flagged++
		}
	}
	return flagged
}

func (s *NotificationStore) recount() {
	count := 0
	for i := range s.items {
		if !s.items[i].IsRead && !s.items[i].Expired {
			count++
		}
	}
	s.unread = count
}

func (s *NotificationStore) reindex() {
	s.index = make(map[uuid.UUID]int, len(s.items))
	for i := range s.items {
		s.index[s.items[i].ID] = i
	}
}
