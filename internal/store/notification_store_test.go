package store

import (
	"testing"
	"time"

	"github.com/cse408-project/secureherai-go/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func notif(read bool, expiresAt *time.Time) model.Notification {
	return model.Notification{
		ID:          uuid.New(),
		AlertID:     uuid.New(),
		RecipientID: uuid.New(),
		Type:        model.NotificationEmergencyRequest,
		BatchNumber: 1,
		IsRead:      read,
		CreatedAt:   time.Now(),
		ExpiresAt:   expiresAt,
	}
}

func TestUnreadCountExcludesReadAndExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	s := NewNotificationStore()
	s.now = fixedClock(now)

	s.ReplaceAll([]model.Notification{
		notif(false, &future), // unread, live
		notif(false, nil),     // unread, never expires
		notif(true, &future),  // read
		notif(false, &past),   // unread but expired
	})

	assert.Equal(t, 2, s.UnreadCount())
	assert.Len(t, s.Snapshot(), 4, "expiry never deletes")
	assert.Len(t, s.Actionable(), 3)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	s := NewNotificationStore()
	n := notif(false, nil)
	s.ReplaceAll([]model.Notification{n})

	s.MarkRead(n.ID)
	s.MarkRead(n.ID)
	assert.Equal(t, 0, s.UnreadCount())

	// Unknown id is a silent no-op.
	s.MarkRead(uuid.New())
	assert.Equal(t, 0, s.UnreadCount())
}

func TestMarkAllRead(t *testing.T) {
	s := NewNotificationStore()
	s.ReplaceAll([]model.Notification{notif(false, nil), notif(false, nil), notif(true, nil)})

	s.MarkAllRead()
	assert.Equal(t, 0, s.UnreadCount())
	for _, n := range s.Snapshot() {
		assert.True(t, n.IsRead)
	}
}

func TestReplaceAllIsAuthoritativeForAbsence(t *testing.T) {
	s := NewNotificationStore()
	old := notif(false, nil)
	s.ReplaceAll([]model.Notification{old})

	fresh := notif(false, nil)
	s.ReplaceAll([]model.Notification{fresh})

	snapshot := s.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, fresh.ID, snapshot[0].ID)
}

func TestMergeUnreadKeepsAbsentEntries(t *testing.T) {
	s := NewNotificationStore()
	existing := notif(false, nil)
	s.ReplaceAll([]model.Notification{existing})

	incoming := notif(false, nil)
	s.MergeUnread([]model.Notification{incoming})

	assert.Len(t, s.Snapshot(), 2, "partial fetch says nothing about absence")
	assert.Equal(t, 2, s.UnreadCount())
}

func TestMergeUnreadKeepsLocalReadFlag(t *testing.T) {
	s := NewNotificationStore()
	n := notif(false, nil)
	s.ReplaceAll([]model.Notification{n})
	s.MarkRead(n.ID)

	// Server copy has not caught up and still reports the entry unread.
	stale := n
	stale.IsRead = false
	s.MergeUnread([]model.Notification{stale})

	assert.Equal(t, 0, s.UnreadCount(), "a locally-read entry must stay read")
}

func TestAppendUpdatesDuplicate(t *testing.T) {
	s := NewNotificationStore()
	n := notif(false, nil)
	s.Append(n)

	updated := n
	updated.Message = "second delivery"
	s.Append(updated)

	snapshot := s.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "second delivery", snapshot[0].Message)
}

func TestExpireDueFlagsWithoutDeleting(t *testing.T) {
	base := time.Now()
	expiresAt := base.Add(10 * time.Minute)

	s := NewNotificationStore()
	s.now = fixedClock(base)
	s.ReplaceAll([]model.Notification{notif(false, &expiresAt), notif(false, nil)})
	assert.Equal(t, 2, s.UnreadCount())

	flagged := s.ExpireDue(base.Add(11 * time.Minute))
	assert.Equal(t, 1, flagged)
	assert.Equal(t, 1, s.UnreadCount())
	assert.Len(t, s.Snapshot(), 2)
	assert.Len(t, s.Actionable(), 1)

	// A second sweep finds nothing new.
	assert.Equal(t, 0, s.ExpireDue(base.Add(12*time.Minute)))
}
