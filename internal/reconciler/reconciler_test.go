package reconciler

import (
	"context"
	"testing"
	"time"

	"github.com/cse408-project/secureherai-go/internal/model"
	"github.com/cse408-project/secureherai-go/internal/store"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestSweepFlagsDueNotifications(t *testing.T) {
	base := time.Now()
	soon := base.Add(10 * time.Minute)

	s := store.NewNotificationStore()
	s.ReplaceAll([]model.Notification{
		{ID: uuid.New(), ExpiresAt: &soon},
		{ID: uuid.New()},
	})
	require.Equal(t, 2, s.UnreadCount())

	r := NewTTLReconciler(s, time.Minute, testLogger())
	r.now = func() time.Time { return base.Add(11 * time.Minute) }

	r.Sweep()

	assert.Equal(t, 1, s.UnreadCount())
	assert.Len(t, s.Snapshot(), 2, "expired entries stay in history")
	assert.Len(t, s.Actionable(), 1)
}

func TestSweepIsStableWhenNothingDue(t *testing.T) {
	s := store.NewNotificationStore()
	s.ReplaceAll([]model.Notification{{ID: uuid.New()}})

	r := NewTTLReconciler(s, time.Minute, testLogger())
	r.Sweep()
	r.Sweep()

	assert.Equal(t, 1, s.UnreadCount())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	s := store.NewNotificationStore()
	r := NewTTLReconciler(s, time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop after cancellation")
	}
}
