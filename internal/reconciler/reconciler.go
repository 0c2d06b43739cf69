package reconciler

import (
	"context"
	"time"

	"github.com/cse408-project/secureherai-go/internal/store"
	"github.com/sirupsen/logrus"
)

// TTLReconciler keeps actionable notification views honest as time passes,
// without any network calls. It periodically flags due notifications as
// expired in the store; nothing is ever deleted, so audit views keep their
// history. The interval bounds how long an expired alert can linger in a
// responder's pending surface.
type TTLReconciler struct {
	store    *store.NotificationStore
	interval time.Duration
	logger   *logrus.Logger
	now      func() time.Time
}

func NewTTLReconciler(store *store.NotificationStore, interval time.Duration, logger *logrus.Logger) *TTLReconciler {
	return &TTLReconciler{
		store:    store,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Run executes the sweep loop until ctx is cancelled.
func (r *TTLReconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Sweep runs one reconciliation pass.
func (r *TTLReconciler) Sweep() {
	if flagged := r.store.ExpireDue(r.now()); flagged > 0 {
		r.logger.WithField("count", flagged).Info("flagged expired notifications")
	}
}
