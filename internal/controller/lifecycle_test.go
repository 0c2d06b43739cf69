package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cse408-project/secureherai-go/internal/dto"
	"github.com/cse408-project/secureherai-go/internal/model"
	"github.com/cse408-project/secureherai-go/internal/store"
	"github.com/cse408-project/secureherai-go/pkg/apperror"
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

// fakeAlertChannel records every trigger request and replays scripted errors
// before succeeding.
type fakeAlertChannel struct {
	triggerCalls []dto.TriggerAlertRequest
	triggerKeys  []string
	triggerErrs  []error
	cancelCalls  int
	cancelErr    error
	resolveCalls int
	resolveErr   error
}

func (f *fakeAlertChannel) TriggerAlert(ctx context.Context, req dto.TriggerAlertRequest, key string) (*model.Alert, error) {
	f.triggerCalls = append(f.triggerCalls, req)
	f.triggerKeys = append(f.triggerKeys, key)
	if len(f.triggerErrs) > 0 {
		err := f.triggerErrs[0]
		f.triggerErrs = f.triggerErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &model.Alert{
		ID:               uuid.New(),
		Status:           model.AlertStatusPending,
		TriggerMethod:    model.TriggerMethod(req.TriggerMethod),
		LocationDegraded: req.LocationDegraded,
		TriggeredAt:      time.Now(),
	}, nil
}

func (f *fakeAlertChannel) CancelAlert(ctx context.Context, alertID uuid.UUID) error {
	f.cancelCalls++
	return f.cancelErr
}

func (f *fakeAlertChannel) ResolveAlert(ctx context.Context, alertID uuid.UUID) error {
	f.resolveCalls++
	return f.resolveErr
}

type fakeLocation struct {
	loc *model.Location
	err error
}

func (f fakeLocation) CurrentLocation(ctx context.Context, timeout time.Duration) (*model.Location, error) {
	return f.loc, f.err
}

type fakeResolver struct {
	contacts []model.ContactRef
	err      error
}

func (f fakeResolver) ResolveRecipients(ctx context.Context) ([]model.ContactRef, error) {
	return f.contacts, f.err
}

func newLifecycle(channel *fakeAlertChannel, loc fakeLocation, resolver fakeResolver, alerts *store.AlertStore) *LifecycleController {
	return NewLifecycleController(channel, loc, resolver, alerts, time.Second, testLogger())
}

func TestTriggerHappyPath(t *testing.T) {
	channel := &fakeAlertChannel{}
	alerts := store.NewAlertStore()
	contacts := []model.ContactRef{{ID: uuid.New(), Name: "Nadia", Email: "nadia@example.com"}}
	lc := newLifecycle(channel, fakeLocation{loc: &model.Location{Latitude: 23.7, Longitude: 90.4}}, fakeResolver{contacts: contacts}, alerts)

	alert, err := lc.Trigger(context.Background(), model.TriggerMethodManual, "help", "")

	require.NoError(t, err)
	assert.Equal(t, model.AlertStatusPending, alert.Status)

	require.Len(t, channel.triggerCalls, 1)
	req := channel.triggerCalls[0]
	assert.False(t, req.LocationDegraded)
	require.NotNil(t, req.Location)
	assert.Equal(t, 23.7, req.Location.Latitude)
	require.Len(t, req.Contacts, 1)
	assert.Equal(t, "Nadia", req.Contacts[0].Name)
	assert.NotEmpty(t, channel.triggerKeys[0])

	assert.Len(t, alerts.Sent(), 1)
}

func TestTriggerDispatchesWithoutLocation(t *testing.T) {
	channel := &fakeAlertChannel{}
	lc := newLifecycle(channel, fakeLocation{err: errors.New("gps off")}, fakeResolver{}, store.NewAlertStore())

	_, err := lc.Trigger(context.Background(), model.TriggerMethodVoice, "", "")

	require.NoError(t, err, "a missing fix must never block dispatch")
	require.Len(t, channel.triggerCalls, 1)
	assert.True(t, channel.triggerCalls[0].LocationDegraded)
	assert.Nil(t, channel.triggerCalls[0].Location)
}

func TestTriggerDispatchesWithEmptyRecipients(t *testing.T) {
	channel := &fakeAlertChannel{}
	lc := newLifecycle(channel, fakeLocation{loc: &model.Location{}}, fakeResolver{err: errors.New("contacts store down")}, store.NewAlertStore())

	_, err := lc.Trigger(context.Background(), model.TriggerMethodText, "", "")

	require.NoError(t, err)
	require.Len(t, channel.triggerCalls, 1)
	assert.Empty(t, channel.triggerCalls[0].Contacts)
}

func TestTriggerRejectsUnknownMethod(t *testing.T) {
	channel := &fakeAlertChannel{}
	lc := newLifecycle(channel, fakeLocation{}, fakeResolver{}, store.NewAlertStore())

	_, err := lc.Trigger(context.Background(), "shake", "", "")

	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	assert.Empty(t, channel.triggerCalls, "invalid input must not reach the network")
}

func TestTriggerRetriesOnceWithSameKey(t *testing.T) {
	channel := &fakeAlertChannel{
		triggerErrs: []error{apperror.New(0, "request timed out", apperror.ErrNetworkTimeout)},
	}
	lc := newLifecycle(channel, fakeLocation{loc: &model.Location{}}, fakeResolver{}, store.NewAlertStore())

	_, err := lc.Trigger(context.Background(), model.TriggerMethodManual, "", "")

	require.NoError(t, err)
	require.Len(t, channel.triggerKeys, 2)
	assert.Equal(t, channel.triggerKeys[0], channel.triggerKeys[1], "the retry must reuse the original idempotency key")
}

func TestTriggerDoesNotRetryRejection(t *testing.T) {
	channel := &fakeAlertChannel{
		triggerErrs: []error{apperror.New(500, "boom", apperror.ErrServerRejected)},
	}
	lc := newLifecycle(channel, fakeLocation{loc: &model.Location{}}, fakeResolver{}, store.NewAlertStore())

	_, err := lc.Trigger(context.Background(), model.TriggerMethodManual, "", "")

	assert.ErrorIs(t, err, apperror.ErrServerRejected)
	assert.Len(t, channel.triggerCalls, 1, "only a timeout earns a retry")
}

func TestTriggerGivesUpAfterSecondTimeout(t *testing.T) {
	timeout := apperror.New(0, "request timed out", apperror.ErrNetworkTimeout)
	channel := &fakeAlertChannel{triggerErrs: []error{timeout, timeout}}
	alerts := store.NewAlertStore()
	lc := newLifecycle(channel, fakeLocation{loc: &model.Location{}}, fakeResolver{}, alerts)

	_, err := lc.Trigger(context.Background(), model.TriggerMethodManual, "", "")

	assert.ErrorIs(t, err, apperror.ErrNetworkTimeout)
	assert.Len(t, channel.triggerCalls, 2)
	assert.Empty(t, alerts.Sent())
}

func TestCancelRefusedLocallyForNonPending(t *testing.T) {
	channel := &fakeAlertChannel{}
	alerts := store.NewAlertStore()
	alert := model.Alert{ID: uuid.New(), Status: model.AlertStatusAccepted}
	alerts.AppendSent(alert)

	lc := newLifecycle(channel, fakeLocation{}, fakeResolver{}, alerts)
	err := lc.Cancel(context.Background(), alert.ID)

	assert.ErrorIs(t, err, apperror.ErrInvalidState)
	assert.Zero(t, channel.cancelCalls, "a futile cancel must not touch the network")
}

func TestCancelAppliesOptimisticStatus(t *testing.T) {
	channel := &fakeAlertChannel{}
	alerts := store.NewAlertStore()
	alert := model.Alert{ID: uuid.New(), Status: model.AlertStatusPending}
	alerts.AppendSent(alert)

	lc := newLifecycle(channel, fakeLocation{}, fakeResolver{}, alerts)
	require.NoError(t, lc.Cancel(context.Background(), alert.ID))

	status, ok := alerts.SentStatus(alert.ID)
	require.True(t, ok)
	assert.Equal(t, model.AlertStatusCancelled, status)
	assert.Equal(t, 1, channel.cancelCalls)
}

func TestCancelSurfacesBackendConflict(t *testing.T) {
	channel := &fakeAlertChannel{
		cancelErr: apperror.New(409, "alert is ACCEPTED", apperror.ErrInvalidState),
	}
	alerts := store.NewAlertStore()
	lc := newLifecycle(channel, fakeLocation{}, fakeResolver{}, alerts)

	// Unknown locally, so the backend decides.
	err := lc.Cancel(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrInvalidState)
}

func TestResolveFromAccepted(t *testing.T) {
	channel := &fakeAlertChannel{}
	alerts := store.NewAlertStore()
	alert := model.Alert{ID: uuid.New(), Status: model.AlertStatusAccepted}
	alerts.AppendSent(alert)

	lc := newLifecycle(channel, fakeLocation{}, fakeResolver{}, alerts)
	require.NoError(t, lc.Resolve(context.Background(), alert.ID))

	status, _ := alerts.SentStatus(alert.ID)
	assert.Equal(t, model.AlertStatusResolved, status)
}

func TestResolveRefusedForTerminalState(t *testing.T) {
	channel := &fakeAlertChannel{}
	alerts := store.NewAlertStore()
	alert := model.Alert{ID: uuid.New(), Status: model.AlertStatusCancelled}
	alerts.AppendSent(alert)

	lc := newLifecycle(channel, fakeLocation{}, fakeResolver{}, alerts)
	err := lc.Resolve(context.Background(), alert.ID)

	assert.ErrorIs(t, err, apperror.ErrInvalidState)
	assert.Zero(t, channel.resolveCalls)
}

func TestReconcileOverridesLocalHistory(t *testing.T) {
	channel := &fakeAlertChannel{}
	alerts := store.NewAlertStore()
	alert := model.Alert{ID: uuid.New(), Status: model.AlertStatusPending}
	alerts.AppendSent(alert)

	lc := newLifecycle(channel, fakeLocation{}, fakeResolver{}, alerts)
	fetched := alert
	fetched.Status = model.AlertStatusExpired
	lc.Reconcile([]model.Alert{fetched})

	history := lc.SentHistory()
	require.Len(t, history, 1)
	assert.Equal(t, model.AlertStatusExpired, history[0].Status)
}
