package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cse408-project/secureherai-go/internal/dto"
	"github.com/cse408-project/secureherai-go/internal/model"
	"github.com/cse408-project/secureherai-go/pkg/apperror"
	"github.com/gin-gonic/gin"
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

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 2*time.Second, StaticToken("test-token"), testLogger())
}

func TestTriggerAlertSendsIdempotencyKeyAndBearer(t *testing.T) {
	alertID := uuid.New()
	var gotKey, gotAuth string

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Idempotency-Key")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = writeJSON(w, dto.AlertResponse{Alert: model.Alert{ID: alertID, Status: model.AlertStatusPending}})
	})

	c := newTestClient(t, handler)
	alert, err := c.TriggerAlert(context.Background(), dto.TriggerAlertRequest{
		TriggerMethod: "manual",
	}, "key-123")

	require.NoError(t, err)
	assert.Equal(t, alertID, alert.ID)
	assert.Equal(t, "key-123", gotKey)
	assert.Equal(t, "Bearer test-token", gotAuth)
}

func TestUnauthorizedNormalization(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = writeJSON(w, gin.H{"error": "token expired"})
	})

	c := newTestClient(t, handler)
	_, err := c.PendingAlerts(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	assert.Contains(t, err.Error(), "token expired")
	assert.False(t, apperror.Retryable(err))
}

func TestConflictMapsPerEndpoint(t *testing.T) {
	conflict := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = writeJSON(w, gin.H{"error": "conflict"})
	})
	c := newTestClient(t, conflict)
	ctx := context.Background()

	_, err := c.AcceptAlert(ctx, dto.AcceptAlertRequest{AlertID: uuid.New(), AlertUserID: uuid.New()})
	assert.ErrorIs(t, err, apperror.ErrAlreadyClaimed, "accept treats 409 as a lost claim race")

	err = c.CancelAlert(ctx, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrInvalidState, "cancel treats 409 as a state conflict")

	err = c.ResolveAlert(ctx, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrInvalidState)
}

func TestGoneMapsToExpired(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusGone)
		_ = writeJSON(w, gin.H{"error": "alert is EXPIRED"})
	})

	c := newTestClient(t, handler)
	_, err := c.AcceptAlert(context.Background(), dto.AcceptAlertRequest{AlertID: uuid.New()})

	assert.ErrorIs(t, err, apperror.ErrExpired)
	assert.False(t, apperror.Retryable(err))
}

func TestServerErrorMapsToServerRejected(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	c := newTestClient(t, handler)
	_, err := c.UnreadNotifications(context.Background())

	assert.ErrorIs(t, err, apperror.ErrServerRejected)
	assert.False(t, apperror.Retryable(err))
}

func TestTimeoutMapsToNetworkTimeout(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(srv.URL, 20*time.Millisecond, StaticToken("t"), testLogger())
	_, err := c.UnreadCount(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrNetworkTimeout)
	assert.True(t, apperror.Retryable(err))
}

func TestUnreachableBackendMapsToNetworkTimeout(t *testing.T) {
	c := New("http://127.0.0.1:1", 200*time.Millisecond, StaticToken("t"), testLogger())
	err := c.MarkAllRead(context.Background())

	assert.ErrorIs(t, err, apperror.ErrNetworkTimeout)
}

func TestListNotificationsParsesMeta(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("size"))
		w.Header().Set("Content-Type", "application/json")
		_ = writeJSON(w, dto.NotificationListResponse{
			Data: []model.Notification{{ID: uuid.New(), Type: model.NotificationEmergencyRequest}},
			Meta: dto.PaginationMeta{CurrentPage: 2, Limit: 10, TotalItems: 21, TotalPages: 3},
		})
	})

	c := newTestClient(t, handler)
	items, meta, err := c.ListNotifications(context.Background(), 2, 10)

	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int64(21), meta.TotalItems)
	assert.Equal(t, 3, meta.TotalPages)
}

func writeJSON(w http.ResponseWriter, v any) error {
	return json.NewEncoder(w).Encode(v)
}
