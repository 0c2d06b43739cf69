package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/cse408-project/secureherai-go/internal/dto"
	"github.com/cse408-project/secureherai-go/internal/model"
	"github.com/cse408-project/secureherai-go/pkg/apperror"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TokenSource supplies the bearer credential for each request. The session
// layer owns the credential; this package never stores or refreshes it.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a TokenSource returning a fixed bearer string.
type StaticToken string

func (t StaticToken) Token() (string, error) { return string(t), nil }

// Client is the stateless transport over the backend's alert and notification
// endpoints. One method per endpoint, no retries; each HTTP status class is
// normalized to a typed apperror so callers can branch without inspecting
// status codes.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  *logrus.Logger
}

func New(baseURL string, timeout time.Duration, tokens TokenSource, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		logger:  logger,
	}
}

// TriggerAlert submits a new SOS alert. The idempotency key is generated by
// the caller and must be reused verbatim when retrying after a timeout so the
// backend can dedupe the alert.
func (c *Client) TriggerAlert(ctx context.Context, req dto.TriggerAlertRequest, idempotencyKey string) (*model.Alert, error) {
	var resp dto.AlertResponse
	headers := map[string]string{"Idempotency-Key": idempotencyKey}
	if err := c.do(ctx, http.MethodPost, "/emergency/alert", req, &resp, headers, apperror.ErrServerRejected); err != nil {
		return nil, err
	}
	return &resp.Alert, nil
}

func (c *Client) CancelAlert(ctx context.Context, alertID uuid.UUID) error {
	path := fmt.Sprintf("/emergency/alert/%s/cancel", alertID)
	return c.do(ctx, http.MethodPut, path, nil, nil, nil, apperror.ErrInvalidState)
}

func (c *Client) ResolveAlert(ctx context.Context, alertID uuid.UUID) error {
	path := fmt.Sprintf("/emergency/alert/%s/resolve", alertID)
	return c.do(ctx, http.MethodPut, path, nil, nil, nil, apperror.ErrInvalidState)
}

// AcceptAlert submits a responder's claim. A 409 means another responder's
// claim was recorded first; a 410 means the alert expired before the claim
// landed. Both are surfaced as distinct non-retryable errors.
func (c *Client) AcceptAlert(ctx context.Context, req dto.AcceptAlertRequest) (*model.AlertResponder, error) {
	var resp dto.AcceptAlertResponse
	if err := c.do(ctx, http.MethodPost, "/responder/accept", req, &resp, nil, apperror.ErrAlreadyClaimed); err != nil {
		return nil, err
	}
	return &resp.Responder, nil
}

func (c *Client) PendingAlerts(ctx context.Context) ([]model.Alert, error) {
	var resp dto.AlertListResponse
	if err := c.do(ctx, http.MethodGet, "/responder/pending-alerts", nil, &resp, nil, apperror.ErrServerRejected); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) AcceptedAlerts(ctx context.Context) ([]model.Alert, error) {
	var resp dto.AlertListResponse
	if err := c.do(ctx, http.MethodGet, "/responder/accepted-alerts", nil, &resp, nil, apperror.ErrServerRejected); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) ListNotifications(ctx context.Context, page, size int) ([]model.Notification, dto.PaginationMeta, error) {
	var resp dto.NotificationListResponse
	path := fmt.Sprintf("/notifications?page=%d&size=%d", page, size)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp, nil, apperror.ErrServerRejected); err != nil {
		return nil, dto.PaginationMeta{}, err
	}
	return resp.Data, resp.Meta, nil
}

func (c *Client) UnreadNotifications(ctx context.Context) ([]model.Notification, error) {
	var resp dto.UnreadNotificationsResponse
	if err := c.do(ctx, http.MethodGet, "/notifications/unread", nil, &resp, nil, apperror.ErrServerRejected); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) UnreadCount(ctx context.Context) (int64, error) {
	var resp dto.UnreadCountResponse
	if err := c.do(ctx, http.MethodGet, "/notifications/count", nil, &resp, nil, apperror.ErrServerRejected); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (c *Client) MarkRead(ctx context.Context, notificationID uuid.UUID) error {
	path := fmt.Sprintf("/notifications/%s/read", notificationID)
	return c.do(ctx, http.MethodPut, path, nil, nil, nil, apperror.ErrServerRejected)
}

func (c *Client) MarkAllRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPut, "/notifications/read-all", nil, nil, nil, apperror.ErrServerRejected)
}

func (c *Client) AlertNotifications(ctx context.Context, alertID uuid.UUID) (*dto.AlertNotificationsResponse, error) {
	var resp dto.AlertNotificationsResponse
	path := fmt.Sprintf("/notifications/alert/%s", alertID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp, nil, apperror.ErrServerRejected); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do performs one request and normalizes the outcome. conflictErr is the
// sentinel a 409 maps to, since a conflict means "already claimed" on the
// accept endpoint but "invalid state" on cancel/resolve.
func (c *Client) do(ctx context.Context, method, path string, body, out any, headers map[string]string, conflictErr error) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperror.New(0, "failed to encode request", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperror.New(0, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	token, err := c.tokens.Token()
	if err != nil {
		return apperror.New(0, "no session credential", apperror.ErrUnauthorized)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("path", path).Warn("backend request failed")
		return normalizeTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return normalizeStatus(resp, conflictErr)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apperror.New(resp.StatusCode, "failed to decode response", err)
		}
	}
	return nil
}

// Transport-level failures carry no server verdict, so they are all reported
// as the retryable timeout class; the controllers decide whether a retry is
// actually safe for the operation at hand.
func normalizeTransportError(err error) error {
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return apperror.New(0, "request timed out", apperror.ErrNetworkTimeout)
	}
	return apperror.New(0, "backend unreachable: "+err.Error(), apperror.ErrNetworkTimeout)
}

func normalizeStatus(resp *http.Response, conflictErr error) error {
	msg := serverMessage(resp)
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return apperror.New(resp.StatusCode, msg, apperror.ErrUnauthorized)
	case resp.StatusCode == http.StatusConflict:
		return apperror.New(resp.StatusCode, msg, conflictErr)
	case resp.StatusCode == http.StatusGone:
		return apperror.New(resp.StatusCode, msg, apperror.ErrExpired)
	case resp.StatusCode == http.StatusNotFound:
		return apperror.New(resp.StatusCode, msg, apperror.ErrNotFound)
	default:
		return apperror.New(resp.StatusCode, msg, apperror.ErrServerRejected)
	}
}

func serverMessage(resp *http.Response) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return body.Error
	}
	return http.StatusText(resp.StatusCode)
}
