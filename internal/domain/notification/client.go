package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Client is the fire-and-forget facade used by other domains. Delivery
// failures are logged and swallowed so a notification outage can never
// surface as the failure of the operation that triggered it.
type Client struct {
	svc *Service
}

// NewClient creates the notification client facade
func NewClient(svc *Service) *Client {
	return &Client{svc: svc}
}

// Success dispatches a success notification, best-effort
func (c *Client) Success(ctx context.Context, userID uuid.UUID, title, message, actionURL string) {
	if _, err := c.svc.CreateSuccessNotification(ctx, userID, title, message, actionURL); err != nil {
		logDispatchFailure(err, userID, title)
	}
}

// Info dispatches an informational notification, best-effort
func (c *Client) Info(ctx context.Context, userID uuid.UUID, title, message, actionURL string) {
	if _, err := c.svc.CreateInfoNotification(ctx, userID, title, message, actionURL); err != nil {
		logDispatchFailure(err, userID, title)
	}
}

// Error dispatches an error notification, best-effort
func (c *Client) Error(ctx context.Context, userID uuid.UUID, title, message, actionURL string) {
	if _, err := c.svc.CreateErrorNotification(ctx, userID, title, message, actionURL); err != nil {
		logDispatchFailure(err, userID, title)
	}
}

func logDispatchFailure(err error, userID uuid.UUID, title string) {
	log.Error().Err(err).
		Str("user_id", userID.String()).
		Str("title", title).
		Msg("notification dispatch failed")
}
