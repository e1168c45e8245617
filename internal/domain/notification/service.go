package notification

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Service handles notification logic
type Service struct {
	repo Repository
}

// NewService creates notification service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateSuccessNotification records a success notification for a user
func (s *Service) CreateSuccessNotification(ctx context.Context, userID uuid.UUID, title, message, actionURL string) (*Notification, error) {
	return s.create(ctx, userID, LevelSuccess, title, message, actionURL)
}

// CreateInfoNotification records an informational notification for a user
func (s *Service) CreateInfoNotification(ctx context.Context, userID uuid.UUID, title, message, actionURL string) (*Notification, error) {
	return s.create(ctx, userID, LevelInfo, title, message, actionURL)
}

// CreateErrorNotification records an error notification for a user
func (s *Service) CreateErrorNotification(ctx context.Context, userID uuid.UUID, title, message, actionURL string) (*Notification, error) {
	return s.create(ctx, userID, LevelError, title, message, actionURL)
}

func (s *Service) create(ctx context.Context, userID uuid.UUID, level Level, title, message, actionURL string) (*Notification, error) {
	n := &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Level:     level,
		Title:     title,
		Message:   message,
		IsRead:    false,
		CreatedAt: time.Now(),
	}
	if actionURL != "" {
		n.ActionURL = sql.NullString{String: actionURL, Valid: true}
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// List returns notifications for user
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// GetUnreadCount returns unread count
func (s *Service) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnreadByUser(ctx, userID)
}

// MarkAsRead marks a single notification as read; only the recipient may
func (s *Service) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n == nil || n.UserID != userID {
		return ErrNotificationNotFound
	}
	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all notifications as read
func (s *Service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}
