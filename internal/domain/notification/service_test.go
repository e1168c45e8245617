package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type repoStub struct {
	byID map[uuid.UUID]*Notification
}

func newRepoStub() *repoStub {
	return &repoStub{byID: map[uuid.UUID]*Notification{}}
}

func (r *repoStub) Create(_ context.Context, n *Notification) error {
	r.byID[n.ID] = n
	return nil
}

func (r *repoStub) GetByID(_ context.Context, id uuid.UUID) (*Notification, error) {
	return r.byID[id], nil
}

func (r *repoStub) ListByUser(_ context.Context, userID uuid.UUID, _, _ int) ([]*Notification, error) {
	var out []*Notification
	for _, n := range r.byID {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *repoStub) CountUnreadByUser(_ context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, n := range r.byID {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *repoStub) MarkAsRead(_ context.Context, id uuid.UUID) error {
	if n, ok := r.byID[id]; ok {
		n.IsRead = true
	}
	return nil
}

func (r *repoStub) MarkAllAsRead(_ context.Context, userID uuid.UUID) error {
	for _, n := range r.byID {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (r *repoStub) DeleteOlderThan(context.Context, time.Duration) (int64, error) {
	return 0, nil
}

func TestMarkAsReadEnforcesOwnership(t *testing.T) {
	repo := newRepoStub()
	svc := NewService(repo)
	owner, stranger := uuid.New(), uuid.New()

	n, err := svc.CreateInfoNotification(context.Background(), owner, "Withdrawal requested", "Processing.", "/wallet")
	if err != nil {
		t.Fatalf("CreateInfoNotification: %v", err)
	}

	if err := svc.MarkAsRead(context.Background(), stranger, n.ID); !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("foreign user: expected ErrNotificationNotFound, got %v", err)
	}
	if repo.byID[n.ID].IsRead {
		t.Error("foreign user marked the notification read")
	}

	if err := svc.MarkAsRead(context.Background(), owner, n.ID); err != nil {
		t.Fatalf("MarkAsRead: %v", err)
	}
	if !repo.byID[n.ID].IsRead {
		t.Error("notification still unread")
	}
}

func TestUnreadCountTracksReads(t *testing.T) {
	svc := NewService(newRepoStub())
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateSuccessNotification(context.Background(), userID, "Deposit received", "Credited.", ""); err != nil {
			t.Fatalf("CreateSuccessNotification: %v", err)
		}
	}

	count, err := svc.GetUnreadCount(context.Background(), userID)
	if err != nil || count != 3 {
		t.Fatalf("unread = %d err = %v, want 3 and nil", count, err)
	}

	if err := svc.MarkAllAsRead(context.Background(), userID); err != nil {
		t.Fatalf("MarkAllAsRead: %v", err)
	}
	count, err = svc.GetUnreadCount(context.Background(), userID)
	if err != nil || count != 0 {
		t.Fatalf("unread = %d err = %v, want 0 and nil", count, err)
	}
}
