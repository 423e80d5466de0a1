package service

import (
	"context"
	"errors"
	"testing"

	"github.com/pazarhub/notify-service/internal/domain"
	"github.com/pazarhub/notify-service/internal/repository"
)

func TestInboxListScopedToUser(t *testing.T) {
	t.Parallel()

	notifications := &fakeNotificationRepo{
		listFn: func(ctx context.Context, params repository.ListParams) ([]domain.Notification, int64, error) {
			if params.UserID != "user-1" {
				t.Fatalf("list user = %s, want user-1", params.UserID)
			}
			return []domain.Notification{{ID: "n-1", UserID: "user-1"}}, 1, nil
		},
	}

	inbox, err := NewInbox(notifications, nil)
	if err != nil {
		t.Fatalf("NewInbox() error = %v", err)
	}

	rows, total, err := inbox.List(context.Background(), repository.ListParams{UserID: " user-1 "})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("List() = %d rows total %d, want 1/1", len(rows), total)
	}

	if _, _, err := inbox.List(context.Background(), repository.ListParams{}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("List() error = %v, want ErrValidation for missing user", err)
	}
}

func TestInboxGetAndMarkReadFlipsUnread(t *testing.T) {
	t.Parallel()

	marked := false
	notifications := &fakeNotificationRepo{
		getByIDForUserFn: func(ctx context.Context, userID, id string) (*domain.Notification, error) {
			return &domain.Notification{ID: id, UserID: userID, IsRead: false}, nil
		},
		markReadFn: func(ctx context.Context, userID, id string) error {
			marked = true
			return nil
		},
	}

	inbox, err := NewInbox(notifications, nil)
	if err != nil {
		t.Fatalf("NewInbox() error = %v", err)
	}

	notification, err := inbox.GetAndMarkRead(context.Background(), "user-1", "n-1")
	if err != nil {
		t.Fatalf("GetAndMarkRead() error = %v", err)
	}
	if !notification.IsRead {
		t.Fatal("returned notification should reflect the read state")
	}
	if !marked {
		t.Fatal("expected MarkRead to be called for an unread row")
	}
}

func TestInboxGetAndMarkReadAlreadyReadSkipsUpdate(t *testing.T) {
	t.Parallel()

	notifications := &fakeNotificationRepo{
		getByIDForUserFn: func(ctx context.Context, userID, id string) (*domain.Notification, error) {
			return &domain.Notification{ID: id, UserID: userID, IsRead: true}, nil
		},
		markReadFn: func(ctx context.Context, userID, id string) error {
			t.Fatal("MarkRead should not run for an already-read row")
			return nil
		},
	}

	inbox, err := NewInbox(notifications, nil)
	if err != nil {
		t.Fatalf("NewInbox() error = %v", err)
	}

	if _, err := inbox.GetAndMarkRead(context.Background(), "user-1", "n-1"); err != nil {
		t.Fatalf("GetAndMarkRead() error = %v", err)
	}
}

func TestInboxGetAndMarkReadForeignRowReadsAsNotFound(t *testing.T) {
	t.Parallel()

	notifications := &fakeNotificationRepo{
		getByIDForUserFn: func(ctx context.Context, userID, id string) (*domain.Notification, error) {
			return nil, domain.ErrNotFound
		},
	}

	inbox, err := NewInbox(notifications, nil)
	if err != nil {
		t.Fatalf("NewInbox() error = %v", err)
	}

	if _, err := inbox.GetAndMarkRead(context.Background(), "user-2", "n-owned-by-user-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetAndMarkRead() error = %v, want ErrNotFound", err)
	}
}

func TestInboxMarkAllReadReturnsCount(t *testing.T) {
	t.Parallel()

	notifications := &fakeNotificationRepo{
		markAllReadFn: func(ctx context.Context, userID string) (int64, error) {
			return 7, nil
		},
	}

	inbox, err := NewInbox(notifications, nil)
	if err != nil {
		t.Fatalf("NewInbox() error = %v", err)
	}

	updated, err := inbox.MarkAllRead(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("MarkAllRead() error = %v", err)
	}
	if updated != 7 {
		t.Fatalf("MarkAllRead() = %d, want 7", updated)
	}
}

func TestInboxClearAllReturnsCount(t *testing.T) {
	t.Parallel()

	notifications := &fakeNotificationRepo{
		clearAllFn: func(ctx context.Context, userID string) (int64, error) {
			return 3, nil
		},
	}

	inbox, err := NewInbox(notifications, nil)
	if err != nil {
		t.Fatalf("NewInbox() error = %v", err)
	}

	deleted, err := inbox.ClearAll(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ClearAll() error = %v", err)
	}
	if deleted != 3 {
		t.Fatalf("ClearAll() = %d, want 3", deleted)
	}

	if _, err := inbox.ClearAll(context.Background(), ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("ClearAll() error = %v, want ErrValidation", err)
	}
}
