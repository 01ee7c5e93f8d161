package service

import (
	"context"

	"github.com/blackenaxe/icom/internal/domain"
	"github.com/blackenaxe/icom/internal/repository"
)

// NotificationService exposes a user's inbox.
type NotificationService struct {
	tx repository.Transactor
}

// NewNotificationService creates the service.
func NewNotificationService(tx repository.Transactor) *NotificationService {
	return &NotificationService{tx: tx}
}

// ListForUser returns the user's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID int64) ([]domain.Notification, error) {
	var list []domain.Notification
	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		var err error
		list, err = repos.Notifications.ListByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Notification{}
	}
	return list, nil
}

// MarkRead flags a notification as read. A notification owned by someone
// else is reported exactly like a missing one. Repeating the call is a no-op.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID int64) (*domain.Notification, error) {
	var n *domain.Notification
	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		var err error
		n, err = repos.Notifications.MarkRead(ctx, notificationID, userID)
		return notFoundOr(err, "notification", notificationID)
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}
