package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/blackenaxe/icom/internal/domain"
)

const notificationColumns = `id, user_id, message, work_order_no, is_read, created_at`

type notificationRepository struct {
	db DBTX
}

// NewNotificationRepository builds repository.
func NewNotificationRepository(db DBTX) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	const query = `
        INSERT INTO notifications (user_id, message, work_order_no)
        VALUES ($1,$2,$3)
        RETURNING id, is_read, created_at`
	err := r.db.QueryRow(ctx, query, n.UserID, n.Message, n.WorkOrderNo).
		Scan(&n.ID, &n.IsRead, &n.CreatedAt)
	return mapPostgresError(err)
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Notification, error) {
	const query = `SELECT ` + notificationColumns + `
        FROM notifications WHERE user_id=$1
        ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *n)
	}
	return result, rows.Err()
}

// MarkRead flips the read flag. A notification owned by another user is
// indistinguishable from a missing one.
func (r *notificationRepository) MarkRead(ctx context.Context, id, userID int64) (*domain.Notification, error) {
	const query = `
        UPDATE notifications SET is_read=TRUE
        WHERE id=$1 AND user_id=$2
        RETURNING ` + notificationColumns
	n, err := scanNotification(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, mapPostgresError(err)
	}
	return n, nil
}

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	if err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.Message,
		&n.WorkOrderNo,
		&n.IsRead,
		&n.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &n, nil
}
