package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/blackenaxe/icom/internal/domain"
)

const workOrderCounter = "work_order_number"

const workOrderSelect = `
        SELECT w.id, w.is_emri_no, w.title, w.description, w.priority, w.status,
               w.assigned_user_id, w.created_at, w.updated_at,
               u.id, u.username, u.email, u.created_at
        FROM work_orders w
        LEFT JOIN users u ON u.id = w.assigned_user_id`

type workOrderRepository struct {
	db DBTX
}

// NewWorkOrderRepository instantiates repository.
func NewWorkOrderRepository(db DBTX) WorkOrderRepository {
	return &workOrderRepository{db: db}
}

// NextNumber advances the work order counter. The row lock taken by the
// UPDATE is held until the surrounding transaction ends, so concurrent
// creates are serialised and a rolled-back create releases its number.
func (r *workOrderRepository) NextNumber(ctx context.Context) (int64, error) {
	const query = `UPDATE counters SET value = value + 1 WHERE name=$1 RETURNING value`
	var next int64
	if err := r.db.QueryRow(ctx, query, workOrderCounter).Scan(&next); err != nil {
		return 0, mapPostgresError(err)
	}
	return next, nil
}

func (r *workOrderRepository) Create(ctx context.Context, order *domain.WorkOrder) error {
	const query = `
        INSERT INTO work_orders (is_emri_no, title, description, priority, status, assigned_user_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		order.Number,
		order.Title,
		order.Description,
		order.Priority,
		order.Status,
		order.AssignedUserID,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	return mapPostgresError(err)
}

func (r *workOrderRepository) Update(ctx context.Context, order *domain.WorkOrder) error {
	const query = `
        UPDATE work_orders SET title=$1, description=$2, priority=$3, status=$4,
            assigned_user_id=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		order.Title,
		order.Description,
		order.Priority,
		order.Status,
		order.AssignedUserID,
		order.ID,
	).Scan(&order.UpdatedAt)
	return mapPostgresError(err)
}

func (r *workOrderRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM work_orders WHERE id=$1`, id)
	if err != nil {
		return mapPostgresError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *workOrderRepository) GetByID(ctx context.Context, id int64) (*domain.WorkOrder, error) {
	order, err := scanWorkOrder(r.db.QueryRow(ctx, workOrderSelect+` WHERE w.id=$1`, id))
	if err != nil {
		return nil, mapPostgresError(err)
	}
	return order, nil
}

func (r *workOrderRepository) List(ctx context.Context) ([]domain.WorkOrder, error) {
	rows, err := r.db.Query(ctx, workOrderSelect+` ORDER BY w.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.WorkOrder
	for rows.Next() {
		order, err := scanWorkOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	return result, rows.Err()
}

func scanWorkOrder(row pgx.Row) (*domain.WorkOrder, error) {
	var (
		order         domain.WorkOrder
		assigneeID    *int64
		assigneeName  *string
		assigneeEmail *string
		assigneeSince *time.Time
	)
	if err := row.Scan(
		&order.ID,
		&order.Number,
		&order.Title,
		&order.Description,
		&order.Priority,
		&order.Status,
		&order.AssignedUserID,
		&order.CreatedAt,
		&order.UpdatedAt,
		&assigneeID,
		&assigneeName,
		&assigneeEmail,
		&assigneeSince,
	); err != nil {
		return nil, err
	}
	if assigneeID != nil {
		order.Assignee = &domain.User{
			ID:        *assigneeID,
			Username:  *assigneeName,
			Email:     *assigneeEmail,
			CreatedAt: *assigneeSince,
		}
	}
	return &order, nil
}
