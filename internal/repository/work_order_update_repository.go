package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/blackenaxe/icom/internal/domain"
)

const updateSelect = `
        SELECT wu.id, wu.work_order_id, wu.user_id, u.username, wu.description, wu.created_at
        FROM work_order_updates wu
        JOIN users u ON u.id = wu.user_id`

type workOrderUpdateRepository struct {
	db DBTX
}

// NewWorkOrderUpdateRepository builds repository.
func NewWorkOrderUpdateRepository(db DBTX) WorkOrderUpdateRepository {
	return &workOrderUpdateRepository{db: db}
}

// Create inserts the update and fills in the author's username.
func (r *workOrderUpdateRepository) Create(ctx context.Context, update *domain.WorkOrderUpdate) error {
	const query = `
        WITH inserted AS (
            INSERT INTO work_order_updates (work_order_id, user_id, description)
            VALUES ($1,$2,$3)
            RETURNING id, user_id, created_at
        )
        SELECT inserted.id, inserted.created_at, u.username
        FROM inserted JOIN users u ON u.id = inserted.user_id`
	err := r.db.QueryRow(ctx, query,
		update.WorkOrderID,
		update.UserID,
		update.Description,
	).Scan(&update.ID, &update.CreatedAt, &update.Username)
	return mapPostgresError(err)
}

func (r *workOrderUpdateRepository) UpdateDescription(ctx context.Context, id int64, description string) (*domain.WorkOrderUpdate, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE work_order_updates SET description=$1 WHERE id=$2`, description, id)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *workOrderUpdateRepository) GetByID(ctx context.Context, id int64) (*domain.WorkOrderUpdate, error) {
	update, err := scanUpdate(r.db.QueryRow(ctx, updateSelect+` WHERE wu.id=$1`, id))
	if err != nil {
		return nil, mapPostgresError(err)
	}
	return update, nil
}

func (r *workOrderUpdateRepository) ListByWorkOrder(ctx context.Context, workOrderID int64) ([]domain.WorkOrderUpdate, error) {
	return r.list(ctx, updateSelect+` WHERE wu.work_order_id=$1 ORDER BY wu.created_at, wu.id`, workOrderID)
}

func (r *workOrderUpdateRepository) ListAll(ctx context.Context) ([]domain.WorkOrderUpdate, error) {
	return r.list(ctx, updateSelect+` ORDER BY wu.work_order_id, wu.created_at, wu.id`)
}

func (r *workOrderUpdateRepository) list(ctx context.Context, query string, args ...any) ([]domain.WorkOrderUpdate, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.WorkOrderUpdate
	for rows.Next() {
		update, err := scanUpdate(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *update)
	}
	return result, rows.Err()
}

func scanUpdate(row pgx.Row) (*domain.WorkOrderUpdate, error) {
	var update domain.WorkOrderUpdate
	if err := row.Scan(
		&update.ID,
		&update.WorkOrderID,
		&update.UserID,
		&update.Username,
		&update.Description,
		&update.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &update, nil
}
