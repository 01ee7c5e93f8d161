package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/blackenaxe/icom/internal/domain"
)

var (
	// ErrNotFound is returned when a keyed lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("record conflicts with an existing one")
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository defines persistence access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

// WorkOrderRepository encapsulates work order persistence. Reads populate
// Assignee when the assigned user exists; Updates are left to the caller.
type WorkOrderRepository interface {
	NextNumber(ctx context.Context) (int64, error)
	Create(ctx context.Context, order *domain.WorkOrder) error
	Update(ctx context.Context, order *domain.WorkOrder) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.WorkOrder, error)
	List(ctx context.Context) ([]domain.WorkOrder, error)
}

// WorkOrderUpdateRepository manages the notes attached to work orders.
// Listings are ordered oldest first and carry the author's username.
type WorkOrderUpdateRepository interface {
	Create(ctx context.Context, update *domain.WorkOrderUpdate) error
	UpdateDescription(ctx context.Context, id int64, description string) (*domain.WorkOrderUpdate, error)
	GetByID(ctx context.Context, id int64) (*domain.WorkOrderUpdate, error)
	ListByWorkOrder(ctx context.Context, workOrderID int64) ([]domain.WorkOrderUpdate, error)
	ListAll(ctx context.Context) ([]domain.WorkOrderUpdate, error)
}

// NotificationRepository manages per-user inbox entries. Lookups are always
// scoped to the owning user.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID int64) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, userID int64) (*domain.Notification, error)
}

// Repositories bundles every repository bound to one unit of work.
type Repositories struct {
	Users         UserRepository
	WorkOrders    WorkOrderRepository
	Updates       WorkOrderUpdateRepository
	Notifications NotificationRepository
}

// Transactor runs fn inside a single transaction. The transaction commits
// when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repos Repositories) error) error
}

// NewRepositories binds Postgres repositories to db.
func NewRepositories(db DBTX) Repositories {
	return Repositories{
		Users:         NewUserRepository(db),
		WorkOrders:    NewWorkOrderRepository(db),
		Updates:       NewWorkOrderUpdateRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}
