// Package memory provides an in-process implementation of the repository
// interfaces. It backs the service when no database is configured.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/blackenaxe/icom/internal/domain"
	"github.com/blackenaxe/icom/internal/repository"
)

type state struct {
	users         map[int64]domain.User
	workOrders    map[int64]domain.WorkOrder
	updates       map[int64]domain.WorkOrderUpdate
	notifications map[int64]domain.Notification

	lastUserID         int64
	lastWorkOrderID    int64
	lastUpdateID       int64
	lastNotificationID int64
	workOrderCounter   int64
}

func (s state) clone() state {
	out := s
	out.users = maps.Clone(s.users)
	out.workOrders = maps.Clone(s.workOrders)
	out.updates = maps.Clone(s.updates)
	out.notifications = maps.Clone(s.notifications)
	return out
}

// Store keeps every table in maps guarded by one mutex. Each transaction
// holds the mutex for its whole duration and restores a snapshot when the
// callback fails.
type Store struct {
	mu    sync.Mutex
	now   func() time.Time
	state state
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		now: func() time.Time { return time.Now().UTC() },
		state: state{
			users:         map[int64]domain.User{},
			workOrders:    map[int64]domain.WorkOrder{},
			updates:       map[int64]domain.WorkOrderUpdate{},
			notifications: map[int64]domain.Notification{},
		},
	}
}

var _ repository.Transactor = (*Store)(nil)

// WithinTx implements repository.Transactor.
func (s *Store) WithinTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := s.state.clone()
	if err := fn(s.repositories()); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

func (s *Store) repositories() repository.Repositories {
	return repository.Repositories{
		Users:         userRepository{s},
		WorkOrders:    workOrderRepository{s},
		Updates:       updateRepository{s},
		Notifications: notificationRepository{s},
	}
}

type userRepository struct{ s *Store }

func (r userRepository) Create(_ context.Context, user *domain.User) error {
	for _, existing := range r.s.state.users {
		if existing.Username == user.Username {
			return fmt.Errorf("%w: users_username_key", repository.ErrConflict)
		}
		if existing.Email == user.Email {
			return fmt.Errorf("%w: users_email_key", repository.ErrConflict)
		}
	}
	r.s.state.lastUserID++
	user.ID = r.s.state.lastUserID
	user.CreatedAt = r.s.now()
	// Callers may hand in strings backed by a reused request buffer.
	stored := *user
	stored.Username = strings.Clone(user.Username)
	stored.Email = strings.Clone(user.Email)
	stored.PasswordHash = strings.Clone(user.PasswordHash)
	r.s.state.users[user.ID] = stored
	return nil
}

func (r userRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := r.s.state.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r userRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range r.s.state.users {
		if user.Username == username {
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.s.state.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r userRepository) List(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.s.state.users))
	for _, user := range r.s.state.users {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type workOrderRepository struct{ s *Store }

func (r workOrderRepository) NextNumber(_ context.Context) (int64, error) {
	r.s.state.workOrderCounter++
	return r.s.state.workOrderCounter, nil
}

func (r workOrderRepository) Create(_ context.Context, order *domain.WorkOrder) error {
	for _, existing := range r.s.state.workOrders {
		if existing.Number == order.Number {
			return fmt.Errorf("%w: work_orders_is_emri_no_key", repository.ErrConflict)
		}
	}
	r.s.state.lastWorkOrderID++
	now := r.s.now()
	order.ID = r.s.state.lastWorkOrderID
	order.CreatedAt = now
	order.UpdatedAt = now
	r.s.state.workOrders[order.ID] = stripRelations(*order)
	return nil
}

func (r workOrderRepository) Update(_ context.Context, order *domain.WorkOrder) error {
	existing, ok := r.s.state.workOrders[order.ID]
	if !ok {
		return repository.ErrNotFound
	}
	order.Number = existing.Number
	order.CreatedAt = existing.CreatedAt
	order.UpdatedAt = r.s.now()
	r.s.state.workOrders[order.ID] = stripRelations(*order)
	return nil
}

// Delete removes the order and, like the ON DELETE CASCADE foreign key, its updates.
func (r workOrderRepository) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.state.workOrders[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.state.workOrders, id)
	for updateID, update := range r.s.state.updates {
		if update.WorkOrderID == id {
			delete(r.s.state.updates, updateID)
		}
	}
	return nil
}

func (r workOrderRepository) GetByID(_ context.Context, id int64) (*domain.WorkOrder, error) {
	order, ok := r.s.state.workOrders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	r.attachAssignee(&order)
	return &order, nil
}

func (r workOrderRepository) List(_ context.Context) ([]domain.WorkOrder, error) {
	out := make([]domain.WorkOrder, 0, len(r.s.state.workOrders))
	for _, order := range r.s.state.workOrders {
		r.attachAssignee(&order)
		out = append(out, order)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r workOrderRepository) attachAssignee(order *domain.WorkOrder) {
	if order.AssignedUserID == nil {
		return
	}
	if user, ok := r.s.state.users[*order.AssignedUserID]; ok {
		user.PasswordHash = ""
		order.Assignee = &user
	}
}

func stripRelations(order domain.WorkOrder) domain.WorkOrder {
	order.Assignee = nil
	order.Updates = nil
	return order
}

type updateRepository struct{ s *Store }

func (r updateRepository) Create(_ context.Context, update *domain.WorkOrderUpdate) error {
	if _, ok := r.s.state.workOrders[update.WorkOrderID]; !ok {
		return fmt.Errorf("%w: work_order_updates_work_order_id_fkey", repository.ErrNotFound)
	}
	author, ok := r.s.state.users[update.UserID]
	if !ok {
		return fmt.Errorf("%w: work_order_updates_user_id_fkey", repository.ErrNotFound)
	}
	r.s.state.lastUpdateID++
	update.ID = r.s.state.lastUpdateID
	update.CreatedAt = r.s.now()
	update.Username = author.Username
	r.s.state.updates[update.ID] = *update
	return nil
}

func (r updateRepository) UpdateDescription(_ context.Context, id int64, description string) (*domain.WorkOrderUpdate, error) {
	update, ok := r.s.state.updates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	update.Description = description
	r.s.state.updates[id] = update
	return r.withAuthor(update), nil
}

func (r updateRepository) GetByID(_ context.Context, id int64) (*domain.WorkOrderUpdate, error) {
	update, ok := r.s.state.updates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.withAuthor(update), nil
}

func (r updateRepository) ListByWorkOrder(_ context.Context, workOrderID int64) ([]domain.WorkOrderUpdate, error) {
	return r.collect(func(u domain.WorkOrderUpdate) bool { return u.WorkOrderID == workOrderID }), nil
}

func (r updateRepository) ListAll(_ context.Context) ([]domain.WorkOrderUpdate, error) {
	return r.collect(func(domain.WorkOrderUpdate) bool { return true }), nil
}

func (r updateRepository) collect(keep func(domain.WorkOrderUpdate) bool) []domain.WorkOrderUpdate {
	var out []domain.WorkOrderUpdate
	for _, update := range r.s.state.updates {
		if keep(update) {
			out = append(out, *r.withAuthor(update))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WorkOrderID != out[j].WorkOrderID {
			return out[i].WorkOrderID < out[j].WorkOrderID
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r updateRepository) withAuthor(update domain.WorkOrderUpdate) *domain.WorkOrderUpdate {
	if author, ok := r.s.state.users[update.UserID]; ok {
		update.Username = author.Username
	}
	return &update
}

type notificationRepository struct{ s *Store }

func (r notificationRepository) Create(_ context.Context, n *domain.Notification) error {
	if _, ok := r.s.state.users[n.UserID]; !ok {
		return fmt.Errorf("%w: notifications_user_id_fkey", repository.ErrNotFound)
	}
	r.s.state.lastNotificationID++
	n.ID = r.s.state.lastNotificationID
	n.IsRead = false
	n.CreatedAt = r.s.now()
	r.s.state.notifications[n.ID] = *n
	return nil
}

func (r notificationRepository) ListByUser(_ context.Context, userID int64) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range r.s.state.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r notificationRepository) MarkRead(_ context.Context, id, userID int64) (*domain.Notification, error) {
	n, ok := r.s.state.notifications[id]
	if !ok || n.UserID != userID {
		return nil, repository.ErrNotFound
	}
	n.IsRead = true
	r.s.state.notifications[id] = n
	return &n, nil
}
