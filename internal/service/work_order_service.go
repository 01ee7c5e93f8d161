package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/blackenaxe/icom/internal/domain"
	"github.com/blackenaxe/icom/internal/events"
	"github.com/blackenaxe/icom/internal/repository"
	apperrors "github.com/blackenaxe/icom/pkg/util/errorutil"
)

// WorkOrderService coordinates work order workflows and the assignment
// notifications they produce.
type WorkOrderService struct {
	tx         repository.Transactor
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// WorkOrderCreateInput describes work order creation payload. Empty
// priority and status fall back to Normal and Pending.
type WorkOrderCreateInput struct {
	Title          string
	Description    *string
	Priority       domain.WorkOrderPriority
	Status         domain.WorkOrderStatus
	AssignedUserID *int64
}

// WorkOrderPatch describes a partial update. Title, Priority and Status may
// be omitted but not nulled.
type WorkOrderPatch struct {
	Title          Field[string]
	Description    Field[string]
	Priority       Field[domain.WorkOrderPriority]
	Status         Field[domain.WorkOrderStatus]
	AssignedUserID Field[int64]
}

// NewWorkOrderService constructs the service.
func NewWorkOrderService(tx repository.Transactor, dispatcher events.Dispatcher, logger *zap.Logger) *WorkOrderService {
	return &WorkOrderService{tx: tx, dispatcher: dispatcher, logger: logger}
}

// List returns every work order by id with its assignee and updates.
func (s *WorkOrderService) List(ctx context.Context) ([]domain.WorkOrder, error) {
	var orders []domain.WorkOrder
	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		var err error
		if orders, err = repos.WorkOrders.List(ctx); err != nil {
			return err
		}
		updates, err := repos.Updates.ListAll(ctx)
		if err != nil {
			return err
		}
		byOrder := make(map[int64][]domain.WorkOrderUpdate, len(orders))
		for _, u := range updates {
			byOrder[u.WorkOrderID] = append(byOrder[u.WorkOrderID], u)
		}
		for i := range orders {
			orders[i].Updates = nonNilUpdates(byOrder[orders[i].ID])
			orders[i].Assignee = publicUser(orders[i].Assignee)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.WorkOrder{}
	}
	return orders, nil
}

// Get returns one work order with its assignee and updates.
func (s *WorkOrderService) Get(ctx context.Context, id int64) (*domain.WorkOrder, error) {
	var order *domain.WorkOrder
	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		var err error
		order, err = loadWorkOrder(ctx, repos, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Create allocates the next work order number, stores the order and, when
// the assignee resolves to a user, notifies them in the same transaction.
func (s *WorkOrderService) Create(ctx context.Context, actor *domain.User, input WorkOrderCreateInput) (*domain.WorkOrder, error) {
	title, err := requireText("title", input.Title, maxTitleLength)
	if err != nil {
		return nil, err
	}
	description, err := optionalText("description", input.Description, maxDescriptionLength)
	if err != nil {
		return nil, err
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityNormal
	}
	if !priority.Valid() {
		return nil, invalidPriority(priority)
	}
	status := input.Status
	if status == "" {
		status = domain.StatusPending
	}
	if !status.Valid() {
		return nil, invalidStatus(status)
	}

	order := &domain.WorkOrder{
		Title:          title,
		Description:    description,
		Priority:       priority,
		Status:         status,
		AssignedUserID: input.AssignedUserID,
	}

	var notification *domain.Notification
	err = s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		seq, err := repos.WorkOrders.NextNumber(ctx)
		if err != nil {
			return err
		}
		order.Number = domain.FormatWorkOrderNumber(seq)
		if err := repos.WorkOrders.Create(ctx, order); err != nil {
			return err
		}
		order.Assignee, notification, err = notifyAssignee(ctx, repos, order)
		return err
	})
	if err != nil {
		return nil, err
	}
	order.Updates = []domain.WorkOrderUpdate{}

	s.logger.Info("work order created",
		zap.Int64("work_order_id", order.ID),
		zap.String("number", order.Number),
		zap.Int64("actor_id", actor.ID),
	)
	publish(ctx, s.dispatcher, events.Event{
		Type:        events.EventWorkOrderCreated,
		ActorID:     actor.ID,
		WorkOrderID: order.ID,
		WorkOrderNo: order.Number,
		Payload: events.WorkOrderCreatedPayload{
			Title:          order.Title,
			Priority:       string(order.Priority),
			AssignedUserID: order.AssignedUserID,
		},
	})
	s.publishAssignment(ctx, actor, order, notification)
	return order, nil
}

// Update applies a partial patch. Reassigning to a different existing user
// notifies the new assignee in the same transaction.
func (s *WorkOrderService) Update(ctx context.Context, actor *domain.User, id int64, patch WorkOrderPatch) (*domain.WorkOrder, error) {
	fields, err := validatePatch(patch)
	if err != nil {
		return nil, err
	}

	var (
		order        *domain.WorkOrder
		oldStatus    domain.WorkOrderStatus
		notification *domain.Notification
		reassigned   bool
	)
	err = s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		current, err := repos.WorkOrders.GetByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "work order", id)
		}
		oldStatus = current.Status
		previousAssignee := current.AssignedUserID
		applyPatch(current, patch)

		if err := repos.WorkOrders.Update(ctx, current); err != nil {
			return notFoundOr(err, "work order", id)
		}

		if reassigned = assigneeChanged(previousAssignee, current.AssignedUserID); reassigned {
			if _, notification, err = notifyAssignee(ctx, repos, current); err != nil {
				return err
			}
		}

		order, err = loadWorkOrder(ctx, repos, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	payload := events.WorkOrderUpdatedPayload{Fields: fields}
	if order.Status != oldStatus {
		payload.OldStatus = string(oldStatus)
		payload.NewStatus = string(order.Status)
	}
	publish(ctx, s.dispatcher, events.Event{
		Type:        events.EventWorkOrderUpdated,
		ActorID:     actor.ID,
		WorkOrderID: order.ID,
		WorkOrderNo: order.Number,
		Payload:     payload,
	})
	if reassigned {
		s.publishAssignment(ctx, actor, order, notification)
	}
	return order, nil
}

// Delete removes a work order together with its updates. Notifications that
// mention it are kept.
func (s *WorkOrderService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	var number string
	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		order, err := repos.WorkOrders.GetByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "work order", id)
		}
		number = order.Number
		return notFoundOr(repos.WorkOrders.Delete(ctx, id), "work order", id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("work order deleted", zap.Int64("work_order_id", id), zap.Int64("actor_id", actor.ID))
	publish(ctx, s.dispatcher, events.Event{
		Type:        events.EventWorkOrderDeleted,
		ActorID:     actor.ID,
		WorkOrderID: id,
		WorkOrderNo: number,
	})
	return nil
}

func (s *WorkOrderService) publishAssignment(ctx context.Context, actor *domain.User, order *domain.WorkOrder, n *domain.Notification) {
	if order.AssignedUserID == nil {
		return
	}
	payload := events.WorkOrderAssignedPayload{AssigneeID: *order.AssignedUserID}
	if n != nil {
		payload.NotificationID = n.ID
	}
	publish(ctx, s.dispatcher, events.Event{
		Type:        events.EventWorkOrderAssigned,
		ActorID:     actor.ID,
		WorkOrderID: order.ID,
		WorkOrderNo: order.Number,
		Payload:     payload,
	})
}

// notifyAssignee creates the assignment notification when the order's
// assignee exists. An assignee id that matches no user is left as is.
func notifyAssignee(ctx context.Context, repos repository.Repositories, order *domain.WorkOrder) (*domain.User, *domain.Notification, error) {
	if order.AssignedUserID == nil {
		return nil, nil, nil
	}
	assignee, err := repos.Users.GetByID(ctx, *order.AssignedUserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	n := &domain.Notification{
		UserID:      assignee.ID,
		Message:     domain.AssignmentMessage(order),
		WorkOrderNo: order.Number,
	}
	if err := repos.Notifications.Create(ctx, n); err != nil {
		return nil, nil, err
	}
	return publicUser(assignee), n, nil
}

func loadWorkOrder(ctx context.Context, repos repository.Repositories, id int64) (*domain.WorkOrder, error) {
	order, err := repos.WorkOrders.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "work order", id)
	}
	updates, err := repos.Updates.ListByWorkOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Updates = nonNilUpdates(updates)
	order.Assignee = publicUser(order.Assignee)
	return order, nil
}

func validatePatch(patch WorkOrderPatch) ([]string, error) {
	var fields []string
	if patch.Title.Set {
		if patch.Title.Value == nil {
			return nil, nullNotAllowed("title")
		}
		title, err := requireText("title", *patch.Title.Value, maxTitleLength)
		if err != nil {
			return nil, err
		}
		*patch.Title.Value = title
		fields = append(fields, "title")
	}
	if patch.Description.Set {
		if _, err := optionalText("description", patch.Description.Value, maxDescriptionLength); err != nil {
			return nil, err
		}
		fields = append(fields, "description")
	}
	if patch.Priority.Set {
		if patch.Priority.Value == nil {
			return nil, nullNotAllowed("priority")
		}
		if !patch.Priority.Value.Valid() {
			return nil, invalidPriority(*patch.Priority.Value)
		}
		fields = append(fields, "priority")
	}
	if patch.Status.Set {
		if patch.Status.Value == nil {
			return nil, nullNotAllowed("status")
		}
		if !patch.Status.Value.Valid() {
			return nil, invalidStatus(*patch.Status.Value)
		}
		fields = append(fields, "status")
	}
	if patch.AssignedUserID.Set {
		fields = append(fields, "assigned_user_id")
	}
	if fields == nil {
		fields = []string{}
	}
	return fields, nil
}

func applyPatch(order *domain.WorkOrder, patch WorkOrderPatch) {
	if patch.Title.Set {
		order.Title = *patch.Title.Value
	}
	if patch.Description.Set {
		order.Description = patch.Description.Value
	}
	if patch.Priority.Set {
		order.Priority = *patch.Priority.Value
	}
	if patch.Status.Set {
		order.Status = *patch.Status.Value
	}
	if patch.AssignedUserID.Set {
		order.AssignedUserID = patch.AssignedUserID.Value
	}
}

func assigneeChanged(before, after *int64) bool {
	if after == nil {
		return false
	}
	return before == nil || *before != *after
}

func nonNilUpdates(updates []domain.WorkOrderUpdate) []domain.WorkOrderUpdate {
	if updates == nil {
		return []domain.WorkOrderUpdate{}
	}
	return updates
}

func nullNotAllowed(field string) error {
	return apperrors.NewValidationError(field+" must not be null", map[string]any{"field": field})
}

func invalidPriority(p domain.WorkOrderPriority) error {
	return apperrors.NewValidationError("unknown priority", map[string]any{
		"field":   "priority",
		"value":   string(p),
		"allowed": joinValues(domain.Priorities),
	})
}

func invalidStatus(st domain.WorkOrderStatus) error {
	return apperrors.NewValidationError("unknown status", map[string]any{
		"field":   "status",
		"value":   string(st),
		"allowed": joinValues(domain.Statuses),
	})
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
