package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/blackenaxe/icom/internal/domain"
	"github.com/blackenaxe/icom/internal/events"
	"github.com/blackenaxe/icom/internal/repository"
)

// UpdateService manages the free-text log attached to work orders.
type UpdateService struct {
	tx         repository.Transactor
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewUpdateService constructs the service.
func NewUpdateService(tx repository.Transactor, dispatcher events.Dispatcher, logger *zap.Logger) *UpdateService {
	return &UpdateService{tx: tx, dispatcher: dispatcher, logger: logger}
}

// AddUpdate appends a note authored by actor to the work order.
func (s *UpdateService) AddUpdate(ctx context.Context, actor *domain.User, workOrderID int64, description string) (*domain.WorkOrderUpdate, error) {
	text, err := requireText("description", description, maxDescriptionLength)
	if err != nil {
		return nil, err
	}

	update := &domain.WorkOrderUpdate{WorkOrderID: workOrderID, UserID: actor.ID, Description: text}
	var number string
	err = s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		order, err := repos.WorkOrders.GetByID(ctx, workOrderID)
		if err != nil {
			return notFoundOr(err, "work order", workOrderID)
		}
		number = order.Number
		return notFoundOr(repos.Updates.Create(ctx, update), "work order", workOrderID)
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.dispatcher, events.Event{
		Type:        events.EventUpdateAdded,
		ActorID:     actor.ID,
		WorkOrderID: workOrderID,
		WorkOrderNo: number,
		Payload:     events.UpdatePayload{UpdateID: update.ID, BodyPreview: stringPreview(update.Description, previewLength)},
	})
	return update, nil
}

// EditUpdate replaces the text of an update. Authorship is unchanged and any
// authenticated user may edit.
func (s *UpdateService) EditUpdate(ctx context.Context, actor *domain.User, updateID int64, description string) (*domain.WorkOrderUpdate, error) {
	text, err := requireText("description", description, maxDescriptionLength)
	if err != nil {
		return nil, err
	}

	var update *domain.WorkOrderUpdate
	err = s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		update, err = repos.Updates.UpdateDescription(ctx, updateID, text)
		return notFoundOr(err, "update", updateID)
	})
	if err != nil {
		return nil, err
	}

	if update.UserID != actor.ID {
		s.logger.Debug("update edited by non-author",
			zap.Int64("update_id", update.ID),
			zap.Int64("author_id", update.UserID),
			zap.Int64("actor_id", actor.ID),
		)
	}
	publish(ctx, s.dispatcher, events.Event{
		Type:        events.EventUpdateEdited,
		ActorID:     actor.ID,
		WorkOrderID: update.WorkOrderID,
		Payload:     events.UpdatePayload{UpdateID: update.ID, BodyPreview: stringPreview(update.Description, previewLength)},
	})
	return update, nil
}

// ListUpdates returns the updates of one work order, oldest first.
func (s *UpdateService) ListUpdates(ctx context.Context, workOrderID int64) ([]domain.WorkOrderUpdate, error) {
	var updates []domain.WorkOrderUpdate
	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		if _, err := repos.WorkOrders.GetByID(ctx, workOrderID); err != nil {
			return notFoundOr(err, "work order", workOrderID)
		}
		var err error
		updates, err = repos.Updates.ListByWorkOrder(ctx, workOrderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return nonNilUpdates(updates), nil
}
