package dto

import (
	"time"

	"github.com/blackenaxe/icom/internal/domain"
	"github.com/blackenaxe/icom/internal/service"
)

// CreateWorkOrderRequest payload. Omitted or null priority and status take
// their defaults.
type CreateWorkOrderRequest struct {
	Title          string                    `json:"title"`
	Description    *string                   `json:"description"`
	Priority       *domain.WorkOrderPriority `json:"priority"`
	Status         *domain.WorkOrderStatus   `json:"status"`
	AssignedUserID *int64                    `json:"assigned_user_id"`
}

// Input converts the payload for the service.
func (r CreateWorkOrderRequest) Input() service.WorkOrderCreateInput {
	input := service.WorkOrderCreateInput{
		Title:          r.Title,
		Description:    r.Description,
		AssignedUserID: r.AssignedUserID,
	}
	if r.Priority != nil {
		input.Priority = *r.Priority
	}
	if r.Status != nil {
		input.Status = *r.Status
	}
	return input
}

// UpdateWorkOrderRequest is a partial update; only fields present in the
// body are applied.
type UpdateWorkOrderRequest struct {
	Title          Optional[string]                   `json:"title"`
	Description    Optional[string]                   `json:"description"`
	Priority       Optional[domain.WorkOrderPriority] `json:"priority"`
	Status         Optional[domain.WorkOrderStatus]   `json:"status"`
	AssignedUserID Optional[int64]                    `json:"assigned_user_id"`
}

// Patch converts the payload for the service.
func (r UpdateWorkOrderRequest) Patch() service.WorkOrderPatch {
	return service.WorkOrderPatch{
		Title:          r.Title.Field(),
		Description:    r.Description.Field(),
		Priority:       r.Priority.Field(),
		Status:         r.Status.Field(),
		AssignedUserID: r.AssignedUserID.Field(),
	}
}

// UpdateRequest payload for adding or editing an update.
type UpdateRequest struct {
	Description string `json:"description"`
}

// WorkOrderResponse represents a work order with its assignee and updates.
type WorkOrderResponse struct {
	ID             int64                    `json:"id"`
	Number         string                   `json:"is_emri_no"`
	Title          string                   `json:"title"`
	Description    *string                  `json:"description"`
	Priority       domain.WorkOrderPriority `json:"priority"`
	Status         domain.WorkOrderStatus   `json:"status"`
	AssignedUserID *int64                   `json:"assigned_user_id"`
	AssignedTo     *UserResponse            `json:"assigned_to_user"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
	Updates        []UpdateResponse         `json:"updates"`
}

// UpdateAuthor identifies who wrote an update.
type UpdateAuthor struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// UpdateResponse represents one work order update.
type UpdateResponse struct {
	ID          int64        `json:"id"`
	WorkOrderID int64        `json:"work_order_id"`
	Description string       `json:"description"`
	CreatedAt   time.Time    `json:"created_at"`
	User        UpdateAuthor `json:"user"`
}

// NewWorkOrderResponse maps a domain work order.
func NewWorkOrderResponse(order *domain.WorkOrder) WorkOrderResponse {
	resp := WorkOrderResponse{
		ID:             order.ID,
		Number:         order.Number,
		Title:          order.Title,
		Description:    order.Description,
		Priority:       order.Priority,
		Status:         order.Status,
		AssignedUserID: order.AssignedUserID,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
		Updates:        NewUpdateList(order.Updates),
	}
	if order.Assignee != nil {
		assignee := NewUserResponse(order.Assignee)
		resp.AssignedTo = &assignee
	}
	return resp
}

// NewWorkOrderList maps work orders.
func NewWorkOrderList(orders []domain.WorkOrder) []WorkOrderResponse {
	out := make([]WorkOrderResponse, len(orders))
	for i := range orders {
		out[i] = NewWorkOrderResponse(&orders[i])
	}
	return out
}

// NewUpdateResponse maps a domain update.
func NewUpdateResponse(update *domain.WorkOrderUpdate) UpdateResponse {
	return UpdateResponse{
		ID:          update.ID,
		WorkOrderID: update.WorkOrderID,
		Description: update.Description,
		CreatedAt:   update.CreatedAt,
		User:        UpdateAuthor{ID: update.UserID, Username: update.Username},
	}
}

// NewUpdateList maps updates; never nil.
func NewUpdateList(updates []domain.WorkOrderUpdate) []UpdateResponse {
	out := make([]UpdateResponse, len(updates))
	for i := range updates {
		out[i] = NewUpdateResponse(&updates[i])
	}
	return out
}
