package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventWorkOrderCreated  EventType = "work_order_created"
	EventWorkOrderUpdated  EventType = "work_order_updated"
	EventWorkOrderAssigned EventType = "work_order_assigned"
	EventWorkOrderDeleted  EventType = "work_order_deleted"
	EventUpdateAdded       EventType = "update_added"
	EventUpdateEdited      EventType = "update_edited"
	EventUserRegistered    EventType = "user_registered"
)

// AllEventTypes lists every event type services publish.
var AllEventTypes = []EventType{
	EventWorkOrderCreated,
	EventWorkOrderUpdated,
	EventWorkOrderAssigned,
	EventWorkOrderDeleted,
	EventUpdateAdded,
	EventUpdateEdited,
	EventUserRegistered,
}

// Event represents a domain event emitted by services after a commit.
type Event struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	ActorID     int64     `json:"actor_id,omitempty"`
	WorkOrderID int64     `json:"work_order_id,omitempty"`
	WorkOrderNo string    `json:"work_order_no,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Payload     any       `json:"payload,omitempty"`
}

// WorkOrderCreatedPayload payload.
type WorkOrderCreatedPayload struct {
	Title          string `json:"title"`
	Priority       string `json:"priority"`
	AssignedUserID *int64 `json:"assigned_user_id,omitempty"`
}

// WorkOrderUpdatedPayload lists the fields present in the patch.
type WorkOrderUpdatedPayload struct {
	Fields    []string `json:"fields"`
	OldStatus string   `json:"old_status,omitempty"`
	NewStatus string   `json:"new_status,omitempty"`
}

// WorkOrderAssignedPayload payload. NotificationID is zero when the assignee
// does not resolve to a user.
type WorkOrderAssignedPayload struct {
	AssigneeID     int64 `json:"assignee_id"`
	NotificationID int64 `json:"notification_id,omitempty"`
}

// UpdatePayload describes an added or edited update.
type UpdatePayload struct {
	UpdateID    int64  `json:"update_id"`
	BodyPreview string `json:"body_preview"`
}
