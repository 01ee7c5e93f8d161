package dto

import (
	"time"

	"github.com/blackenaxe/icom/internal/domain"
)

// NotificationResponse represents an inbox entry.
type NotificationResponse struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Message     string    `json:"message"`
	WorkOrderNo string    `json:"work_order_no"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewNotificationResponse maps a domain notification.
func NewNotificationResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:          n.ID,
		UserID:      n.UserID,
		Message:     n.Message,
		WorkOrderNo: n.WorkOrderNo,
		IsRead:      n.IsRead,
		CreatedAt:   n.CreatedAt,
	}
}

// NewNotificationList maps notifications.
func NewNotificationList(list []domain.Notification) []NotificationResponse {
	out := make([]NotificationResponse, len(list))
	for i := range list {
		out[i] = NewNotificationResponse(&list[i])
	}
	return out
}
