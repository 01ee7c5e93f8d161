package domain

import (
	"fmt"
	"time"
)

// Notification is an inbox entry owned by a single user.
type Notification struct {
	ID          int64
	UserID      int64
	Message     string
	WorkOrderNo string
	IsRead      bool
	CreatedAt   time.Time
}

// AssignmentMessage is the inbox text sent to a user who receives a work order.
func AssignmentMessage(order *WorkOrder) string {
	return fmt.Sprintf("Size yeni bir iş emri atandı: %s (%s)", order.Title, order.Number)
}
