package domain

import "time"

// WorkOrderUpdate is a note appended to a work order. Authorship never changes.
type WorkOrderUpdate struct {
	ID          int64
	WorkOrderID int64
	UserID      int64
	Username    string
	Description string
	CreatedAt   time.Time
}
