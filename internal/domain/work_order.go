package domain

import (
	"fmt"
	"time"
)

// WorkOrderStatus enumerates lifecycle states. Any state may follow any other.
type WorkOrderStatus string

const (
	StatusPending    WorkOrderStatus = "Pending"
	StatusInProgress WorkOrderStatus = "In Progress"
	StatusCompleted  WorkOrderStatus = "Completed"
	StatusCancelled  WorkOrderStatus = "Cancelled"
)

// Statuses lists every valid status in display order.
var Statuses = []WorkOrderStatus{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}

// Valid reports whether s is a known status.
func (s WorkOrderStatus) Valid() bool {
	for _, candidate := range Statuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// WorkOrderPriority enumerates urgency levels.
type WorkOrderPriority string

const (
	PriorityLow    WorkOrderPriority = "Düşük"
	PriorityNormal WorkOrderPriority = "Normal"
	PriorityHigh   WorkOrderPriority = "Yüksek"
)

// Priorities lists every valid priority from lowest to highest.
var Priorities = []WorkOrderPriority{PriorityLow, PriorityNormal, PriorityHigh}

// Valid reports whether p is a known priority.
func (p WorkOrderPriority) Valid() bool {
	for _, candidate := range Priorities {
		if p == candidate {
			return true
		}
	}
	return false
}

// WorkOrderNumberPrefix prefixes every human-readable work order number.
const WorkOrderNumberPrefix = "WO"

// FormatWorkOrderNumber renders a sequence value as WO0001, WO0002, ...
func FormatWorkOrderNumber(seq int64) string {
	return fmt.Sprintf("%s%04d", WorkOrderNumberPrefix, seq)
}

// WorkOrder is a tracked job ticket.
type WorkOrder struct {
	ID             int64
	Number         string
	Title          string
	Description    *string
	Priority       WorkOrderPriority
	Status         WorkOrderStatus
	AssignedUserID *int64
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Populated on reads; not persisted with the row.
	Assignee *User
	Updates  []WorkOrderUpdate
}
