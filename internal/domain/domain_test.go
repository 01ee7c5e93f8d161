package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatWorkOrderNumber(t *testing.T) {
	assert.Equal(t, "WO0001", FormatWorkOrderNumber(1))
	assert.Equal(t, "WO0042", FormatWorkOrderNumber(42))
	assert.Equal(t, "WO9999", FormatWorkOrderNumber(9999))
	assert.Equal(t, "WO10000", FormatWorkOrderNumber(10000))
}

func TestEnumsValidate(t *testing.T) {
	assert.True(t, PriorityHigh.Valid())
	assert.True(t, WorkOrderPriority("Düşük").Valid())
	assert.False(t, WorkOrderPriority("High").Valid())
	assert.False(t, WorkOrderPriority("").Valid())

	assert.True(t, StatusInProgress.Valid())
	assert.False(t, WorkOrderStatus("in progress").Valid())
}

func TestAssignmentMessage(t *testing.T) {
	msg := AssignmentMessage(&WorkOrder{Title: "Fix pump", Number: "WO0001"})
	assert.Equal(t, "Size yeni bir iş emri atandı: Fix pump (WO0001)", msg)
}
