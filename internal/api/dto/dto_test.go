package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackenaxe/icom/internal/domain"
)

func TestUpdateWorkOrderRequestDistinguishesNullFromMissing(t *testing.T) {
	var req UpdateWorkOrderRequest
	require.NoError(t, json.Unmarshal([]byte(`{"status":"Completed","description":null}`), &req))

	patch := req.Patch()
	assert.False(t, patch.Title.Set)
	assert.False(t, patch.AssignedUserID.Set)
	assert.True(t, patch.Description.Set)
	assert.Nil(t, patch.Description.Value)
	require.True(t, patch.Status.Set)
	require.NotNil(t, patch.Status.Value)
	assert.Equal(t, domain.StatusCompleted, *patch.Status.Value)
}

func TestUpdateWorkOrderRequestRejectsWrongTypes(t *testing.T) {
	var req UpdateWorkOrderRequest
	assert.Error(t, json.Unmarshal([]byte(`{"assigned_user_id":"two"}`), &req))
}

func TestWorkOrderResponseShape(t *testing.T) {
	desc := "leaking"
	assignee := int64(2)
	resp := NewWorkOrderResponse(&domain.WorkOrder{
		ID:             1,
		Number:         "WO0001",
		Title:          "Fix pump",
		Description:    &desc,
		Priority:       domain.PriorityHigh,
		Status:         domain.StatusPending,
		AssignedUserID: &assignee,
		Assignee:       &domain.User{ID: 2, Username: "bob", Email: "bob@example.com", PasswordHash: "x"},
	})

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "WO0001", body["is_emri_no"])
	assert.Equal(t, []any{}, body["updates"])
	assert.Equal(t, map[string]any{"id": float64(2), "username": "bob", "email": "bob@example.com"}, body["assigned_to_user"])
	assert.NotContains(t, string(raw), "password")
}
