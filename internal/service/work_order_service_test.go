package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackenaxe/icom/internal/domain"
	"github.com/blackenaxe/icom/internal/events"
	apperrors "github.com/blackenaxe/icom/pkg/util/errorutil"
)

func TestCreateAssignedWorkOrderNotifiesAssignee(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	order, err := env.workOrders.Create(ctx, alice, WorkOrderCreateInput{
		Title:          "Fix pump",
		Priority:       domain.PriorityHigh,
		AssignedUserID: &bob.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, "WO0001", order.Number)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, domain.PriorityHigh, order.Priority)
	require.NotNil(t, order.Assignee)
	assert.Equal(t, "bob", order.Assignee.Username)
	assert.NotNil(t, order.Updates)
	assert.Empty(t, order.Updates)

	inbox, err := env.notifications.ListForUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "Size yeni bir iş emri atandı: Fix pump (WO0001)", inbox[0].Message)
	assert.Equal(t, "WO0001", inbox[0].WorkOrderNo)
	assert.False(t, inbox[0].IsRead)

	assert.Contains(t, env.eventTypes(), events.EventWorkOrderCreated)
	assert.Contains(t, env.eventTypes(), events.EventWorkOrderAssigned)
}

func TestCreateDefaultsAndSequentialNumbers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	for i, want := range []string{"WO0001", "WO0002", "WO0003"} {
		order, err := env.workOrders.Create(ctx, alice, WorkOrderCreateInput{Title: "job"})
		require.NoError(t, err, "create %d", i)
		assert.Equal(t, want, order.Number)
		assert.Equal(t, domain.PriorityNormal, order.Priority)
		assert.Nil(t, order.Description)
	}

	orders, err := env.workOrders.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Less(t, orders[0].ID, orders[1].ID)
}

func TestCreateRejectedInputDoesNotConsumeNumber(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	_, err := env.workOrders.Create(ctx, alice, WorkOrderCreateInput{Title: "x", Priority: "Urgent"})
	requireCode(t, err, apperrors.CodeValidation)
	_, err = env.workOrders.Create(ctx, alice, WorkOrderCreateInput{Title: "   "})
	requireCode(t, err, apperrors.CodeValidation)
	_, err = env.workOrders.Create(ctx, alice, WorkOrderCreateInput{Title: "x", Status: "Done"})
	requireCode(t, err, apperrors.CodeValidation)

	order, err := env.workOrders.Create(ctx, alice, WorkOrderCreateInput{Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, "WO0001", order.Number)
}

func TestCreateWithUnknownAssigneeKeepsIDWithoutNotification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	missing := int64(4242)

	order, err := env.workOrders.Create(ctx, alice, WorkOrderCreateInput{Title: "x", AssignedUserID: &missing})
	require.NoError(t, err)
	require.NotNil(t, order.AssignedUserID)
	assert.Equal(t, missing, *order.AssignedUserID)
	assert.Nil(t, order.Assignee)

	inbox, err := env.notifications.ListForUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, inbox)
}

func TestUpdateIsPartial(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	created, err := env.workOrders.Create(ctx, alice, WorkOrderCreateInput{
		Title:          "Fix pump",
		Description:    strPtr("leaking"),
		AssignedUserID: &bob.ID,
	})
	require.NoError(t, err)

	updated, err := env.workOrders.Update(ctx, alice, created.ID, WorkOrderPatch{
		Status: Present(domain.StatusInProgress),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	assert.Equal(t, "Fix pump", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "leaking", *updated.Description)
	require.NotNil(t, updated.AssignedUserID)
	assert.Equal(t, bob.ID, *updated.AssignedUserID)
	assert.Equal(t, created.Number, updated.Number)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	cleared, err := env.workOrders.Update(ctx, alice, created.ID, WorkOrderPatch{
		Description:    Null[string](),
		AssignedUserID: Null[int64](),
	})
	require.NoError(t, err)
	assert.Nil(t, cleared.Description)
	assert.Nil(t, cleared.AssignedUserID)
	assert.Nil(t, cleared.Assignee)
}

func TestUpdateRejectsNullRequiredFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	created, err := env.workOrders.Create(ctx, alice, WorkOrderCreateInput{Title: "x"})
	require.NoError(t, err)

	for name, patch := range map[string]WorkOrderPatch{
		"title":    {Title: Null[string]()},
		"priority": {Priority: Null[domain.WorkOrderPriority]()},
		"status":   {Status: Null[domain.WorkOrderStatus]()},
		"bad enum": {Status: Present(domain.WorkOrderStatus("Archived"))},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := env.workOrders.Update(ctx, alice, created.ID, patch)
			requireCode(t, err, apperrors.CodeValidation)
		})
	}
}

func TestUpdateReassignmentNotifiesNewAssignee(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	carol := env.register(t, "carol")

	created, err := env.workOrders.Create(ctx, alice, WorkOrderCreateInput{Title: "Fix pump", AssignedUserID: &bob.ID})
	require.NoError(t, err)

	_, err = env.workOrders.Update(ctx, alice, created.ID, WorkOrderPatch{AssignedUserID: Present(bob.ID)})
	require.NoError(t, err)
	bobInbox, err := env.notifications.ListForUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, bobInbox, 1, "same assignee must not be notified again")

	updated, err := env.workOrders.Update(ctx, alice, created.ID, WorkOrderPatch{AssignedUserID: Present(carol.ID)})
	require.NoError(t, err)
	require.NotNil(t, updated.Assignee)
	assert.Equal(t, "carol", updated.Assignee.Username)

	carolInbox, err := env.notifications.ListForUser(ctx, carol.ID)
	require.NoError(t, err)
	require.Len(t, carolInbox, 1)
	assert.Equal(t, "WO0001", carolInbox[0].WorkOrderNo)
}

func TestUpdateAndDeleteMissingOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	_, err := env.workOrders.Update(ctx, alice, 99, WorkOrderPatch{Title: Present("x")})
	requireCode(t, err, apperrors.CodeNotFound)

	err = env.workOrders.Delete(ctx, alice, 99)
	requireCode(t, err, apperrors.CodeNotFound)

	_, err = env.workOrders.Get(ctx, 99)
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestDeleteCascadesUpdatesButKeepsNotifications(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	order, err := env.workOrders.Create(ctx, alice, WorkOrderCreateInput{Title: "x", AssignedUserID: &alice.ID})
	require.NoError(t, err)
	_, err = env.updates.AddUpdate(ctx, alice, order.ID, "started")
	require.NoError(t, err)

	require.NoError(t, env.workOrders.Delete(ctx, alice, order.ID))

	_, err = env.workOrders.Get(ctx, order.ID)
	requireCode(t, err, apperrors.CodeNotFound)
	_, err = env.updates.ListUpdates(ctx, order.ID)
	requireCode(t, err, apperrors.CodeNotFound)

	inbox, err := env.notifications.ListForUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, inbox, 1)

	next, err := env.workOrders.Create(ctx, alice, WorkOrderCreateInput{Title: "y"})
	require.NoError(t, err)
	assert.Equal(t, "WO0002", next.Number, "numbers are never reused")
}
