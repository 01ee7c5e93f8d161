package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/blackenaxe/icom/pkg/util/errorutil"
)

func TestAddAndEditUpdates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	order, err := env.workOrders.Create(ctx, alice, WorkOrderCreateInput{Title: "x"})
	require.NoError(t, err)

	first, err := env.updates.AddUpdate(ctx, alice, order.ID, "  parts ordered ")
	require.NoError(t, err)
	assert.Equal(t, "parts ordered", first.Description)
	assert.Equal(t, "alice", first.Username)
	assert.Equal(t, order.ID, first.WorkOrderID)

	_, err = env.updates.AddUpdate(ctx, bob, order.ID, "parts arrived")
	require.NoError(t, err)

	edited, err := env.updates.EditUpdate(ctx, bob, first.ID, "parts ordered twice")
	require.NoError(t, err)
	assert.Equal(t, "parts ordered twice", edited.Description)
	assert.Equal(t, alice.ID, edited.UserID, "authorship never changes")
	assert.Equal(t, "alice", edited.Username)

	list, err := env.updates.ListUpdates(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, "bob", list[1].Username)

	got, err := env.workOrders.Get(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Updates, 2)
	assert.Equal(t, "parts ordered twice", got.Updates[0].Description)
}

func TestUpdateErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	_, err := env.updates.AddUpdate(ctx, alice, 7, "text")
	requireCode(t, err, apperrors.CodeNotFound)

	_, err = env.updates.EditUpdate(ctx, alice, 7, "text")
	requireCode(t, err, apperrors.CodeNotFound)

	order, err := env.workOrders.Create(ctx, alice, WorkOrderCreateInput{Title: "x"})
	require.NoError(t, err)
	_, err = env.updates.AddUpdate(ctx, alice, order.ID, "   ")
	requireCode(t, err, apperrors.CodeValidation)
}
