package memory

import (
	"context"
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackenaxe/icom/internal/domain"
	"github.com/blackenaxe/icom/internal/repository"
)

func seedUser(t *testing.T, store *Store, username string) *domain.User {
	t.Helper()
	user := &domain.User{Username: username, Email: username + "@example.com", PasswordHash: "hash"}
	err := store.WithinTx(context.Background(), func(repos repository.Repositories) error {
		return repos.Users.Create(context.Background(), user)
	})
	require.NoError(t, err)
	return user
}

func TestUsersUniqueness(t *testing.T) {
	store := NewStore()
	seedUser(t, store, "alice")

	err := store.WithinTx(context.Background(), func(repos repository.Repositories) error {
		return repos.Users.Create(context.Background(), &domain.User{Username: "alice", Email: "other@example.com"})
	})
	assert.ErrorIs(t, err, repository.ErrConflict)

	err = store.WithinTx(context.Background(), func(repos repository.Repositories) error {
		return repos.Users.Create(context.Background(), &domain.User{Username: "bob", Email: "alice@example.com"})
	})
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestUsersCreateCopiesStrings(t *testing.T) {
	store := NewStore()
	buf := []byte("carol carol@example.com")
	user := &domain.User{
		Username:     unsafe.String(&buf[0], 5),
		Email:        unsafe.String(&buf[6], len(buf)-6),
		PasswordHash: "hash",
	}
	err := store.WithinTx(context.Background(), func(repos repository.Repositories) error {
		return repos.Users.Create(context.Background(), user)
	})
	require.NoError(t, err)

	copy(buf, "xxxxxxxxxxxxxxxxxxxxxxx")

	err = store.WithinTx(context.Background(), func(repos repository.Repositories) error {
		got, err := repos.Users.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, "carol", got.Username)
		assert.Equal(t, "carol@example.com", got.Email)
		return nil
	})
	require.NoError(t, err)
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	store := NewStore()
	boom := errors.New("boom")

	err := store.WithinTx(context.Background(), func(repos repository.Repositories) error {
		ctx := context.Background()
		if _, err := repos.WorkOrders.NextNumber(ctx); err != nil {
			return err
		}
		if err := repos.Users.Create(ctx, &domain.User{Username: "ghost", Email: "ghost@example.com"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = store.WithinTx(context.Background(), func(repos repository.Repositories) error {
		ctx := context.Background()
		_, err := repos.Users.GetByUsername(ctx, "ghost")
		assert.ErrorIs(t, err, repository.ErrNotFound)

		next, err := repos.WorkOrders.NextNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), next)
		return nil
	})
	require.NoError(t, err)
}

func TestWithinTxHonoursCancelledContext(t *testing.T) {
	store := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := store.WithinTx(ctx, func(repository.Repositories) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestWorkOrderDeleteCascadesUpdates(t *testing.T) {
	store := NewStore()
	author := seedUser(t, store, "alice")
	ctx := context.Background()

	var orderID int64
	err := store.WithinTx(ctx, func(repos repository.Repositories) error {
		order := &domain.WorkOrder{Number: "WO0001", Title: "Fix pump", Priority: domain.PriorityHigh, Status: domain.StatusPending}
		if err := repos.WorkOrders.Create(ctx, order); err != nil {
			return err
		}
		orderID = order.ID
		for _, text := range []string{"first", "second"} {
			if err := repos.Updates.Create(ctx, &domain.WorkOrderUpdate{WorkOrderID: order.ID, UserID: author.ID, Description: text}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	err = store.WithinTx(ctx, func(repos repository.Repositories) error {
		updates, err := repos.Updates.ListByWorkOrder(ctx, orderID)
		require.NoError(t, err)
		require.Len(t, updates, 2)
		assert.Equal(t, "first", updates[0].Description)
		assert.Equal(t, "alice", updates[0].Username)

		require.NoError(t, repos.WorkOrders.Delete(ctx, orderID))
		assert.ErrorIs(t, repos.WorkOrders.Delete(ctx, orderID), repository.ErrNotFound)

		all, err := repos.Updates.ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
		return nil
	})
	require.NoError(t, err)
}

func TestWorkOrderAssigneeIsWeakReference(t *testing.T) {
	store := NewStore()
	alice := seedUser(t, store, "alice")
	ctx := context.Background()
	missing := int64(999)

	err := store.WithinTx(ctx, func(repos repository.Repositories) error {
		assigned := &domain.WorkOrder{Number: "WO0001", Title: "a", Priority: domain.PriorityNormal, Status: domain.StatusPending, AssignedUserID: &alice.ID}
		dangling := &domain.WorkOrder{Number: "WO0002", Title: "b", Priority: domain.PriorityNormal, Status: domain.StatusPending, AssignedUserID: &missing}
		require.NoError(t, repos.WorkOrders.Create(ctx, assigned))
		require.NoError(t, repos.WorkOrders.Create(ctx, dangling))

		orders, err := repos.WorkOrders.List(ctx)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		require.NotNil(t, orders[0].Assignee)
		assert.Equal(t, "alice", orders[0].Assignee.Username)
		assert.Empty(t, orders[0].Assignee.PasswordHash)
		assert.Nil(t, orders[1].Assignee)
		assert.Equal(t, missing, *orders[1].AssignedUserID)

		dup := &domain.WorkOrder{Number: "WO0001", Title: "c"}
		assert.ErrorIs(t, repos.WorkOrders.Create(ctx, dup), repository.ErrConflict)
		return nil
	})
	require.NoError(t, err)
}

func TestUpdateCreateRequiresExistingRows(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.WithinTx(ctx, func(repos repository.Repositories) error {
		return repos.Updates.Create(ctx, &domain.WorkOrderUpdate{WorkOrderID: 1, UserID: 1, Description: "x"})
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestNotificationsOrderingAndOwnership(t *testing.T) {
	store := NewStore()
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	ctx := context.Background()

	err := store.WithinTx(ctx, func(repos repository.Repositories) error {
		for _, no := range []string{"WO0001", "WO0002"} {
			if err := repos.Notifications.Create(ctx, &domain.Notification{UserID: alice.ID, Message: "m", WorkOrderNo: no}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	err = store.WithinTx(ctx, func(repos repository.Repositories) error {
		list, err := repos.Notifications.ListByUser(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "WO0002", list[0].WorkOrderNo)
		assert.False(t, list[0].IsRead)

		_, err = repos.Notifications.MarkRead(ctx, list[0].ID, bob.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		untouched, err := repos.Notifications.ListByUser(ctx, alice.ID)
		require.NoError(t, err)
		assert.False(t, untouched[0].IsRead)

		for range 2 {
			read, err := repos.Notifications.MarkRead(ctx, list[0].ID, alice.ID)
			require.NoError(t, err)
			assert.True(t, read.IsRead)
		}

		empty, err := repos.Notifications.ListByUser(ctx, bob.ID)
		require.NoError(t, err)
		assert.Empty(t, empty)
		return nil
	})
	require.NoError(t, err)
}
