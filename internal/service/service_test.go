package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/blackenaxe/icom/internal/auth"
	"github.com/blackenaxe/icom/internal/config"
	"github.com/blackenaxe/icom/internal/domain"
	"github.com/blackenaxe/icom/internal/events"
	"github.com/blackenaxe/icom/internal/repository/memory"
	apperrors "github.com/blackenaxe/icom/pkg/util/errorutil"
)

type testEnv struct {
	store         *memory.Store
	dispatcher    events.Dispatcher
	auth          *AuthService
	workOrders    *WorkOrderService
	updates       *UpdateService
	notifications *NotificationService
	users         *UserService
	published     []events.Event
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	store := memory.NewStore()
	dispatcher := events.NewInMemoryDispatcher(logger)

	env := &testEnv{store: store, dispatcher: dispatcher}
	for _, eventType := range events.AllEventTypes {
		dispatcher.Subscribe(eventType, func(_ context.Context, e events.Event) error {
			env.published = append(env.published, e)
			return nil
		})
	}

	env.auth = NewAuthService(config.AuthConfig{BcryptCost: bcrypt.MinCost}, AuthDependencies{
		Transactor: store,
		Tokens:     auth.NewTokenManager("test-secret", "icom-test", time.Hour),
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	env.workOrders = NewWorkOrderService(store, dispatcher, logger)
	env.updates = NewUpdateService(store, dispatcher, logger)
	env.notifications = NewNotificationService(store)
	env.users = NewUserService(store)
	return env
}

func (e *testEnv) register(t *testing.T, username string) *domain.User {
	t.Helper()
	user, err := e.auth.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "password1",
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) eventTypes() []events.EventType {
	var out []events.EventType
	for _, ev := range e.published {
		out = append(out, ev.Type)
	}
	return out
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	require.Equal(t, code, de.Code, "error: %v", err)
}

func strPtr(s string) *string { return &s }

type memoryRevocations struct {
	revoked map[string]bool
}

func (m *memoryRevocations) Revoke(_ context.Context, tokenID string, _ time.Time) error {
	m.revoked[tokenID] = true
	return nil
}

func (m *memoryRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return m.revoked[tokenID], nil
}
