package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/blackenaxe/icom/internal/auth"
	"github.com/blackenaxe/icom/internal/config"
	"github.com/blackenaxe/icom/internal/domain"
	"github.com/blackenaxe/icom/internal/events"
	"github.com/blackenaxe/icom/internal/repository"
	apperrors "github.com/blackenaxe/icom/pkg/util/errorutil"
)

const (
	maxUsernameLength = 50
	maxEmailLength    = 255
	minPasswordLength = 6
	maxPasswordLength = 72
)

// LoginFailedMessage is returned for both unknown users and wrong passwords.
const LoginFailedMessage = "incorrect username or password"

// AuthService coordinates registration, login and token resolution.
type AuthService struct {
	tx         repository.Transactor
	tokens     *auth.TokenManager
	revoked    auth.RevocationList
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
	decoyHash  string
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	Transactor  repository.Transactor
	Tokens      *auth.TokenManager
	Revocations auth.RevocationList
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// RegisterInput describes a new account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	revoked := deps.Revocations
	if revoked == nil {
		revoked = auth.NewNoopRevocationList(deps.Logger)
	}
	return &AuthService{
		tx:         deps.Transactor,
		tokens:     deps.Tokens,
		revoked:    revoked,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		bcryptCost: cfg.BcryptCost,
		decoyHash:  auth.NewDecoyHash(cfg.BcryptCost),
	}
}

// Register creates a user account. Username is checked before email.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	username, err := requireText("username", input.Username, maxUsernameLength)
	if err != nil {
		return nil, err
	}
	email, err := requireText("email", input.Email, maxEmailLength)
	if err != nil {
		return nil, err
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, apperrors.NewValidationError("email is not a valid address", map[string]any{"field": "email"})
	}
	if n := len(input.Password); n < minPasswordLength || n > maxPasswordLength {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("password must be between %d and %d bytes", minPasswordLength, maxPasswordLength),
			map[string]any{"field": "password"},
		)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{Username: username, Email: email, PasswordHash: hash}
	err = s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		if _, err := repos.Users.GetByUsername(ctx, username); err == nil {
			return apperrors.NewConflict("username already registered", map[string]any{"field": "username"})
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if _, err := repos.Users.GetByEmail(ctx, email); err == nil {
			return apperrors.NewConflict("email already registered", map[string]any{"field": "email"})
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return repos.Users.Create(ctx, user)
	})
	if errors.Is(err, repository.ErrConflict) {
		return nil, conflictForConstraint(err)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	publish(ctx, s.dispatcher, events.Event{Type: events.EventUserRegistered, ActorID: user.ID})
	return publicUser(user), nil
}

// conflictForConstraint handles a registration that lost a race against a
// concurrent one after the explicit checks passed.
func conflictForConstraint(err error) error {
	switch constraint := repository.ConstraintOf(err); {
	case constraint == "users_username_key" || strings.Contains(err.Error(), "users_username_key"):
		return apperrors.NewConflict("username already registered", map[string]any{"field": "username"})
	case constraint == "users_email_key" || strings.Contains(err.Error(), "users_email_key"):
		return apperrors.NewConflict("email already registered", map[string]any{"field": "email"})
	default:
		return apperrors.NewConflict("username or email already registered", nil)
	}
}

// Login verifies credentials and issues a bearer token. Unknown users and
// wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, username, password string) (*auth.IssuedToken, *domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, nil, apperrors.NewValidationError("username and password are required", nil)
	}

	var user *domain.User
	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		found, err := repos.Users.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		user = found
		return nil
	})
	switch {
	case errors.Is(err, repository.ErrNotFound):
		auth.BurnPasswordCheck(s.decoyHash, password)
		return nil, nil, apperrors.NewUnauthorized(LoginFailedMessage)
	case err != nil:
		return nil, nil, err
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Info("login rejected", zap.String("username", username))
		return nil, nil, apperrors.NewUnauthorized(LoginFailedMessage)
	}

	issued, err := s.tokens.GenerateToken(user.Username)
	if err != nil {
		return nil, nil, fmt.Errorf("sign token: %w", err)
	}
	return issued, publicUser(user), nil
}

// Resolve validates a bearer token and loads the user it was issued to.
func (s *AuthService) Resolve(ctx context.Context, token string) (*domain.User, *auth.Claims, error) {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		s.logger.Debug("token rejected", zap.Error(err))
		return nil, nil, apperrors.NewUnauthorized(auth.InvalidCredentialsMessage)
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("check token revocation: %w", err)
	}
	if revoked {
		return nil, nil, apperrors.NewUnauthorized(auth.InvalidCredentialsMessage)
	}

	var user *domain.User
	err = s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		found, err := repos.Users.GetByUsername(ctx, claims.Subject)
		if err != nil {
			return err
		}
		user = found
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, apperrors.NewUnauthorized(auth.InvalidCredentialsMessage)
	}
	if err != nil {
		return nil, nil, err
	}
	return publicUser(user), claims, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return apperrors.NewUnauthorized(auth.InvalidCredentialsMessage)
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.logger.Info("token revoked", zap.String("username", claims.Subject), zap.String("jti", claims.ID))
	return nil
}
