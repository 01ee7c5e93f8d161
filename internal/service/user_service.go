package service

import (
	"context"

	"github.com/blackenaxe/icom/internal/domain"
	"github.com/blackenaxe/icom/internal/repository"
)

// UserService is the read-only user directory.
type UserService struct {
	tx repository.Transactor
}

// NewUserService creates the service.
func NewUserService(tx repository.Transactor) *UserService {
	return &UserService{tx: tx}
}

// ListUsers returns every user ordered by id, without password hashes.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		var err error
		users, err = repos.Users.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, len(users))
	for i := range users {
		out[i] = *publicUser(&users[i])
	}
	return out, nil
}

// GetByUsername looks up a user by username.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user *domain.User
	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		var err error
		user, err = repos.Users.GetByUsername(ctx, username)
		return err
	})
	if err != nil {
		return nil, err
	}
	return publicUser(user), nil
}
