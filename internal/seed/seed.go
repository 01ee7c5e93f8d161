// Package seed loads YAML fixtures of users and work orders through the
// regular services, so every invariant and notification applies.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/blackenaxe/icom/internal/domain"
	"github.com/blackenaxe/icom/internal/repository"
	"github.com/blackenaxe/icom/internal/service"
	apperrors "github.com/blackenaxe/icom/pkg/util/errorutil"
)

// Fixture is the document layout of a seed file.
type Fixture struct {
	Users      []UserFixture      `yaml:"users"`
	WorkOrders []WorkOrderFixture `yaml:"work_orders"`
}

// UserFixture describes an account to register.
type UserFixture struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// WorkOrderFixture describes a work order. CreatedBy and Assignee are usernames.
type WorkOrderFixture struct {
	Title       string          `yaml:"title"`
	Description *string         `yaml:"description"`
	Priority    string          `yaml:"priority"`
	Status      string          `yaml:"status"`
	CreatedBy   string          `yaml:"created_by"`
	Assignee    string          `yaml:"assignee"`
	Updates     []UpdateFixture `yaml:"updates"`
}

// UpdateFixture describes a note on a work order.
type UpdateFixture struct {
	Author      string `yaml:"author"`
	Description string `yaml:"description"`
}

// Services are the operations the loader drives.
type Services struct {
	Auth       *service.AuthService
	WorkOrders *service.WorkOrderService
	Updates    *service.UpdateService
	Users      *service.UserService
}

// Result summarises an Apply run.
type Result struct {
	UsersCreated      int
	UsersSkipped      int
	WorkOrdersCreated int
	UpdatesCreated    int
}

// Parse decodes a fixture. Unknown keys are rejected.
func Parse(data []byte) (*Fixture, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("seed: fixture is empty")
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var fx Fixture
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("seed: decode fixture: %w", err)
	}
	return &fx, nil
}

// LoadFile reads and decodes a fixture file.
func LoadFile(path string) (*Fixture, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}
	fx, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("seed: %s: %w", path, err)
	}
	return fx, nil
}

// Apply registers users (skipping ones that already exist) and then creates
// the work orders with their updates in document order.
func Apply(ctx context.Context, fx *Fixture, svc Services, logger *zap.Logger) (Result, error) {
	var res Result

	for _, u := range fx.Users {
		_, err := svc.Auth.Register(ctx, service.RegisterInput{Username: u.Username, Email: u.Email, Password: u.Password})
		switch {
		case apperrors.IsCode(err, apperrors.CodeConflict):
			logger.Info("seed user exists; skipping", zap.String("username", u.Username))
			res.UsersSkipped++
		case err != nil:
			return res, fmt.Errorf("seed: register %q: %w", u.Username, err)
		default:
			res.UsersCreated++
		}
	}

	for i, wo := range fx.WorkOrders {
		actor, err := lookupUser(ctx, svc.Users, wo.CreatedBy)
		if err != nil {
			return res, fmt.Errorf("seed: work order %d created_by: %w", i, err)
		}

		input := service.WorkOrderCreateInput{
			Title:       wo.Title,
			Description: wo.Description,
			Priority:    domain.WorkOrderPriority(wo.Priority),
			Status:      domain.WorkOrderStatus(wo.Status),
		}
		if wo.Assignee != "" {
			assignee, err := lookupUser(ctx, svc.Users, wo.Assignee)
			if err != nil {
				return res, fmt.Errorf("seed: work order %d assignee: %w", i, err)
			}
			input.AssignedUserID = &assignee.ID
		}

		order, err := svc.WorkOrders.Create(ctx, actor, input)
		if err != nil {
			return res, fmt.Errorf("seed: work order %d: %w", i, err)
		}
		res.WorkOrdersCreated++

		for _, up := range wo.Updates {
			author, err := lookupUser(ctx, svc.Users, up.Author)
			if err != nil {
				return res, fmt.Errorf("seed: %s update author: %w", order.Number, err)
			}
			if _, err := svc.Updates.AddUpdate(ctx, author, order.ID, up.Description); err != nil {
				return res, fmt.Errorf("seed: %s update: %w", order.Number, err)
			}
			res.UpdatesCreated++
		}
	}

	logger.Info("seed applied",
		zap.Int("users_created", res.UsersCreated),
		zap.Int("users_skipped", res.UsersSkipped),
		zap.Int("work_orders_created", res.WorkOrdersCreated),
		zap.Int("updates_created", res.UpdatesCreated),
	)
	return res, nil
}

func lookupUser(ctx context.Context, users *service.UserService, username string) (*domain.User, error) {
	if username == "" {
		return nil, errors.New("username is required")
	}
	user, err := users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("unknown user %q", username)
	}
	return user, err
}
