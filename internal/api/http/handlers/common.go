package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/blackenaxe/icom/internal/auth"
	"github.com/blackenaxe/icom/internal/domain"
	apperrors "github.com/blackenaxe/icom/pkg/util/errorutil"
)

func currentUser(c *fiber.Ctx) (*domain.User, error) {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized(auth.InvalidCredentialsMessage)
	}
	return user, nil
}

func idParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+name, map[string]any{"param": name, "value": c.Params(name)})
	}
	return int64(id), nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid request body", map[string]any{"reason": err.Error()})
	}
	return nil
}
