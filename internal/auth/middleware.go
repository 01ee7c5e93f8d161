package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/blackenaxe/icom/internal/domain"
	apperrors "github.com/blackenaxe/icom/pkg/util/errorutil"
)

const (
	principalKey = "auth_principal"
	claimsKey    = "auth_claims"
)

// InvalidCredentialsMessage is the only detail a failed bearer check reveals.
const InvalidCredentialsMessage = "could not validate credentials"

// Resolver turns a bearer token into the user it was issued to.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*domain.User, *Claims, error)
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	resolver Resolver
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(resolver Resolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return apperrors.NewUnauthorized(InvalidCredentialsMessage)
	}

	user, claims, err := m.resolver.Resolve(c.UserContext(), token)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeUnauthorized) {
			return apperrors.NewUnauthorized(InvalidCredentialsMessage)
		}
		return err
	}

	c.Locals(principalKey, user)
	c.Locals(claimsKey, claims)
	return c.Next()
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// UserFromContext retrieves the authenticated user.
func UserFromContext(c *fiber.Ctx) (*domain.User, bool) {
	user, ok := c.Locals(principalKey).(*domain.User)
	return user, ok && user != nil
}

// ClaimsFromContext retrieves the claims of the token used on this request.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals(claimsKey).(*Claims)
	return claims, ok && claims != nil
}
