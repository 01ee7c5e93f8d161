package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/blackenaxe/icom/internal/domain"
	"github.com/blackenaxe/icom/internal/events"
	"github.com/blackenaxe/icom/internal/repository"
	apperrors "github.com/blackenaxe/icom/pkg/util/errorutil"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 10000
	previewLength        = 80
)

// Field carries one attribute of a partial update. Set reports whether the
// client sent the attribute; a nil Value with Set means an explicit null.
type Field[T any] struct {
	Set   bool
	Value *T
}

// Present returns a Field holding v.
func Present[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: &v}
}

// Null returns a Field that was sent as an explicit null.
func Null[T any]() Field[T] {
	return Field[T]{Set: true}
}

// notFoundOr translates repository.ErrNotFound into a NotFound DomainError
// for resource; other errors pass through.
func notFoundOr(err error, resource string, id int64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return err
}

func publish(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	dispatcher.Publish(ctx, event)
}

func requireText(field, value string, max int) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", apperrors.NewValidationError(field+" is required", map[string]any{"field": field})
	}
	if utf8.RuneCountInString(trimmed) > max {
		return "", apperrors.NewValidationError(field+" is too long", map[string]any{"field": field, "max": max})
	}
	return trimmed, nil
}

func optionalText(field string, value *string, max int) (*string, error) {
	if value == nil {
		return nil, nil
	}
	if utf8.RuneCountInString(*value) > max {
		return nil, apperrors.NewValidationError(field+" is too long", map[string]any{"field": field, "max": max})
	}
	return value, nil
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if utf8.RuneCountInString(body) <= max {
		return body
	}
	runes := []rune(body)
	return string(runes[:max]) + "..."
}

// publicUser drops the password hash from a user loaded for display.
func publicUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	out := *user
	out.PasswordHash = ""
	return &out
}
