// Package identity provides implementations of the user service port that
// resolve the acting user's external identifier.
package identity

import (
	"context"
	"errors"
)

// ErrNoUser is returned when no acting user can be resolved from the context.
var ErrNoUser = errors.New("no authenticated user")

// StaticUserService always reports one fixed external user ID. The CLI uses it
// so every invocation acts as the operator configured at startup.
type StaticUserService struct {
	userID string
}

// NewStaticUserService creates a user service pinned to the given external ID.
func NewStaticUserService(userID string) *StaticUserService {
	return &StaticUserService{userID: userID}
}

// CurrentUserID returns the configured external user ID.
func (s *StaticUserService) CurrentUserID(ctx context.Context) (string, error) {
	if s.userID == "" {
		return "", ErrNoUser
	}
	return s.userID, nil
}

type contextKey struct{}

// WithUserID returns a context carrying the acting user's external ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// ContextUserService resolves the acting user from the request context, the
// way an authentication middleware would populate it.
type ContextUserService struct{}

// NewContextUserService creates a context-backed user service.
func NewContextUserService() *ContextUserService {
	return &ContextUserService{}
}

// CurrentUserID returns the external user ID stored in the context.
func (s *ContextUserService) CurrentUserID(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(contextKey{}).(string)
	if !ok || userID == "" {
		return "", ErrNoUser
	}
	return userID, nil
}
