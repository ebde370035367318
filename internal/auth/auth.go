package auth

import (
	"context"
	"errors"
)

var (
	ErrUnauthenticated = errors.New("authentication credentials were not provided or are invalid")
	ErrForbidden       = errors.New("you do not have permission to perform this action")
)

// Caller is the authenticated user a request acts as.
type Caller struct {
	UserID  int64
	IsStaff bool
}

type callerKey struct{}

// WithCaller returns a copy of ctx carrying c.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom returns the caller stored in ctx, or ErrUnauthenticated.
func CallerFrom(ctx context.Context) (Caller, error) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	if !ok || c.UserID == 0 {
		return Caller{}, ErrUnauthenticated
	}
	return c, nil
}
