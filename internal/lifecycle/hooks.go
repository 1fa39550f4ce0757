package lifecycle

import (
	"context"
	"errors"
)

// ErrDraining is reported by readiness once shutdown has begun.
var ErrDraining = errors.New("shutting down")

// Hook describes a named shutdown hook.
type Hook struct {
	Name string
	Fn   func(ctx context.Context) error
}
