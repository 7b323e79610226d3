package store

import (
	"context"
	"errors"

	"basegraph.app/assist/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// InvocationStore defines the contract for assistant invocation history
type InvocationStore interface {
	Create(ctx context.Context, inv *model.Invocation) error
	GetByID(ctx context.Context, id int64) (*model.Invocation, error)
	// ListRecent returns the newest invocations first; an empty feature matches all.
	ListRecent(ctx context.Context, feature string, limit int32) ([]model.Invocation, error)
}
