package crew

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no crew member has the given name.
	ErrNotFound = errors.New("crew member not found")
	// ErrDuplicate is returned when the crew name is already registered.
	ErrDuplicate = errors.New("crew name already registered")
)

type Repository interface {
	Create(ctx context.Context, c *Crew) error
	GetByName(ctx context.Context, crewName string) (*Crew, error)
	Count(ctx context.Context) (int, error)
}
