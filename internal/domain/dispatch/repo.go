package dispatch

import (
	"context"
	"errors"
)

// ErrNotFound is returned for lookups and updates against a case id that
// does not exist.
var ErrNotFound = errors.New("case not found")

type Repository interface {
	Create(ctx context.Context, c *Case) error
	GetByID(ctx context.Context, id int64) (*Case, error)
	// UpdateRouting rewrites the hospital assignment, acceptance status and
	// rejection history after a re-dispatch.
	UpdateRouting(ctx context.Context, c *Case) error
	SetAcceptanceStatus(ctx context.Context, id int64, status string) error
	List(ctx context.Context, limit int) ([]*Case, error)
	Count(ctx context.Context) (int, error)
}
