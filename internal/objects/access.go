package objects

import (
	"context"
	"errors"

	"github.com/depotkit/depot/internal/models"
)

// Operation names a repository mutation for access decisions.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	OpRead   Operation = "read"
)

// ErrForbidden is returned when the access policy rejects an operation.
var ErrForbidden = errors.New("operation not permitted")

// AccessPolicy is consulted before every entity mutation. Authentication
// and session handling live outside the core; this is the narrow seam they
// plug into.
type AccessPolicy interface {
	Allowed(ctx context.Context, op Operation, id models.ObjectID) error
}

// AllowAll permits every operation. It is the default policy.
type AllowAll struct{}

func (AllowAll) Allowed(context.Context, Operation, models.ObjectID) error {
	return nil
}
