package webs

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// WebRepository exposes persistence operations for webs.
type WebRepository interface {
	Create(ctx context.Context, web *Web) (*Web, error)
	Update(ctx context.Context, web *Web) (*Web, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Web, error)
	GetByName(ctx context.Context, name string) (*Web, error)
	GetByAddress(ctx context.Context, address string) (*Web, error)
	List(ctx context.Context) ([]*Web, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotFoundError is returned when a web cannot be located.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return "web not found"
	}
	return fmt.Sprintf("web %q not found", e.Key)
}

// IsNotFound reports whether err carries a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
