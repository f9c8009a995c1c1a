package pages

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// PageRepository exposes persistence operations for pages.
type PageRepository interface {
	Create(ctx context.Context, page *Page) (*Page, error)
	Update(ctx context.Context, page *Page) (*Page, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Page, error)
	GetByName(ctx context.Context, webID uuid.UUID, name string) (*Page, error)
	ListByWeb(ctx context.Context, webID uuid.UUID) ([]*Page, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// RevisionRepository exposes persistence operations for page revisions.
type RevisionRepository interface {
	Create(ctx context.Context, revision *Revision) (*Revision, error)
	Get(ctx context.Context, pageID uuid.UUID, number int) (*Revision, error)
	ListByPage(ctx context.Context, pageID uuid.UUID) ([]*Revision, error)
}

// NotFoundError is returned when a page or revision cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	resource := e.Resource
	if resource == "" {
		resource = "page"
	}
	if e.Key == "" {
		return resource + " not found"
	}
	return fmt.Sprintf("%s %q not found", resource, e.Key)
}

// IsNotFound reports whether err carries a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
