package pages

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-wiki/internal/identity"
	"github.com/google/uuid"
)

// Service manages pages and their revisions.
type Service interface {
	CreatePage(ctx context.Context, input CreatePageInput) (*Page, error)
	AddRevision(ctx context.Context, input AddRevisionInput) (*Page, error)
	FindPage(ctx context.Context, webID uuid.UUID, name string) (*Page, error)
	GetPage(ctx context.Context, id uuid.UUID) (*Page, error)
	ListPages(ctx context.Context, webID uuid.UUID) ([]*Page, error)
	ListRevisions(ctx context.Context, pageID uuid.UUID) ([]*Revision, error)
}

// CreatePageInput captures the first revision of a new page.
type CreatePageInput struct {
	WebID   uuid.UUID
	Name    string
	Content string
	Author  string
}

// AddRevisionInput captures a new body for an existing page.
type AddRevisionInput struct {
	PageID  uuid.UUID
	Content string
	Author  string
}

var (
	ErrPageRepositoryRequired = errors.New("pages: repository required")
	ErrPageWebRequired        = errors.New("pages: web id is required")
	ErrPageNameRequired       = errors.New("pages: name is required")
	ErrPageNameInvalid        = errors.New("pages: name must not contain brackets or colons")
	ErrPageExists             = errors.New("pages: page already exists")
)

// ServiceOption configures service behaviour.
type ServiceOption func(*service)

// WithNow overrides the time source.
func WithNow(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

type service struct {
	pages     PageRepository
	revisions RevisionRepository
	now       func() time.Time
}

// NewService constructs a page service.
func NewService(pages PageRepository, revisions RevisionRepository, opts ...ServiceOption) Service {
	if pages == nil || revisions == nil {
		panic(ErrPageRepositoryRequired)
	}
	s := &service{pages: pages, revisions: revisions, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreatePage(ctx context.Context, input CreatePageInput) (*Page, error) {
	if input.WebID == uuid.Nil {
		return nil, ErrPageWebRequired
	}
	name, err := normalizeName(input.Name)
	if err != nil {
		return nil, err
	}

	if existing, err := s.pages.GetByName(ctx, input.WebID, name); err == nil && existing != nil {
		return nil, ErrPageExists
	} else if err != nil && !IsNotFound(err) {
		return nil, err
	}

	now := s.now().UTC()
	page := &Page{
		ID:              identity.PageUUID(input.WebID, name),
		WebID:           input.WebID,
		Name:            name,
		CurrentRevision: 1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	created, err := s.pages.Create(ctx, page)
	if err != nil {
		return nil, err
	}

	revision, err := s.revisions.Create(ctx, &Revision{
		ID:        identity.RevisionUUID(created.ID, 1),
		PageID:    created.ID,
		Number:    1,
		Content:   input.Content,
		Author:    strings.TrimSpace(input.Author),
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	created.Revision = revision
	return created, nil
}

func (s *service) AddRevision(ctx context.Context, input AddRevisionInput) (*Page, error) {
	page, err := s.pages.GetByID(ctx, input.PageID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	number := page.CurrentRevision + 1
	revision, err := s.revisions.Create(ctx, &Revision{
		ID:        identity.RevisionUUID(page.ID, number),
		PageID:    page.ID,
		Number:    number,
		Content:   input.Content,
		Author:    strings.TrimSpace(input.Author),
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	page.CurrentRevision = number
	page.UpdatedAt = now
	updated, err := s.pages.Update(ctx, page)
	if err != nil {
		return nil, err
	}
	updated.Revision = revision
	return updated, nil
}

// FindPage returns the named page with its current revision loaded.
func (s *service) FindPage(ctx context.Context, webID uuid.UUID, name string) (*Page, error) {
	page, err := s.pages.GetByName(ctx, webID, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	return s.withRevision(ctx, page)
}

func (s *service) GetPage(ctx context.Context, id uuid.UUID) (*Page, error) {
	page, err := s.pages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withRevision(ctx, page)
}

func (s *service) ListPages(ctx context.Context, webID uuid.UUID) ([]*Page, error) {
	return s.pages.ListByWeb(ctx, webID)
}

func (s *service) ListRevisions(ctx context.Context, pageID uuid.UUID) ([]*Revision, error) {
	return s.revisions.ListByPage(ctx, pageID)
}

func (s *service) withRevision(ctx context.Context, page *Page) (*Page, error) {
	revision, err := s.revisions.Get(ctx, page.ID, page.CurrentRevision)
	if err != nil {
		return nil, err
	}
	page.Revision = revision
	return page, nil
}

func normalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrPageNameRequired
	}
	if strings.ContainsAny(trimmed, "[]:") {
		return "", ErrPageNameInvalid
	}
	return trimmed, nil
}
