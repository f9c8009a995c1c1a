package webs

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-wiki/internal/identity"
	"github.com/google/uuid"
)

// Service manages webs and resolves the web references written in markup.
type Service interface {
	CreateWeb(ctx context.Context, input CreateWebInput) (*Web, error)
	UpdateWeb(ctx context.Context, input UpdateWebInput) (*Web, error)
	GetWeb(ctx context.Context, id uuid.UUID) (*Web, error)
	GetByName(ctx context.Context, name string) (*Web, error)
	GetByAddress(ctx context.Context, address string) (*Web, error)
	Lookup(ctx context.Context, ref string) (*Web, error)
	ListWebs(ctx context.Context) ([]*Web, error)
}

// CreateWebInput captures the fields required to register a web.
type CreateWebInput struct {
	Name      string
	Address   string
	Password  string
	Published bool
}

// UpdateWebInput captures mutable web fields. ClearPassword wins over Password.
type UpdateWebInput struct {
	ID            uuid.UUID
	Name          *string
	Password      *string
	ClearPassword bool
	Published     *bool
}

var (
	ErrWebRepositoryRequired = errors.New("webs: repository required")
	ErrWebNameRequired       = errors.New("webs: name is required")
	ErrWebAddressInvalid     = errors.New("webs: address is invalid")
	ErrWebAddressExists      = errors.New("webs: address already exists")
	ErrWebNotFound           = errors.New("webs: web not found")
)

var addressPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

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
	repo WebRepository
	now  func() time.Time
}

// NewService constructs a web service backed by repo.
func NewService(repo WebRepository, opts ...ServiceOption) Service {
	if repo == nil {
		panic(ErrWebRepositoryRequired)
	}
	s := &service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateWeb(ctx context.Context, input CreateWebInput) (*Web, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrWebNameRequired
	}

	address := normalizeAddress(input.Address)
	if address == "" {
		derived, err := DeriveAddress(name)
		if err != nil {
			return nil, errors.Join(ErrWebAddressInvalid, err)
		}
		address = derived
	}
	if err := validation.Validate(address, validation.Required, validation.Match(addressPattern)); err != nil {
		return nil, errors.Join(ErrWebAddressInvalid, err)
	}

	if existing, err := s.repo.GetByAddress(ctx, address); err == nil && existing != nil {
		return nil, ErrWebAddressExists
	} else if err != nil && !IsNotFound(err) {
		return nil, err
	}

	now := s.now().UTC()
	record := &Web{
		ID:        identity.WebUUID(address),
		Name:      name,
		Address:   address,
		Published: input.Published,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.Password != "" {
		hash, err := HashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		record.PasswordHash = &hash
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	return cloneWeb(created), nil
}

func (s *service) UpdateWeb(ctx context.Context, input UpdateWebInput) (*Web, error) {
	web, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, translateNotFound(err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrWebNameRequired
		}
		web.Name = name
	}
	switch {
	case input.ClearPassword:
		web.PasswordHash = nil
	case input.Password != nil && *input.Password != "":
		hash, err := HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		web.PasswordHash = &hash
	}
	if input.Published != nil {
		web.Published = *input.Published
	}
	web.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, web)
	if err != nil {
		return nil, err
	}
	return cloneWeb(updated), nil
}

func (s *service) GetWeb(ctx context.Context, id uuid.UUID) (*Web, error) {
	web, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return web, nil
}

func (s *service) GetByName(ctx context.Context, name string) (*Web, error) {
	return s.repo.GetByName(ctx, strings.TrimSpace(name))
}

func (s *service) GetByAddress(ctx context.Context, address string) (*Web, error) {
	return s.repo.GetByAddress(ctx, address)
}

// Lookup resolves ref by name first and by address second. When both
// keyspaces match different webs the name match wins.
func (s *service) Lookup(ctx context.Context, ref string) (*Web, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, &NotFoundError{}
	}

	web, err := s.repo.GetByName(ctx, ref)
	if err == nil {
		return web, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}
	return s.repo.GetByAddress(ctx, ref)
}

func (s *service) ListWebs(ctx context.Context) ([]*Web, error) {
	return s.repo.List(ctx)
}

func translateNotFound(err error) error {
	if IsNotFound(err) {
		return errors.Join(ErrWebNotFound, err)
	}
	return err
}
