package webs

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunWebRepository implements WebRepository on bun with optional caching.
// Only ID and address reads go through the cache. Query closures are not
// part of the cache key, so filtered lookups use base.
type BunWebRepository struct {
	repo repository.Repository[*Web]
	base repository.Repository[*Web]
}

// NewBunWebRepository creates a web repository without caching.
func NewBunWebRepository(db *bun.DB) *BunWebRepository {
	return NewBunWebRepositoryWithCache(db, nil, nil)
}

// NewBunWebRepositoryWithCache wraps the repository with go-repository-cache
// when both cache collaborators are supplied.
func NewBunWebRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunWebRepository {
	base := NewWebRepository(db)
	repo := base
	if cacheService != nil && serializer != nil {
		repo = repositorycache.New(base, cacheService, serializer)
	}
	return &BunWebRepository{repo: repo, base: base}
}

func (r *BunWebRepository) Create(ctx context.Context, web *Web) (*Web, error) {
	return r.repo.Create(ctx, web)
}

func (r *BunWebRepository) Update(ctx context.Context, web *Web) (*Web, error) {
	return r.repo.Update(ctx, web,
		repository.UpdateByID(web.ID.String()),
		repository.UpdateColumns(
			"name",
			"password_hash",
			"published",
			"updated_at",
		),
	)
}

func (r *BunWebRepository) GetByID(ctx context.Context, id uuid.UUID) (*Web, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return record, nil
}

func (r *BunWebRepository) GetByName(ctx context.Context, name string) (*Web, error) {
	records, _, err := r.base.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.name = ?", name).Order("address ASC")
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, name)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Key: name}
	}
	return records[0], nil
}

func (r *BunWebRepository) GetByAddress(ctx context.Context, address string) (*Web, error) {
	record, err := r.repo.GetByIdentifier(ctx, normalizeAddress(address))
	if err != nil {
		return nil, mapRepositoryError(err, address)
	}
	return record, nil
}

func (r *BunWebRepository) List(ctx context.Context) ([]*Web, error) {
	records, _, err := r.base.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("name ASC").Order("address ASC")
	}))
	return records, err
}

func (r *BunWebRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.repo.Delete(ctx, &Web{ID: id})
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Key: key}
	}
	return fmt.Errorf("web repository error: %w", err)
}

var _ WebRepository = (*BunWebRepository)(nil)
