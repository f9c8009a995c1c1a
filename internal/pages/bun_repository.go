package pages

import (
	"context"
	"fmt"
	"strconv"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunPageRepository implements PageRepository on bun. Lookups filtered by
// query closures read from base since closures do not reach the cache key.
type BunPageRepository struct {
	repo repository.Repository[*Page]
	base repository.Repository[*Page]
}

// BunRevisionRepository implements RevisionRepository on bun.
type BunRevisionRepository struct {
	repo repository.Repository[*Revision]
	base repository.Repository[*Revision]
}

func NewBunPageRepository(db *bun.DB) *BunPageRepository {
	return NewBunPageRepositoryWithCache(db, nil, nil)
}

// NewBunPageRepositoryWithCache constructs a PageRepository backed by bun with optional caching.
func NewBunPageRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunPageRepository {
	base := NewPageRepository(db)
	return &BunPageRepository{repo: wrapWithCache(base, cacheService, keySerializer), base: base}
}

func NewBunRevisionRepository(db *bun.DB) *BunRevisionRepository {
	return NewBunRevisionRepositoryWithCache(db, nil, nil)
}

// NewBunRevisionRepositoryWithCache constructs a RevisionRepository backed by bun with optional caching.
func NewBunRevisionRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunRevisionRepository {
	base := NewRevisionRepository(db)
	return &BunRevisionRepository{repo: wrapWithCache(base, cacheService, keySerializer), base: base}
}

func (r *BunPageRepository) Create(ctx context.Context, record *Page) (*Page, error) {
	return r.repo.Create(ctx, record)
}

func (r *BunPageRepository) Update(ctx context.Context, record *Page) (*Page, error) {
	return r.repo.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns(
			"current_revision",
			"updated_at",
		),
	)
}

func (r *BunPageRepository) GetByID(ctx context.Context, id uuid.UUID) (*Page, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "page", id.String())
	}
	return result, nil
}

func (r *BunPageRepository) GetByName(ctx context.Context, webID uuid.UUID, name string) (*Page, error) {
	records, _, err := r.base.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.web_id = ?", webID).Where("?TableAlias.name = ?", name)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "page", name)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "page", Key: name}
	}
	return records[0], nil
}

func (r *BunPageRepository) ListByWeb(ctx context.Context, webID uuid.UUID) ([]*Page, error) {
	records, _, err := r.base.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.web_id = ?", webID).Order("name ASC")
	}))
	return records, err
}

func (r *BunPageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.repo.Delete(ctx, &Page{ID: id})
}

func (r *BunRevisionRepository) Create(ctx context.Context, record *Revision) (*Revision, error) {
	return r.repo.Create(ctx, record)
}

func (r *BunRevisionRepository) Get(ctx context.Context, pageID uuid.UUID, number int) (*Revision, error) {
	key := pageID.String() + "@" + strconv.Itoa(number)
	records, _, err := r.base.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.page_id = ?", pageID).Where("?TableAlias.number = ?", number)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "revision", key)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "revision", Key: key}
	}
	return records[0], nil
}

func (r *BunRevisionRepository) ListByPage(ctx context.Context, pageID uuid.UUID) ([]*Revision, error) {
	records, _, err := r.base.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.page_id = ?", pageID).Order("number ASC")
	}))
	return records, err
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}

var (
	_ PageRepository     = (*BunPageRepository)(nil)
	_ RevisionRepository = (*BunRevisionRepository)(nil)
)
