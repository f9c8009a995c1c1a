package pages

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewPageRepository creates the generic bun repository for page records.
func NewPageRepository(db *bun.DB) repository.Repository[*Page] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Page]{
		NewRecord: func() *Page { return &Page{} },
		GetID: func(page *Page) uuid.UUID {
			return page.ID
		},
		SetID: func(page *Page, id uuid.UUID) {
			page.ID = id
		},
		GetIdentifier: func() string {
			return "name"
		},
		GetIdentifierValue: func(page *Page) string {
			return page.Name
		},
	})
}

// NewRevisionRepository creates the generic bun repository for revisions.
func NewRevisionRepository(db *bun.DB) repository.Repository[*Revision] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Revision]{
		NewRecord: func() *Revision { return &Revision{} },
		GetID: func(rev *Revision) uuid.UUID {
			return rev.ID
		},
		SetID: func(rev *Revision, id uuid.UUID) {
			rev.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(rev *Revision) string {
			return rev.ID.String()
		},
	})
}
