package webs

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewWebRepository creates the generic bun repository for web records,
// keyed by address.
func NewWebRepository(db *bun.DB) repository.Repository[*Web] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Web]{
		NewRecord: func() *Web { return &Web{} },
		GetID: func(web *Web) uuid.UUID {
			return web.ID
		},
		SetID: func(web *Web, id uuid.UUID) {
			web.ID = id
		},
		GetIdentifier: func() string {
			return "address"
		},
		GetIdentifierValue: func(web *Web) string {
			return web.Address
		},
	})
}
