package pages

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Page is a named page inside a web. CurrentRevision holds the number of the
// revision rendered by default.
type Page struct {
	bun.BaseModel `bun:"table:wiki_pages,alias:p"`

	ID              uuid.UUID `bun:",pk,type:uuid" json:"id"`
	WebID           uuid.UUID `bun:"web_id,notnull,type:uuid" json:"web_id"`
	Name            string    `bun:"name,notnull" json:"name"`
	CurrentRevision int       `bun:"current_revision,notnull" json:"current_revision"`
	CreatedAt       time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Revision *Revision `bun:"-" json:"revision,omitempty"`
}

// Revision is an immutable snapshot of a page body.
type Revision struct {
	bun.BaseModel `bun:"table:wiki_revisions,alias:r"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	PageID    uuid.UUID `bun:"page_id,notnull,type:uuid" json:"page_id"`
	Number    int       `bun:"number,notnull" json:"number"`
	Content   string    `bun:"content,notnull" json:"content"`
	Author    string    `bun:"author" json:"author,omitempty"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}
