package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-wiki/internal/pages"
	"github.com/goliatone/go-wiki/internal/webs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

var (
	ErrDialectUnknown = errors.New("storage: unknown dialect")
	ErrDSNRequired    = errors.New("storage: dsn is required")
)

// Open connects to a sqlite database through mattn/go-sqlite3. Postgres
// connections are opened by the host and passed to NewDB.
func Open(dsn string) (*bun.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, ErrDSNRequired
	}
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}
	db, err := NewDB(sqlDB, DialectSQLite)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	// sqlite serialises writers; a single connection also keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)
	return db, nil
}

// NewDB wraps an open connection with the bun dialect named by dialect.
func NewDB(sqlDB *sql.DB, dialect string) (*bun.DB, error) {
	d, err := resolveDialect(dialect)
	if err != nil {
		return nil, err
	}
	return bun.NewDB(sqlDB, d), nil
}

func resolveDialect(name string) (schema.Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", DialectSQLite, "sqlite3":
		return sqlitedialect.New(), nil
	case DialectPostgres, "pg":
		return pgdialect.New(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrDialectUnknown, name)
	}
}

// Models lists every table managed by the wiki.
func Models() []any {
	return []any{
		(*webs.Web)(nil),
		(*pages.Page)(nil),
		(*pages.Revision)(nil),
	}
}

// CreateSchema creates the wiki tables and lookup indexes when missing.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return errors.New("storage: database is required")
	}
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("storage: create table %T: %w", model, err)
		}
	}

	indexes := []struct {
		model   any
		name    string
		columns []string
	}{
		{(*pages.Page)(nil), "wiki_pages_web_name_idx", []string{"web_id", "name"}},
		{(*pages.Revision)(nil), "wiki_revisions_page_number_idx", []string{"page_id", "number"}},
	}
	for _, idx := range indexes {
		if _, err := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.columns...).
			Unique().
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("storage: create index %s: %w", idx.name, err)
		}
	}
	return nil
}
