package testsupport

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/goliatone/go-wiki/internal/storage"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
)

// NewSQLiteMemoryDB opens a private in-memory sqlite database.
func NewSQLiteMemoryDB(name string) (*sql.DB, error) {
	return sql.Open("sqlite3", "file:"+name+"?mode=memory&cache=shared")
}

// NewBunSQLiteDB returns a bun database named after the running test with
// the wiki schema applied. The database is closed on cleanup.
func NewBunSQLiteDB(tb testing.TB) *bun.DB {
	tb.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(tb.Name())
	sqlDB, err := NewSQLiteMemoryDB(name)
	if err != nil {
		tb.Fatalf("new sqlite db: %v", err)
	}
	db, err := storage.NewDB(sqlDB, storage.DialectSQLite)
	if err != nil {
		tb.Fatalf("new bun db: %v", err)
	}
	db.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = db.Close() })

	if err := storage.CreateSchema(context.Background(), db); err != nil {
		tb.Fatalf("create schema: %v", err)
	}
	return db
}
