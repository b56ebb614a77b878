// Package testdb opens migrated in-memory SQLite databases for tests.
package testdb

import (
	"context"
	"testing"

	"github.com/reviewfunnel/funnel/infrastructure/persistence"
	"github.com/reviewfunnel/funnel/internal/database"
)

const memoryURL = "sqlite:///:memory:"

// New returns a fresh database with every table migrated. It is closed when
// the test ends.
func New(t testing.TB) database.Database {
	t.Helper()
	db := NewPlain(t)
	if err := persistence.AutoMigrate(db); err != nil {
		t.Fatalf("testdb: migrate: %v", err)
	}
	return db
}

// NewPlain returns a fresh database with no schema, for tests that create
// their own tables.
func NewPlain(t testing.TB) database.Database {
	t.Helper()
	db, err := database.NewDatabase(context.Background(), memoryURL)
	if err != nil {
		t.Fatalf("testdb: open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
