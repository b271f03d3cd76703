// Package databasetest provides an in-memory database for tests.
package databasetest

import (
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/CrowderSoup/todo-collab/database"
)

// NewTestDB opens an in-memory database on the pure Go driver with all
// migrations applied. It is closed automatically when the test completes.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.Open(database.DriverPure, ":memory:")
	if err != nil {
		t.Fatalf("creating test database: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("closing test database: %v", err)
		}
	})

	return db
}
