package library

import (
	"database/sql"
	"testing"

	"github.com/vmunix/reprise/internal/migrations"
	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// A single connection keeps the in-memory database shared across queries.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := migrations.Apply(db); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}

func addTestCourse(t *testing.T, s *Store, folder string) *Course {
	t.Helper()
	c := &Course{Title: folder, OriginalTitle: folder}
	if err := s.AddCourse(c); err != nil {
		t.Fatalf("AddCourse: %v", err)
	}
	return c
}
