package store

import (
	"testing"
	"time"
)

// newTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// fixedClock installs a controllable clock on the store and returns a
// function advancing it.
func fixedClock(s *SQLiteStore, start time.Time) func(d time.Duration) {
	current := start
	s.now = func() time.Time { return current }
	return func(d time.Duration) { current = current.Add(d) }
}

// countRows returns the number of rows in a table.
func countRows(t *testing.T, s *SQLiteStore, table string) int {
	t.Helper()
	var n int
	if err := s.db.Get(&n, "SELECT COUNT(*) FROM "+table); err != nil {
		t.Fatalf("counting %s: %v", table, err)
	}
	return n
}
