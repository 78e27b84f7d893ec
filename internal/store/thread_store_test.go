package store

import (
	"context"
	"testing"
	"time"
)

func TestResolveThreadCreatesOnFirstUse(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.ResolveThread(ctx, "Hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == 0 {
		t.Fatal("expected a nonzero thread id")
	}

	th, err := s.ThreadByID(ctx, id)
	if err != nil {
		t.Fatalf("reading thread: %v", err)
	}
	if !th.NormalizedSubject.Valid || th.NormalizedSubject.String != "Hello" {
		t.Errorf("normalized subject: got %v, want %q", th.NormalizedSubject, "Hello")
	}
	if !th.CreatedAt.Equal(th.UpdatedAt) {
		t.Errorf("new thread timestamps differ: created %v, updated %v", th.CreatedAt, th.UpdatedAt)
	}
}

func TestResolveThreadFindsExistingAndBumpsActivity(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	advance := fixedClock(s, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))

	first, err := s.ResolveThread(ctx, "Hello")
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}

	advance(time.Minute)

	second, err := s.ResolveThread(ctx, "Hello")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if second != first {
		t.Fatalf("got different thread ids: %d and %d", first, second)
	}

	th, err := s.ThreadByID(ctx, first)
	if err != nil {
		t.Fatalf("reading thread: %v", err)
	}
	if !th.UpdatedAt.After(th.CreatedAt) {
		t.Errorf("updated_at not bumped: created %v, updated %v", th.CreatedAt, th.UpdatedAt)
	}
	if n := countRows(t, s, "threads"); n != 1 {
		t.Errorf("thread rows: got %d, want 1", n)
	}
}

func TestResolveThreadIsCaseSensitive(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.ResolveThread(ctx, "Hello")
	if err != nil {
		t.Fatalf("resolving %q: %v", "Hello", err)
	}
	b, err := s.ResolveThread(ctx, "hello")
	if err != nil {
		t.Fatalf("resolving %q: %v", "hello", err)
	}
	if a == b {
		t.Error("case-different subjects resolved to the same thread")
	}
}

// The unique index backs up the lookup-then-insert sequence: a direct
// duplicate insert fails, and ResolveThread falls back to the existing row.
func TestResolveThreadRecoversFromInsertConflict(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	res, err := s.db.Exec(
		"INSERT INTO threads (normalized_subject, created_at, updated_at) VALUES (?, ?, ?)",
		"Hello", now, now)
	if err != nil {
		t.Fatalf("seeding thread: %v", err)
	}
	seeded, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("seeded id: %v", err)
	}

	// A second direct insert must violate the unique index.
	if _, err := s.db.Exec(
		"INSERT INTO threads (normalized_subject, created_at, updated_at) VALUES (?, ?, ?)",
		"Hello", now, now); err == nil {
		t.Fatal("expected unique constraint violation on duplicate normalized subject")
	}

	// ResolveThread lands on the existing row rather than erroring.
	id, err := s.ResolveThread(ctx, "Hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != seeded {
		t.Errorf("got thread %d, want existing %d", id, seeded)
	}
	if n := countRows(t, s, "threads"); n != 1 {
		t.Errorf("thread rows: got %d, want 1", n)
	}
}

func TestResolveThreadAllowsManyNullSubjectsElsewhere(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	// Unthreaded messages never create a thread row, but the unique index
	// must not reject multiple NULL subjects should other writers add them.
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		if _, err := s.db.Exec(
			"INSERT INTO threads (normalized_subject, created_at, updated_at) VALUES (NULL, ?, ?)",
			now, now); err != nil {
			t.Fatalf("inserting null-subject thread %d: %v", i, err)
		}
	}
	if n := countRows(t, s, "threads"); n != 2 {
		t.Errorf("thread rows: got %d, want 2", n)
	}
}
