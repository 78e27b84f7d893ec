package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ResolveThread finds the thread whose normalized subject equals
// normalizedSubject exactly, bumping its activity timestamp, or creates a new
// thread when none exists. The lookup-then-insert sequence can race with a
// concurrent ingestion of the same new subject; the unique index on
// normalized_subject makes the loser's insert fail, and that conflict is
// recovered by re-querying and treating the existing row as found.
func (s *SQLiteStore) ResolveThread(ctx context.Context, normalizedSubject string) (int64, error) {
	now := s.now().UTC()

	id, err := s.findAndTouchThread(ctx, normalizedSubject)
	switch {
	case err == nil:
		return id, nil
	case !errors.Is(err, sql.ErrNoRows):
		return 0, err
	}

	res, insertErr := s.db.ExecContext(ctx,
		"INSERT INTO threads (normalized_subject, created_at, updated_at) VALUES (?, ?, ?)",
		normalizedSubject, now, now)
	if insertErr == nil {
		newID, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("reading new thread id: %w", err)
		}
		return newID, nil
	}

	// The insert most likely lost a creation race on the unique index;
	// whoever won holds the row now.
	id, err = s.findAndTouchThread(ctx, normalizedSubject)
	if err != nil {
		return 0, fmt.Errorf("creating thread %q: %w", normalizedSubject, insertErr)
	}
	return id, nil
}

// findAndTouchThread looks up a thread by exact normalized subject and bumps
// its updated_at. Returns sql.ErrNoRows unchanged when absent.
func (s *SQLiteStore) findAndTouchThread(ctx context.Context, normalizedSubject string) (int64, error) {
	var id int64
	err := s.db.GetContext(ctx, &id,
		"SELECT thread_id FROM threads WHERE normalized_subject = ?", normalizedSubject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, err
		}
		return 0, fmt.Errorf("looking up thread %q: %w", normalizedSubject, err)
	}

	if _, err := s.db.ExecContext(ctx,
		"UPDATE threads SET updated_at = ? WHERE thread_id = ?", s.now().UTC(), id); err != nil {
		return 0, fmt.Errorf("bumping thread %d: %w", id, err)
	}
	return id, nil
}
