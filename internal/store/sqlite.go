package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB

	// now is the clock used for thread timestamps, replaceable in tests.
	now func() time.Time
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode and foreign keys, and runs any pending schema migrations.
// Both pragmas are connection-scoped, so they ride in the DSN and apply to
// every connection the pool opens, not just the first.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// MessageByID retrieves a single physical message row.
func (s *SQLiteStore) MessageByID(ctx context.Context, id int64) (*PhysicalMessage, error) {
	var msg PhysicalMessage
	err := s.db.GetContext(ctx, &msg,
		"SELECT * FROM physical_messages WHERE physical_message_id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("getting message %d: %w", id, err)
	}
	return &msg, nil
}

// ThreadByID retrieves a single thread row.
func (s *SQLiteStore) ThreadByID(ctx context.Context, id int64) (*Thread, error) {
	var th Thread
	err := s.db.GetContext(ctx, &th,
		"SELECT * FROM threads WHERE thread_id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("getting thread %d: %w", id, err)
	}
	return &th, nil
}

// ThreadBySubject retrieves the thread with the exact normalized subject.
func (s *SQLiteStore) ThreadBySubject(ctx context.Context, normalizedSubject string) (*Thread, error) {
	var th Thread
	err := s.db.GetContext(ctx, &th,
		"SELECT * FROM threads WHERE normalized_subject = ?", normalizedSubject)
	if err != nil {
		return nil, fmt.Errorf("getting thread %q: %w", normalizedSubject, err)
	}
	return &th, nil
}

// HeadersByMessage retrieves a message's header rows in insertion order.
func (s *SQLiteStore) HeadersByMessage(ctx context.Context, messageID int64) ([]MessageHeader, error) {
	var headers []MessageHeader
	err := s.db.SelectContext(ctx, &headers,
		"SELECT * FROM message_headers WHERE physical_message_id = ? ORDER BY header_id", messageID)
	if err != nil {
		return nil, fmt.Errorf("getting headers for message %d: %w", messageID, err)
	}
	return headers, nil
}

// BodyByMessage retrieves a message's body row.
func (s *SQLiteStore) BodyByMessage(ctx context.Context, messageID int64) (*MessageBody, error) {
	var body MessageBody
	err := s.db.GetContext(ctx, &body,
		"SELECT * FROM message_bodies WHERE physical_message_id = ?", messageID)
	if err != nil {
		return nil, fmt.Errorf("getting body for message %d: %w", messageID, err)
	}
	return &body, nil
}

// RecipientsByMessage retrieves a message's recipient rows in insertion order.
func (s *SQLiteStore) RecipientsByMessage(ctx context.Context, messageID int64) ([]MessageRecipient, error) {
	var recipients []MessageRecipient
	err := s.db.SelectContext(ctx, &recipients,
		"SELECT * FROM message_recipients WHERE physical_message_id = ? ORDER BY recipient_id", messageID)
	if err != nil {
		return nil, fmt.Errorf("getting recipients for message %d: %w", messageID, err)
	}
	return recipients, nil
}

// AttachmentsByMessage retrieves a message's attachment rows in insertion order.
func (s *SQLiteStore) AttachmentsByMessage(ctx context.Context, messageID int64) ([]Attachment, error) {
	var attachments []Attachment
	err := s.db.SelectContext(ctx, &attachments,
		"SELECT * FROM attachments WHERE physical_message_id = ? ORDER BY attachment_id", messageID)
	if err != nil {
		return nil, fmt.Errorf("getting attachments for message %d: %w", messageID, err)
	}
	return attachments, nil
}
