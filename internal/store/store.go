// Package store persists ingested messages into a normalized relational
// model: one physical message row per received message, owning its headers,
// body, recipients, and attachments, with optional membership in a
// conversation thread keyed by normalized subject.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/mailyard/mailyard/internal/email"
)

// Thread groups physical messages sharing a canonical subject.
type Thread struct {
	ID                int64          `db:"thread_id"`
	NormalizedSubject sql.NullString `db:"normalized_subject"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

// PhysicalMessage is the single stored copy of a received message. Its child
// rows (headers, body, recipients, attachments) are owned exclusively by it
// and cascade on delete. ThreadID is a weak reference: removing a thread
// leaves its messages in place.
type PhysicalMessage struct {
	ID           int64          `db:"physical_message_id"`
	RawSourceKey string         `db:"raw_source_key"`
	MessageHash  string         `db:"message_hash"`
	Subject      sql.NullString `db:"subject"`
	ReceivedAt   time.Time      `db:"received_at"`
	ThreadID     sql.NullInt64  `db:"thread_id"`
}

// MessageHeader is one raw header field of a physical message. Duplicate
// names are distinct rows; ids preserve insertion order.
type MessageHeader struct {
	ID        int64  `db:"header_id"`
	MessageID int64  `db:"physical_message_id"`
	Name      string `db:"header_name"`
	Value     string `db:"header_value"`
}

// MessageBody is the one-to-one body row of a physical message. Large HTML
// content lives in external blob storage; only its retrieval key is stored.
type MessageBody struct {
	MessageID   int64          `db:"physical_message_id"`
	BodyText    sql.NullString `db:"body_text"`
	BodyHTMLKey sql.NullString `db:"body_html_key"`
}

// MessageRecipient is one To or Cc address of a physical message.
type MessageRecipient struct {
	ID        int64          `db:"recipient_id"`
	MessageID int64          `db:"physical_message_id"`
	Email     string         `db:"recipient_email"`
	Name      sql.NullString `db:"recipient_name"`
	Type      string         `db:"recipient_type"`
}

// Attachment is one stored attachment record; the bytes themselves live in
// external blob storage under StorageKey.
type Attachment struct {
	ID         int64  `db:"attachment_id"`
	MessageID  int64  `db:"physical_message_id"`
	Filename   string `db:"filename"`
	MimeType   string `db:"mime_type"`
	SizeBytes  int64  `db:"file_size_bytes"`
	StorageKey string `db:"storage_key"`
}

// SaveOptions carries the precomputed ingestion results into SaveMessage.
type SaveOptions struct {
	// Hash is the deduplication fingerprint of the message.
	Hash string

	// ThreadID is the resolved conversation thread, nil for unthreaded
	// messages.
	ThreadID *int64

	// ReceivedAt is the message timestamp, already defaulted to the
	// processing time by the caller when the message supplied none.
	ReceivedAt time.Time
}

// SaveResult reports the identifiers and blob keys generated while saving a
// message. The caller hands the corresponding content to blob storage.
type SaveResult struct {
	MessageID    int64
	RawSourceKey string

	// BodyHTMLKey is the blob key for the HTML body, empty when the
	// message had none.
	BodyHTMLKey string

	// AttachmentKeys holds one blob key per attachment, in order.
	AttachmentKeys []string
}

// Store is the persistence contract for the ingestion pipeline.
type Store interface {
	// ResolveThread finds the thread whose normalized subject matches
	// exactly, bumping its activity timestamp, or creates it. A creation
	// race lost to a concurrent ingestion is treated as the found case.
	ResolveThread(ctx context.Context, normalizedSubject string) (int64, error)

	// SaveMessage writes the physical message and all of its child rows
	// as one transaction. No partial aggregate survives a failure.
	SaveMessage(ctx context.Context, msg *email.Message, opts SaveOptions) (SaveResult, error)
}
