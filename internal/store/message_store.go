package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mailyard/mailyard/internal/email"
)

// maxSubjectChars bounds stored subjects, matching the RFC 5322 line-length
// convention for the field.
const maxSubjectChars = 998

// Defaults applied to attachments missing metadata.
const (
	defaultAttachmentName = "attachment"
	defaultMimeType       = "application/octet-stream"
)

// SaveMessage writes the physical message and all of its child rows (headers,
// body, recipients, attachments) inside a single transaction. If any insert
// fails the whole aggregate is rolled back; there is no partial commit.
// Blob keys for the HTML body and attachment content are generated here and
// returned so the caller can hand the bytes to external storage.
func (s *SQLiteStore) SaveMessage(ctx context.Context, msg *email.Message, opts SaveOptions) (SaveResult, error) {
	var result SaveResult

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Physical message row. The raw source key is an opaque token for the
	// externally archived wire bytes.
	result.RawSourceKey = "raw/" + uuid.NewString()

	var threadID any
	if opts.ThreadID != nil {
		threadID = *opts.ThreadID
	}
	var subject any
	if msg.Subject != "" {
		subject = truncate(msg.Subject, maxSubjectChars)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO physical_messages (
			raw_source_key, message_hash, subject, received_at, thread_id
		) VALUES (?, ?, ?, ?, ?)`,
		result.RawSourceKey, opts.Hash, subject, opts.ReceivedAt.UTC(), threadID,
	)
	if err != nil {
		return SaveResult{}, fmt.Errorf("inserting physical message: %w", err)
	}
	messageID, err := res.LastInsertId()
	if err != nil {
		return SaveResult{}, fmt.Errorf("reading new message id: %w", err)
	}
	result.MessageID = messageID

	// Headers, every occurrence preserved.
	if len(msg.Headers) > 0 {
		stmt, err := tx.PreparexContext(ctx, `
			INSERT INTO message_headers (physical_message_id, header_name, header_value)
			VALUES (?, ?, ?)`)
		if err != nil {
			return SaveResult{}, fmt.Errorf("preparing header insert: %w", err)
		}
		defer stmt.Close()

		for _, h := range msg.Headers {
			if _, err := stmt.ExecContext(ctx, messageID, h.Name, h.Value); err != nil {
				return SaveResult{}, fmt.Errorf("inserting header %q: %w", h.Name, err)
			}
		}
	}

	// Exactly one body row. The HTML key is derived from the message id so
	// it is recomputable by consumers.
	var bodyText any
	if msg.TextBody != "" {
		bodyText = msg.TextBody
	}
	var htmlKey any
	if msg.HasHTML() {
		result.BodyHTMLKey = fmt.Sprintf("html/%d", messageID)
		htmlKey = result.BodyHTMLKey
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO message_bodies (physical_message_id, body_text, body_html_key)
		VALUES (?, ?, ?)`,
		messageID, bodyText, htmlKey,
	); err != nil {
		return SaveResult{}, fmt.Errorf("inserting body: %w", err)
	}

	// One recipient row per To/Cc address.
	for _, r := range msg.Recipients {
		var name any
		if r.Name != "" {
			name = r.Name
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO message_recipients (physical_message_id, recipient_email, recipient_name, recipient_type)
			VALUES (?, ?, ?, ?)`,
			messageID, r.Address, name, string(r.Class),
		); err != nil {
			return SaveResult{}, fmt.Errorf("inserting recipient %q: %w", r.Address, err)
		}
	}

	// Attachment records; bytes go to blob storage under the generated keys.
	for i, att := range msg.Attachments {
		filename := att.Filename
		if filename == "" {
			filename = defaultAttachmentName
		}
		mimeType := att.ContentType
		if mimeType == "" {
			mimeType = defaultMimeType
		}
		size := att.Size
		if size < 0 {
			size = 0
		}
		key := "attachments/" + uuid.NewString()

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO attachments (physical_message_id, filename, mime_type, file_size_bytes, storage_key)
			VALUES (?, ?, ?, ?, ?)`,
			messageID, filename, mimeType, size, key,
		); err != nil {
			return SaveResult{}, fmt.Errorf("inserting attachment %d: %w", i, err)
		}
		result.AttachmentKeys = append(result.AttachmentKeys, key)
	}

	if err := tx.Commit(); err != nil {
		return SaveResult{}, fmt.Errorf("committing message: %w", err)
	}

	return result, nil
}

// truncate bounds s to at most n characters.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
