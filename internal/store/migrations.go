package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
//
// Column widths that matter for compatibility: subjects are bounded to 998
// characters in code (SQLite does not enforce varchar lengths), the message
// hash is a 64-character hex digest, and recipient_type is the short code
// 'to' or 'cc'.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS threads (
	thread_id         INTEGER PRIMARY KEY AUTOINCREMENT,
	normalized_subject TEXT UNIQUE,
	created_at        DATETIME NOT NULL,
	updated_at        DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS physical_messages (
	physical_message_id INTEGER PRIMARY KEY AUTOINCREMENT,
	raw_source_key      TEXT NOT NULL,
	message_hash        TEXT NOT NULL,
	subject             TEXT,
	received_at         DATETIME NOT NULL,
	thread_id           INTEGER REFERENCES threads(thread_id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS message_headers (
	header_id           INTEGER PRIMARY KEY AUTOINCREMENT,
	physical_message_id INTEGER NOT NULL REFERENCES physical_messages(physical_message_id) ON DELETE CASCADE,
	header_name         TEXT NOT NULL,
	header_value        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS message_bodies (
	physical_message_id INTEGER PRIMARY KEY REFERENCES physical_messages(physical_message_id) ON DELETE CASCADE,
	body_text           TEXT,
	body_html_key       TEXT
);

CREATE TABLE IF NOT EXISTS message_recipients (
	recipient_id        INTEGER PRIMARY KEY AUTOINCREMENT,
	physical_message_id INTEGER NOT NULL REFERENCES physical_messages(physical_message_id) ON DELETE CASCADE,
	recipient_email     TEXT NOT NULL,
	recipient_name      TEXT,
	recipient_type      TEXT NOT NULL CHECK(recipient_type IN ('to', 'cc'))
);

CREATE TABLE IF NOT EXISTS attachments (
	attachment_id       INTEGER PRIMARY KEY AUTOINCREMENT,
	physical_message_id INTEGER NOT NULL REFERENCES physical_messages(physical_message_id) ON DELETE CASCADE,
	filename            TEXT NOT NULL,
	mime_type           TEXT NOT NULL,
	file_size_bytes     INTEGER NOT NULL CHECK(file_size_bytes >= 0),
	storage_key         TEXT NOT NULL
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_messages_thread_id ON physical_messages(thread_id);
CREATE INDEX IF NOT EXISTS idx_messages_hash ON physical_messages(message_hash);
CREATE INDEX IF NOT EXISTS idx_messages_received_at ON physical_messages(received_at);
CREATE INDEX IF NOT EXISTS idx_headers_message ON message_headers(physical_message_id);
CREATE INDEX IF NOT EXISTS idx_recipients_message ON message_recipients(physical_message_id);
CREATE INDEX IF NOT EXISTS idx_attachments_message ON attachments(physical_message_id);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
