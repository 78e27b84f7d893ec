// Package email defines the parsed message model shared between the SMTP
// transport, the parser, and the ingestion pipeline.
package email

import "time"

// RecipientClass identifies which address field a recipient came from.
type RecipientClass string

const (
	ClassTo RecipientClass = "to"
	ClassCc RecipientClass = "cc"
)

// Recipient is a single address from the To or Cc field.
type Recipient struct {
	Address string
	Name    string // display name, may be empty
	Class   RecipientClass
}

// Header is one raw header field. Duplicate names are kept as separate
// entries in wire order.
type Header struct {
	Name  string
	Value string
}

// Attachment represents a file attached to a message. Content is carried
// in memory until it is handed to the blob store.
type Attachment struct {
	Filename    string
	ContentType string
	Size        int64
	Content     []byte
}

// Message is a fully parsed inbound message as delivered by the transport.
type Message struct {
	From        string
	Recipients  []Recipient
	Subject     string
	TextBody    string
	HTMLBody    string
	Headers     []Header
	Attachments []Attachment
	MessageID   string

	// Date is the parsed Date header; zero when the message carried none.
	Date time.Time
}

// HasHTML reports whether the message carried an HTML body part.
func (m *Message) HasHTML() bool {
	return m.HTMLBody != ""
}
