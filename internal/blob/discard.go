package blob

import "context"

// Discard is a Store that drops all content. Used when no blob backend is
// configured; the database keeps the keys either way.
type Discard struct{}

// NewDiscard creates a Discard store.
func NewDiscard() *Discard {
	return &Discard{}
}

// Put discards the data.
func (*Discard) Put(context.Context, string, []byte) error {
	return nil
}

// Name returns the backend name.
func (*Discard) Name() string {
	return "discard"
}
