// Package ingest drives the ingestion of one parsed message: fingerprinting,
// thread resolution, and transactional persistence, reporting an
// accept/reject decision back to the transport.
package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/mailyard/mailyard/internal/blob"
	"github.com/mailyard/mailyard/internal/email"
	"github.com/mailyard/mailyard/internal/store"
)

// Ingestion states. Every message walks Received → Hashing → Threading →
// Persisting → Accepted, or drops to Rejected at the failing step. There is
// no partial acceptance: persistence fully succeeds or the message is
// rejected.
const (
	stateReceived = iota
	stateHashing
	stateThreading
	statePersisting
	stateAccepted
	stateRejected
)

var stateNames = map[int]string{
	stateReceived:   "received",
	stateHashing:    "hashing",
	stateThreading:  "threading",
	statePersisting: "persisting",
	stateAccepted:   "accepted",
	stateRejected:   "rejected",
}

// defaultThreadRetries bounds how many times thread resolution is retried on
// storage errors before the message is rejected.
const defaultThreadRetries = 3

// threadRetryDelay is the pause between thread resolution retries.
const threadRetryDelay = 50 * time.Millisecond

// Storage is the persistence contract the coordinator drives.
type Storage interface {
	ResolveThread(ctx context.Context, normalizedSubject string) (int64, error)
	SaveMessage(ctx context.Context, msg *email.Message, opts store.SaveOptions) (store.SaveResult, error)
}

// CoordinatorConfig holds the dependencies of a Coordinator. Storage is
// required; Blobs defaults to a discard store, Now to time.Now, and
// ThreadRetries to 3.
type CoordinatorConfig struct {
	Storage       Storage
	Blobs         blob.Store
	ThreadRetries int

	// Now supplies the processing time, replaceable in tests.
	Now func() time.Time
}

// Coordinator runs the ingestion state machine. It holds no per-message
// state, so one instance serves any number of concurrent sessions.
type Coordinator struct {
	storage       Storage
	blobs         blob.Store
	threadRetries int
	now           func() time.Time
}

// NewCoordinator creates a Coordinator with the given configuration.
func NewCoordinator(cfg CoordinatorConfig) *Coordinator {
	if cfg.Blobs == nil {
		cfg.Blobs = blob.NewDiscard()
	}
	if cfg.ThreadRetries <= 0 {
		cfg.ThreadRetries = defaultThreadRetries
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Coordinator{
		storage:       cfg.Storage,
		blobs:         cfg.Blobs,
		threadRetries: cfg.ThreadRetries,
		now:           cfg.Now,
	}
}

// Ingest processes one parsed message to completion and returns the new
// physical message id. A returned *Error carries the failure classification
// the transport needs to pick its protocol response.
func (c *Coordinator) Ingest(ctx context.Context, msg *email.Message) (int64, error) {
	st := stateReceived

	if msg.From == "" {
		return 0, c.reject(st, malformed("message has no sender address"))
	}
	if len(msg.Recipients) == 0 {
		return 0, c.reject(st, malformed("message has no recipients"))
	}

	// Hashing. Cannot fail; empty subject hashes as the empty string.
	st = stateHashing
	receivedAt := msg.Date
	if receivedAt.IsZero() {
		receivedAt = c.now()
	}
	receivedAt = receivedAt.UTC()
	hash := Fingerprint(msg.From, msg.Subject, receivedAt.Format(time.RFC3339))

	// Threading. Messages without a usable subject stay unthreaded and skip
	// the storage round-trip entirely.
	st = stateThreading
	var threadID *int64
	if normalized, ok := NormalizeSubject(msg.Subject); ok {
		id, err := c.resolveThread(ctx, normalized)
		if err != nil {
			return 0, c.reject(st, storageFailure(err))
		}
		threadID = &id
	}

	// Persisting. One transaction; any failure leaves no partial aggregate.
	// A thread created above may be left behind empty, which is harmless.
	st = statePersisting
	result, err := c.storage.SaveMessage(ctx, msg, store.SaveOptions{
		Hash:       hash,
		ThreadID:   threadID,
		ReceivedAt: receivedAt,
	})
	if err != nil {
		return 0, c.reject(st, storageFailure(err))
	}

	st = stateAccepted
	c.storeContent(ctx, msg, result)

	slog.Info("message ingested",
		"message_id", result.MessageID,
		"from", msg.From,
		"recipients", len(msg.Recipients),
		"attachments", len(msg.Attachments),
		"threaded", threadID != nil,
	)
	return result.MessageID, nil
}

// resolveThread retries thread resolution up to the bounded retry count on
// storage errors before giving up.
func (c *Coordinator) resolveThread(ctx context.Context, normalized string) (int64, error) {
	var lastErr error
	for attempt := 1; attempt <= c.threadRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(threadRetryDelay):
			}
		}

		id, err := c.storage.ResolveThread(ctx, normalized)
		if err == nil {
			return id, nil
		}
		lastErr = err
		slog.Warn("thread resolution failed",
			"attempt", attempt,
			"error", err,
		)
	}
	return 0, lastErr
}

// storeContent hands the HTML body and attachment bytes to the blob store
// under the keys the persister generated. The message is already committed;
// blob errors are logged, not surfaced, since the keys stay resolvable later.
func (c *Coordinator) storeContent(ctx context.Context, msg *email.Message, result store.SaveResult) {
	if result.BodyHTMLKey != "" {
		if err := c.blobs.Put(ctx, result.BodyHTMLKey, []byte(msg.HTMLBody)); err != nil {
			slog.Error("storing html body failed",
				"backend", c.blobs.Name(),
				"key", result.BodyHTMLKey,
				"error", err,
			)
		}
	}

	for i, att := range msg.Attachments {
		if i >= len(result.AttachmentKeys) {
			break
		}
		if err := c.blobs.Put(ctx, result.AttachmentKeys[i], att.Content); err != nil {
			slog.Error("storing attachment failed",
				"backend", c.blobs.Name(),
				"key", result.AttachmentKeys[i],
				"filename", att.Filename,
				"error", err,
			)
		}
	}
}

// reject logs the failed step and returns the classified error.
func (c *Coordinator) reject(st int, err error) error {
	slog.Warn("message rejected",
		"state", stateNames[st],
		"error", err,
	)
	return err
}
