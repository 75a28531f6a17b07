package amqp

import (
	"context"
	"log/slog"

	"financas/internal/core"
	"financas/internal/docs"
)

// RecordSavedPublisher is the publishing side of Client, split out so the
// store decorator can be tested without a broker.
type RecordSavedPublisher interface {
	PublishRecordSaved(ctx context.Context, uid string, key core.MonthKey) error
}

// NotifyingStore decorates a document store, publishing a saved-month message
// after every successful write. Publish failures are logged and swallowed:
// the write already happened and archival can catch up later.
type NotifyingStore struct {
	docs.DocumentStore
	publisher RecordSavedPublisher
	logger    *slog.Logger
}

func NewNotifyingStore(store docs.DocumentStore, publisher RecordSavedPublisher, logger *slog.Logger) *NotifyingStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotifyingStore{
		DocumentStore: store,
		publisher:     publisher,
		logger:        logger.With("component", "amqp_store"),
	}
}

func (s *NotifyingStore) Set(ctx context.Context, uid string, key core.MonthKey, rec *core.MonthRecord) error {
	if err := s.DocumentStore.Set(ctx, uid, key, rec); err != nil {
		return err
	}
	if err := s.publisher.PublishRecordSaved(ctx, uid, key); err != nil {
		s.logger.Warn("failed to publish record saved message",
			"uid", uid, "month", key.String(), "error", err)
	}
	return nil
}
