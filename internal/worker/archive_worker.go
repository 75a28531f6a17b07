// Package worker copies saved month documents from the live backend into the
// SQLite archive, driven by AMQP notifications.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"financas/internal/amqp"
	"financas/internal/docs"
)

// ArchiveWorker mirrors months into a local archive. The live backend is the
// source of truth; the archive is append-or-replace, never read back by the
// app itself.
type ArchiveWorker struct {
	source  docs.DocumentStore
	archive docs.DocumentStore
}

func NewArchiveWorker(source, archive docs.DocumentStore) *ArchiveWorker {
	return &ArchiveWorker{
		source:  source,
		archive: archive,
	}
}

// HandleRecordSaved processes a single saved-month message: it fetches the
// current document from the source and writes it into the archive. A month
// that disappeared from the source is skipped, not an error.
func (w *ArchiveWorker) HandleRecordSaved(ctx context.Context, msg *amqp.RecordSavedMessage) error {
	slog.InfoContext(ctx, "Archiving month",
		"uid", msg.UserID,
		"month", msg.MonthKey.String())

	rec, err := w.source.Get(ctx, msg.UserID, msg.MonthKey)
	if err != nil {
		return fmt.Errorf("get month from source: %w", err)
	}
	if rec == nil {
		slog.WarnContext(ctx, "Month no longer in source, skipping",
			"uid", msg.UserID,
			"month", msg.MonthKey.String())
		return nil
	}

	if err := w.archive.Set(ctx, msg.UserID, msg.MonthKey, rec); err != nil {
		return fmt.Errorf("write month to archive: %w", err)
	}

	slog.InfoContext(ctx, "Month archived",
		"uid", msg.UserID,
		"month", msg.MonthKey.String(),
		"expenses", len(rec.Expenses),
		"incomes", len(rec.Incomes))

	return nil
}

// Run consumes saved-month messages until the context is cancelled.
func (w *ArchiveWorker) Run(ctx context.Context, client *amqp.Client) error {
	return client.ConsumeRecordSaved(ctx, func(msg *amqp.RecordSavedMessage) error {
		return w.HandleRecordSaved(ctx, msg)
	})
}
