package worker

import (
	"context"
	"fmt"
	"log/slog"

	"esgreporter/internal/amqp"
	"esgreporter/internal/core"
	"esgreporter/internal/sheets"
	"esgreporter/internal/storage"
)

// MirrorWorker copies recorded entries from the metric store into the
// spreadsheet mirror. Writes are idempotent per entry ID so redelivered
// messages do not duplicate rows.
type MirrorWorker struct {
	entries storage.EntryStore
	mirror  sheets.EntryMirror
}

func NewMirrorWorker(entries storage.EntryStore, mirror sheets.EntryMirror) *MirrorWorker {
	return &MirrorWorker{entries: entries, mirror: mirror}
}

// HandleEntryRecorded processes one entry.recorded message. Messages with an
// unknown kind and entries that no longer resolve are dropped; any other
// failure is returned so the message is requeued.
func (w *MirrorWorker) HandleEntryRecorded(ctx context.Context, msg *amqp.EntryRecordedMessage) error {
	slog.InfoContext(ctx, "Processing entry message",
		"entry_id", msg.EntryID,
		"kind", msg.Kind)

	kind, err := core.ParseMetricKind(msg.Kind)
	if err != nil {
		slog.WarnContext(ctx, "Unknown metric kind, dropping message",
			"entry_id", msg.EntryID,
			"kind", msg.Kind)
		return nil
	}

	entry, err := w.entries.GetEntry(ctx, msg.EntryID)
	if core.IsNotFound(err) {
		slog.WarnContext(ctx, "Entry not found in store, dropping message",
			"entry_id", msg.EntryID,
			"timestamp", msg.Timestamp)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get entry from storage: %w", err)
	}
	if entry.Kind != kind {
		slog.WarnContext(ctx, "Message kind differs from stored entry, using stored kind",
			"entry_id", entry.ID,
			"message_kind", kind,
			"stored_kind", entry.Kind)
	}

	_, err = w.mirrorEntry(ctx, entry)
	return err
}

// Backfill mirrors every stored entry of the company that the spreadsheet
// does not have yet. It recovers from messages lost while the worker was
// down.
func (w *MirrorWorker) Backfill(ctx context.Context, companyID string) error {
	var synced, skipped, failed int

	for _, kind := range core.Kinds() {
		entries, err := w.entries.RecentEntries(ctx, companyID, kind, 0)
		if err != nil {
			return fmt.Errorf("list %s entries for backfill: %w", kind, err)
		}
		for _, e := range entries {
			written, err := w.mirrorEntry(ctx, e)
			switch {
			case err != nil:
				slog.ErrorContext(ctx, "Failed to mirror entry during backfill",
					"entry_id", e.ID, "kind", kind, "error", err)
				failed++
			case written:
				synced++
			default:
				skipped++
			}
		}
	}

	slog.InfoContext(ctx, "Backfill completed",
		"company_id", companyID,
		"synced", synced,
		"already_present", skipped,
		"errors", failed)

	if failed > 0 {
		return fmt.Errorf("backfill: %d entries failed", failed)
	}
	return nil
}

// mirrorEntry appends e unless it is already mirrored. written reports
// whether a row was added.
func (w *MirrorWorker) mirrorEntry(ctx context.Context, e core.Entry) (written bool, err error) {
	exists, err := w.mirror.HasEntry(ctx, e.Kind, e.ID)
	if err != nil {
		return false, fmt.Errorf("check mirror for entry %s: %w", e.ID, err)
	}
	if exists {
		slog.DebugContext(ctx, "Entry already mirrored", "entry_id", e.ID)
		return false, nil
	}

	ref, err := w.mirror.AppendEntry(ctx, e)
	if err != nil {
		return false, fmt.Errorf("append to sheets: %w", err)
	}

	slog.InfoContext(ctx, "Mirrored entry",
		"entry_id", e.ID,
		"kind", e.Kind,
		"sheets_ref", ref,
		"amount", e.Amount)

	return true, nil
}
