// Package migrate relocates legacy inline image payloads out of the
// primary record store and into the blob store, rewriting each record to
// hold only a reference id. A run is idempotent and safe to repeat:
// already-migrated records are skipped and previously-failed records are
// simply retried.
package migrate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lifelog-dev/lifelog/internal/blob"
	"github.com/lifelog-dev/lifelog/internal/store"
	"github.com/lifelog-dev/lifelog/pkg/types"
)

// Result summarizes one MigrateAll pass.
type Result struct {
	Total    int // records examined
	Migrated int // inline payloads moved to the blob store
	Failed   int // blob writes that failed; records left unchanged
	Skipped  int // already migrated or nothing to migrate
}

// Migrator moves one family's inline attachments into the blob store.
type Migrator[T types.Attachable] struct {
	store *store.Store[T]
	blobs *blob.Store
	log   *slog.Logger
}

// New returns a Migrator over the given record and blob stores.
func New[T types.Attachable](st *store.Store[T], blobs *blob.Store, log *slog.Logger) *Migrator[T] {
	if log == nil {
		log = slog.Default()
	}
	return &Migrator[T]{store: st, blobs: blobs, log: log}
}

// NeedsMigration reports whether any record still carries an inline image
// without a blob reference.
func (m *Migrator[T]) NeedsMigration() bool {
	for _, rec := range m.store.Load() {
		if rec.InlineImage() != "" && rec.AttachmentID() == "" {
			return true
		}
	}
	return false
}

// MigrateAll processes every record in order. For each record holding an
// inline image and no reference, the payload is written to the blob store
// under the record's own id (blob first, then the record rewrite, so a
// failure can only orphan a blob, never lose one). Records whose blob
// write fails keep their inline payload for the next run. The rewritten
// collection is persisted with one save after the pass.
func (m *Migrator[T]) MigrateAll(ctx context.Context) (Result, error) {
	recs := m.store.Load()
	res := Result{Total: len(recs)}

	for _, rec := range recs {
		switch {
		case rec.AttachmentID() != "":
			// Already migrated. A leftover inline copy from an earlier
			// interrupted run is dropped here; the blob is the source
			// of truth once the reference exists.
			if rec.InlineImage() != "" {
				rec.SetInlineImage("")
			}
			res.Skipped++
		case rec.InlineImage() == "":
			res.Skipped++
		default:
			if err := m.blobs.Save(ctx, rec.RecordID(), rec.InlineImage()); err != nil {
				m.log.Warn("attachment migration failed, will retry next run",
					"id", rec.RecordID(), "error", err)
				res.Failed++
				continue
			}
			rec.SetAttachmentID(rec.RecordID())
			rec.SetInlineImage("")
			res.Migrated++
		}
	}

	if err := m.store.Save(recs); err != nil {
		return res, fmt.Errorf("persisting migrated records: %w", err)
	}
	return res, nil
}

// SweepOrphans deletes blobs whose id is not in the referenced set.
// Blob writes happen before the referencing record write, so a failure in
// between leaves an unreferenced blob behind; the sweep reclaims those.
// Deletion is best-effort like all blob cleanup.
func SweepOrphans(ctx context.Context, blobs *blob.Store, referenced map[string]bool, log *slog.Logger) (int, error) {
	if log == nil {
		log = slog.Default()
	}
	ids, err := blobs.IDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing blobs for sweep: %w", err)
	}
	var orphans []string
	for _, id := range ids {
		if !referenced[id] {
			orphans = append(orphans, id)
		}
	}
	if len(orphans) == 0 {
		return 0, nil
	}
	blobs.DeleteMany(ctx, orphans)
	log.Info("swept orphaned blobs", "count", len(orphans))
	return len(orphans), nil
}
