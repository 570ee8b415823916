// Package app assembles the lifelog storage stack: the kv medium, the
// per-family record stores, the blob store, and the taxonomy service, all
// rooted in one data directory. The CLI opens one App per invocation;
// tests open one per case.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/lifelog-dev/lifelog/internal/blob"
	"github.com/lifelog-dev/lifelog/internal/category"
	"github.com/lifelog-dev/lifelog/internal/kv"
	"github.com/lifelog-dev/lifelog/internal/migrate"
	"github.com/lifelog-dev/lifelog/internal/store"
	"github.com/lifelog-dev/lifelog/pkg/types"
)

// blobDBName is the blob store file inside the data directory.
const blobDBName = "blobs.db"

// App is the assembled storage stack.
type App struct {
	KV    *kv.Store
	Blobs *blob.Store

	Expenses *store.Store[*types.Expense]
	Incomes  *store.Store[*types.Income]
	Sleep    *store.Store[*types.Sleep]
	Daily    *store.Store[*types.Daily]
	Diaries  *store.Store[*types.Diary]
	Readings *store.Store[*types.Reading]
	Music    *store.Store[*types.Music]

	Categories *category.Service
	Log        *slog.Logger
}

// Open builds the stack over dataDir. The blob database lives alongside
// the record documents but is opened lazily, on its first use.
func Open(dataDir string, quota int64, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	medium, err := kv.Open(dataDir, quota, log)
	if err != nil {
		return nil, fmt.Errorf("opening data dir %s: %w", dataDir, err)
	}

	a := &App{
		KV:       medium,
		Blobs:    blob.New(filepath.Join(dataDir, blobDBName), log),
		Expenses: store.New[*types.Expense](medium, types.KeyExpenses, log),
		Incomes:  store.New[*types.Income](medium, types.KeyIncomes, log),
		Sleep:    store.New[*types.Sleep](medium, types.KeySleep, log),
		Daily:    store.New[*types.Daily](medium, types.KeyDaily, log),
		Diaries:  store.New[*types.Diary](medium, types.KeyDiaries, log),
		Readings: store.New[*types.Reading](medium, types.KeyReadings, log),
		Music:    store.New[*types.Music](medium, types.KeyMusic, log),
		Log:      log,
	}
	a.Categories = category.NewService(medium, a.Expenses, a.Incomes, log)
	return a, nil
}

// Close releases the blob store connection.
func (a *App) Close() error {
	return a.Blobs.Close()
}

// NeedsMigration reports whether any attachment-bearing family still holds
// legacy inline images.
func (a *App) NeedsMigration() bool {
	return migrate.New(a.Diaries, a.Blobs, a.Log).NeedsMigration() ||
		migrate.New(a.Readings, a.Blobs, a.Log).NeedsMigration() ||
		migrate.New(a.Music, a.Blobs, a.Log).NeedsMigration()
}

// MigrateAll runs the attachment migration over every attachment-bearing
// family and sums the results.
func (a *App) MigrateAll(ctx context.Context) (migrate.Result, error) {
	var total migrate.Result
	add := func(r migrate.Result, err error) error {
		total.Total += r.Total
		total.Migrated += r.Migrated
		total.Failed += r.Failed
		total.Skipped += r.Skipped
		return err
	}
	if err := add(migrate.New(a.Diaries, a.Blobs, a.Log).MigrateAll(ctx)); err != nil {
		return total, err
	}
	if err := add(migrate.New(a.Readings, a.Blobs, a.Log).MigrateAll(ctx)); err != nil {
		return total, err
	}
	if err := add(migrate.New(a.Music, a.Blobs, a.Log).MigrateAll(ctx)); err != nil {
		return total, err
	}
	return total, nil
}

// ReferencedBlobIDs collects every blob id referenced by a record, for the
// orphan sweep.
func (a *App) ReferencedBlobIDs() map[string]bool {
	refs := make(map[string]bool)
	for _, rec := range a.Diaries.Load() {
		if rec.ImageID != "" {
			refs[rec.ImageID] = true
		}
	}
	for _, rec := range a.Readings.Load() {
		if rec.ImageID != "" {
			refs[rec.ImageID] = true
		}
	}
	for _, rec := range a.Music.Load() {
		if rec.ImageID != "" {
			refs[rec.ImageID] = true
		}
	}
	return refs
}

// SweepOrphans removes blobs no record references anymore.
func (a *App) SweepOrphans(ctx context.Context) (int, error) {
	return migrate.SweepOrphans(ctx, a.Blobs, a.ReferencedBlobIDs(), a.Log)
}

// DeleteWithAttachment removes an attachment-bearing record and cleans up
// its blob best-effort, so a failed blob delete never blocks the record
// deletion.
func DeleteWithAttachment[T types.Attachable](ctx context.Context, st *store.Store[T], blobs *blob.Store, id string) error {
	rec, err := st.Get(id)
	if err != nil {
		return err
	}
	if err := st.Delete(id); err != nil {
		return err
	}
	if blobID := rec.AttachmentID(); blobID != "" {
		blobs.Delete(ctx, blobID)
	}
	return nil
}
