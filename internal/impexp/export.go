package impexp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lifelog-dev/lifelog/internal/app"
	"github.com/lifelog-dev/lifelog/internal/blob"
	"github.com/lifelog-dev/lifelog/pkg/types"
)

// ConfirmFunc decides whether an import may create the categories it
// references that do not exist yet. Returning false aborts the import.
type ConfirmFunc func(missing []string) bool

// Engine orchestrates import and export over the assembled stores.
type Engine struct {
	app     *app.App
	confirm ConfirmFunc
	log     *slog.Logger
}

// New returns an Engine. A nil confirm accepts category creation
// unconditionally; interactive callers inject a prompt instead.
func New(a *app.App, confirm ConfirmFunc, log *slog.Logger) *Engine {
	if confirm == nil {
		confirm = func([]string) bool { return true }
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{app: a, confirm: confirm, log: log}
}

// Export writes the family's current collection as an envelope to w.
// For attachment-bearing families every blob reference is resolved back to
// its inline payload first: an export file must be self-contained, never
// referencing a blob the recipient cannot see.
func (e *Engine) Export(ctx context.Context, f types.Family, w io.Writer) error {
	env, err := e.buildEnvelope(ctx, f)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return fmt.Errorf("encoding %s export: %w", f, err)
	}
	return nil
}

// ExportToFile writes the export under its canonical name inside dir and
// returns the full path.
func (e *Engine) ExportToFile(ctx context.Context, f types.Family, dir string) (string, error) {
	path := filepath.Join(dir, ExportFileName(f))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	if err := e.Export(ctx, f, file); err != nil {
		file.Close()
		os.Remove(path)
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("closing export file: %w", err)
	}
	return path, nil
}

func (e *Engine) buildEnvelope(ctx context.Context, f types.Family) (any, error) {
	version, date := ExportVersion, types.NowISO()
	switch f {
	case types.FamilyLedger:
		expenses, incomes := e.app.Expenses.Load(), e.app.Incomes.Load()
		return &ledgerEnvelope{
			Version: version, ExportDate: date,
			Expenses: expenses, Incomes: incomes,
			TotalExpenses: len(expenses), TotalIncomes: len(incomes),
		}, nil
	case types.FamilySleep:
		recs := e.app.Sleep.Load()
		return &sleepEnvelope{
			Version: version, ExportDate: date,
			SleepRecords: recs, TotalRecords: len(recs),
		}, nil
	case types.FamilyDaily:
		recs := e.app.Daily.Load()
		return &dailyEnvelope{
			Version: version, ExportDate: date,
			DailyRecords: recs, TotalRecords: len(recs),
		}, nil
	case types.FamilyDiary:
		recs, err := resolveInline(ctx, e.app.Blobs, e.app.Diaries.Load(), e.log)
		if err != nil {
			return nil, err
		}
		return &diaryEnvelope{
			Version: version, ExportDate: date,
			Diaries: recs, TotalDiaries: len(recs),
		}, nil
	case types.FamilyReading:
		recs, err := resolveInline(ctx, e.app.Blobs, e.app.Readings.Load(), e.log)
		if err != nil {
			return nil, err
		}
		return &readingEnvelope{
			Version: version, ExportDate: date,
			Readings: recs, TotalReadings: len(recs),
		}, nil
	case types.FamilyMusic:
		recs, err := resolveInline(ctx, e.app.Blobs, e.app.Music.Load(), e.log)
		if err != nil {
			return nil, err
		}
		return &musicEnvelope{
			Version: version, ExportDate: date,
			MusicLogs: recs, TotalMusicLogs: len(recs),
		}, nil
	}
	return nil, types.ErrUnknownFamily
}

// attachPtr constrains PT to be a pointer to T that satisfies Attachable,
// so helpers can copy records by value without mutating the stored ones.
type attachPtr[T any] interface {
	types.Attachable
	*T
}

// resolveInline returns copies of recs with every blob reference replaced
// by its inline payload. A reference whose blob has gone missing is
// exported without an image rather than failing the whole export.
func resolveInline[T any, PT attachPtr[T]](ctx context.Context, blobs *blob.Store, recs []PT, log *slog.Logger) ([]PT, error) {
	out := make([]PT, 0, len(recs))
	for _, rec := range recs {
		val := *rec
		cp := PT(&val)
		if id := cp.AttachmentID(); id != "" {
			data, err := blobs.Get(ctx, id)
			switch {
			case errors.Is(err, types.ErrBlobNotFound):
				log.Warn("blob missing during export, record exported without image",
					"id", id)
				cp.SetAttachmentID("")
			case err != nil:
				return nil, fmt.Errorf("resolving attachment %s: %w", id, err)
			default:
				cp.SetInlineImage(data)
				cp.SetAttachmentID("")
			}
		}
		out = append(out, cp)
	}
	return out, nil
}
