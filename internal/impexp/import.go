package impexp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/lifelog-dev/lifelog/internal/blob"
	"github.com/lifelog-dev/lifelog/internal/category"
	"github.com/lifelog-dev/lifelog/internal/store"
	"github.com/lifelog-dev/lifelog/internal/validate"
	"github.com/lifelog-dev/lifelog/pkg/types"
)

// Result reports the outcome of one import. Total is the number of
// records the file carried; Imported plus Skipped always equals Total.
type Result struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Total    int `json:"total"`
}

func (r Result) add(o Result) Result {
	return Result{
		Imported: r.Imported + o.Imported,
		Skipped:  r.Skipped + o.Skipped,
		Total:    r.Total + o.Total,
	}
}

// Import merges the export file at path into the family's store.
//
// The pipeline is: size gate, parse, schema validation, category gate,
// de-duplicating merge, inline-attachment migration, one save. Nothing is
// written until every record has been accepted or skipped in memory, so a
// failure at any gate leaves the store untouched.
func (e *Engine) Import(ctx context.Context, f types.Family, path string) (Result, error) {
	data, err := e.readLimited(path, f)
	if err != nil {
		return Result{}, err
	}

	// A parse failure is its own diagnostic, distinct from validation.
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return Result{}, fmt.Errorf("%w: %v", types.ErrInvalidJSON, err)
	}

	if err := validate.Envelope(f, doc); err != nil {
		return Result{}, err
	}

	switch f {
	case types.FamilyLedger:
		return e.importLedger(data)
	case types.FamilySleep:
		return importPlain(e, data, e.app.Sleep, true,
			func(env *sleepEnvelope) []*types.Sleep { return env.SleepRecords })
	case types.FamilyDaily:
		return importPlain(e, data, e.app.Daily, true,
			func(env *dailyEnvelope) []*types.Daily { return env.DailyRecords })
	case types.FamilyDiary:
		return importAttachable(ctx, e, data, e.app.Diaries, true,
			func(env *diaryEnvelope) []*types.Diary { return env.Diaries })
	case types.FamilyReading:
		return importAttachable(ctx, e, data, e.app.Readings, false,
			func(env *readingEnvelope) []*types.Reading { return env.Readings })
	case types.FamilyMusic:
		return importAttachable(ctx, e, data, e.app.Music, false,
			func(env *musicEnvelope) []*types.Music { return env.MusicLogs })
	}
	return Result{}, types.ErrUnknownFamily
}

// readLimited enforces the family's file size limit before any parsing.
func (e *Engine) readLimited(path string, f types.Family) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading import file: %w", err)
	}
	if limit := f.ImportSizeLimit(); info.Size() > limit {
		return nil, fmt.Errorf("%w: %d 字节,上限 %d 字节",
			types.ErrFileTooLarge, info.Size(), limit)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading import file: %w", err)
	}
	return data, nil
}

// importLedger merges the two-section ledger envelope. Before merging,
// categories referenced by incoming records that are missing from the
// taxonomy must be confirmed and created; declining aborts the whole
// import with nothing written.
func (e *Engine) importLedger(data []byte) (Result, error) {
	var env ledgerEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Result{}, fmt.Errorf("%w: %v", types.ErrInvalidJSON, err)
	}

	if err := e.ensureCategories(env.Expenses, env.Incomes); err != nil {
		return Result{}, err
	}

	expenses, expRes := merge(e.app.Expenses.Load(), env.Expenses, false)
	incomes, incRes := merge(e.app.Incomes.Load(), env.Incomes, false)

	// Both collections commit under one quota check, so a ledger import
	// that does not fit rejects as a whole instead of landing expenses
	// and then failing on incomes.
	expDoc, err := e.app.Expenses.Encode(expenses)
	if err != nil {
		return Result{}, err
	}
	incDoc, err := e.app.Incomes.Encode(incomes)
	if err != nil {
		return Result{}, err
	}
	if err := e.app.KV.SetMulti(map[string][]byte{
		e.app.Expenses.Key(): expDoc,
		e.app.Incomes.Key():  incDoc,
	}); err != nil {
		return Result{}, err
	}
	return expRes.add(incRes), nil
}

// ensureCategories applies the missing-taxonomy gate for both ledger kinds
// with a single confirmation.
func (e *Engine) ensureCategories(expenses []*types.Expense, incomes []*types.Income) error {
	var missingExp, missingInc []string
	for _, rec := range expenses {
		if !e.app.Categories.Contains(category.KindExpense, rec.Category) &&
			!slices.Contains(missingExp, rec.Category) {
			missingExp = append(missingExp, rec.Category)
		}
	}
	for _, rec := range incomes {
		if !e.app.Categories.Contains(category.KindIncome, rec.Category) &&
			!slices.Contains(missingInc, rec.Category) {
			missingInc = append(missingInc, rec.Category)
		}
	}
	if len(missingExp) == 0 && len(missingInc) == 0 {
		return nil
	}

	all := append(slices.Clone(missingExp), missingInc...)
	if !e.confirm(all) {
		return types.ErrImportCancelled
	}
	for _, name := range missingExp {
		if _, err := e.app.Categories.Add(category.KindExpense, name); err != nil {
			return fmt.Errorf("creating category %s: %w", name, err)
		}
	}
	for _, name := range missingInc {
		if _, err := e.app.Categories.Add(category.KindIncome, name); err != nil {
			return fmt.Errorf("creating category %s: %w", name, err)
		}
	}
	return nil
}

// importPlain merges a single-section envelope for a family without
// attachments.
func importPlain[T types.Record, E any](e *Engine, data []byte, st *store.Store[T], singleton bool, records func(*E) []T) (Result, error) {
	var env E
	if err := json.Unmarshal(data, &env); err != nil {
		return Result{}, fmt.Errorf("%w: %v", types.ErrInvalidJSON, err)
	}
	next, res := merge(st.Load(), records(&env), singleton)
	if err := st.Save(next); err != nil {
		return Result{}, err
	}
	return res, nil
}

// importAttachable additionally moves every accepted record's inline image
// into the blob store before the collection is written, so imported
// records never linger with inline payloads.
func importAttachable[T any, PT attachPtr[T], E any](ctx context.Context, e *Engine, data []byte, st *store.Store[PT], singleton bool, records func(*E) []PT) (Result, error) {
	var env E
	if err := json.Unmarshal(data, &env); err != nil {
		return Result{}, fmt.Errorf("%w: %v", types.ErrInvalidJSON, err)
	}
	next, res := merge(st.Load(), records(&env), singleton)

	// Covers the freshly accepted records and any legacy inline payloads
	// already in the store; records with a blob reference are untouched.
	stashInline(ctx, e.app.Blobs, next, e.log)

	if err := st.Save(next); err != nil {
		return Result{}, err
	}
	return res, nil
}

// merge appends the incoming records that do not collide with existing
// ones. Collisions key on id, and for singleton-per-day families also on
// date; a colliding record is counted as skipped, never overwritten.
// The result is returned in canonical order.
func merge[T types.Record](existing, incoming []T, singleton bool) ([]T, Result) {
	byID := make(map[string]bool, len(existing))
	byDate := make(map[string]bool, len(existing))
	for _, rec := range existing {
		byID[rec.RecordID()] = true
		byDate[rec.RecordDate()] = true
	}

	next := slices.Clone(existing)
	var res Result
	for _, rec := range incoming {
		res.Total++
		if byID[rec.RecordID()] || (singleton && byDate[rec.RecordDate()]) {
			res.Skipped++
			continue
		}
		next = append(next, rec)
		byID[rec.RecordID()] = true
		byDate[rec.RecordDate()] = true
		res.Imported++
	}
	types.SortCanonical(next)
	return next, res
}

// stashInline applies the attachment migration to freshly accepted
// records: blob first, then the record rewrite. A failed blob write
// leaves the inline payload in place for the next migration run.
func stashInline[PT types.Attachable](ctx context.Context, blobs *blob.Store, recs []PT, log *slog.Logger) {
	for _, rec := range recs {
		if rec.InlineImage() == "" || rec.AttachmentID() != "" {
			continue
		}
		if err := blobs.Save(ctx, rec.RecordID(), rec.InlineImage()); err != nil {
			log.Warn("inline attachment kept, blob write failed",
				"id", rec.RecordID(), "error", err)
			continue
		}
		rec.SetAttachmentID(rec.RecordID())
		rec.SetInlineImage("")
	}
}
