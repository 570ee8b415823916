// Package impexp implements the import/export engine: wrapping record
// collections in versioned export envelopes, and merging user-supplied
// export files back into the stores with validation, de-duplication, and
// inline-attachment migration.
package impexp

import (
	"fmt"
	"time"

	"github.com/lifelog-dev/lifelog/pkg/types"
)

// ExportVersion is stamped into every envelope this build writes.
const ExportVersion = "1.0.0"

// Envelope shapes, one per family. Field names are the wire contract;
// the validator checks incoming documents against the same names.

type ledgerEnvelope struct {
	Version       string           `json:"version"`
	ExportDate    string           `json:"exportDate"`
	Expenses      []*types.Expense `json:"expenses"`
	Incomes       []*types.Income  `json:"incomes"`
	TotalExpenses int              `json:"totalExpenses"`
	TotalIncomes  int              `json:"totalIncomes"`
}

type sleepEnvelope struct {
	Version      string         `json:"version"`
	ExportDate   string         `json:"exportDate"`
	SleepRecords []*types.Sleep `json:"sleepRecords"`
	TotalRecords int            `json:"totalRecords"`
}

type dailyEnvelope struct {
	Version      string         `json:"version"`
	ExportDate   string         `json:"exportDate"`
	DailyRecords []*types.Daily `json:"dailyRecords"`
	TotalRecords int            `json:"totalRecords"`
}

type diaryEnvelope struct {
	Version      string         `json:"version"`
	ExportDate   string         `json:"exportDate"`
	Diaries      []*types.Diary `json:"diaries"`
	TotalDiaries int            `json:"totalDiaries"`
}

type readingEnvelope struct {
	Version       string           `json:"version"`
	ExportDate    string           `json:"exportDate"`
	Readings      []*types.Reading `json:"readings"`
	TotalReadings int              `json:"totalReadings"`
}

type musicEnvelope struct {
	Version        string         `json:"version"`
	ExportDate     string         `json:"exportDate"`
	MusicLogs      []*types.Music `json:"musicLogs"`
	TotalMusicLogs int            `json:"totalMusicLogs"`
}

// ExportFileName returns the canonical file name for a family export,
// e.g. "ledger-2025-01-01.json".
func ExportFileName(f types.Family) string {
	return fmt.Sprintf("%s-%s.json", f, time.Now().Format(types.DateLayout))
}
