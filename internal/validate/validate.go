// Package validate checks parsed import envelopes against the per-family
// record schemas. Validation is pure and first-failure: the first violation
// found, walking the envelope top-down and the record arrays in order,
// becomes the diagnostic and no further checks run. Diagnostics are
// user-facing strings naming the exact field and record index; callers
// surface them verbatim.
//
// Callers must produce the input with a json.Decoder in UseNumber mode so
// numeric fields arrive as json.Number and amount bounds can be checked
// exactly.
package validate

import (
	"encoding/json"
	"fmt"

	"github.com/lifelog-dev/lifelog/pkg/types"
)

// section describes one typed record array inside an envelope: the array
// field, its declared-count field, and the per-record check.
type section struct {
	recordsField string
	totalField   string
	check        func(i int, rec map[string]any) error
}

// sections returns the envelope layout for a family. The ledger envelope
// carries expenses and incomes side by side; every other family has a
// single section.
func sections(f types.Family) []section {
	switch f {
	case types.FamilyLedger:
		return []section{
			{"expenses", "totalExpenses", checkExpense},
			{"incomes", "totalIncomes", checkIncome},
		}
	case types.FamilySleep:
		return []section{{"sleepRecords", "totalRecords", checkSleep}}
	case types.FamilyDaily:
		return []section{{"dailyRecords", "totalRecords", checkDaily}}
	case types.FamilyDiary:
		return []section{{"diaries", "totalDiaries", checkDiary}}
	case types.FamilyReading:
		return []section{{"readings", "totalReadings", checkReading}}
	case types.FamilyMusic:
		return []section{{"musicLogs", "totalMusicLogs", checkMusic}}
	}
	return nil
}

// Envelope validates a parsed import document for the given family.
// Returns nil when the envelope is valid, otherwise the first-failure
// diagnostic.
func Envelope(f types.Family, doc any) error {
	secs := sections(f)
	if secs == nil {
		return fmt.Errorf("%w: %s", types.ErrUnknownFamily, f)
	}

	m, ok := doc.(map[string]any)
	if !ok {
		return fmt.Errorf("数据格式错误:导入内容必须是一个对象")
	}

	if s, ok := m["version"].(string); !ok || s == "" {
		return fmt.Errorf("缺少或无效的字段: version")
	}
	if s, ok := m["exportDate"].(string); !ok || s == "" {
		return fmt.Errorf("缺少或无效的字段: exportDate")
	}

	for _, sec := range secs {
		if err := checkSection(m, sec); err != nil {
			return err
		}
	}
	return nil
}

func checkSection(m map[string]any, sec section) error {
	total, ok := intField(m, sec.totalField)
	if !ok {
		return fmt.Errorf("缺少或无效的字段: %s", sec.totalField)
	}

	raw, ok := m[sec.recordsField]
	if !ok {
		return fmt.Errorf("缺少或无效的字段: %s", sec.recordsField)
	}
	arr, ok := raw.([]any)
	if !ok {
		return fmt.Errorf("字段 %s 必须是数组", sec.recordsField)
	}

	if total != len(arr) {
		return fmt.Errorf("%s 为 %d,但 %s 实际包含 %d 条记录",
			sec.totalField, total, sec.recordsField, len(arr))
	}

	// Per-record checks in array order; every diagnostic carries the index.
	for i, item := range arr {
		rec, ok := item.(map[string]any)
		if !ok {
			return errf(i, "必须是对象")
		}
		if err := sec.check(i, rec); err != nil {
			return err
		}
	}

	// Id uniqueness within the family, checked after the per-record pass.
	seen := make(map[string]bool, len(arr))
	for i, item := range arr {
		id, _ := item.(map[string]any)["id"].(string)
		if seen[id] {
			return errf(i, "重复的记录 ID: %s", id)
		}
		seen[id] = true
	}
	return nil
}

// intField extracts an integer-valued field parsed in UseNumber mode.
func intField(m map[string]any, field string) (int, bool) {
	n, ok := m[field].(json.Number)
	if !ok {
		return 0, false
	}
	v, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return int(v), true
}

// errf builds an indexed record diagnostic.
func errf(i int, format string, args ...any) error {
	return fmt.Errorf("记录[%d]: %s", i, fmt.Sprintf(format, args...))
}
