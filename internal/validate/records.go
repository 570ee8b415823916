package validate

import (
	"encoding/json"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/lifelog-dev/lifelog/pkg/types"
)

// minDate is the earliest accepted record date. Nothing tracked by the
// application predates it, so anything earlier is a data-entry error.
const minDate = "2000-01-01"

var (
	dateRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	clockRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// timeNow is swapped out in tests to pin "today".
var timeNow = time.Now

// Per-family record checks. Field order within each check fixes which
// violation wins when a record is broken in more than one way.

func checkExpense(i int, rec map[string]any) error {
	return firstErr(
		reqID(i, rec),
		reqDate(i, rec),
		reqAmount(i, rec),
		reqString(i, rec, "category", 20),
		optString(i, rec, "description", 100),
		reqCreatedAtISO(i, rec),
	)
}

func checkIncome(i int, rec map[string]any) error {
	// Incomes share the expense schema; the families differ in taxonomy
	// and storage, not in shape.
	return checkExpense(i, rec)
}

func checkSleep(i int, rec map[string]any) error {
	return firstErr(
		reqID(i, rec),
		reqDate(i, rec),
		reqClock(i, rec, "bedTime"),
		reqClock(i, rec, "wakeTime"),
		reqIntRange(i, rec, "quality", 0, 100),
		optString(i, rec, "notes", 200),
		reqCreatedAtEpoch(i, rec),
	)
}

func checkDaily(i int, rec map[string]any) error {
	return firstErr(
		reqID(i, rec),
		reqDate(i, rec),
		reqMeal(i, rec, "breakfast"),
		reqMeal(i, rec, "lunch"),
		reqMeal(i, rec, "dinner"),
		reqIntRange(i, rec, "mood", 0, 100),
		optString(i, rec, "notes", 200),
		reqCreatedAtEpoch(i, rec),
	)
}

func checkDiary(i int, rec map[string]any) error {
	return firstErr(
		reqID(i, rec),
		reqDate(i, rec),
		optString(i, rec, "title", 50),
		reqString(i, rec, "content", 5000),
		optString(i, rec, "weather", 20),
		optIntRange(i, rec, "mood", 0, 100),
		optImage(i, rec),
		reqCreatedAtISO(i, rec),
	)
}

func checkReading(i int, rec map[string]any) error {
	return firstErr(
		reqID(i, rec),
		reqDate(i, rec),
		reqString(i, rec, "title", 100),
		optString(i, rec, "author", 50),
		optIntRange(i, rec, "progress", 0, 100),
		optString(i, rec, "notes", 500),
		optImage(i, rec),
		reqCreatedAtEpoch(i, rec),
	)
}

func checkMusic(i int, rec map[string]any) error {
	return firstErr(
		reqID(i, rec),
		reqDate(i, rec),
		reqString(i, rec, "track", 100),
		optString(i, rec, "artist", 50),
		optIntRange(i, rec, "rating", 0, 100),
		optString(i, rec, "notes", 500),
		optImage(i, rec),
		reqCreatedAtEpoch(i, rec),
	)
}

// firstErr returns the first non-nil error.
func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Field-level rules.

func reqID(i int, rec map[string]any) error {
	v, present := rec["id"]
	if !present {
		return errf(i, "缺少必填字段 id")
	}
	s, ok := v.(string)
	if !ok {
		return errf(i, "字段 id 类型错误")
	}
	if s == "" {
		return errf(i, "字段 id 不能为空")
	}
	return nil
}

// reqDate validates the calendar date. Matching the YYYY-MM-DD shape is
// not enough: the parse must round-trip to the same year/month/day so
// dates like 2025-02-30 cannot slip through as a silently normalized
// overflow, and the date must fall inside [minDate, today].
func reqDate(i int, rec map[string]any) error {
	v, present := rec["date"]
	if !present {
		return errf(i, "缺少必填字段 date")
	}
	s, ok := v.(string)
	if !ok {
		return errf(i, "字段 date 类型错误")
	}
	if !dateRe.MatchString(s) {
		return errf(i, "日期格式无效: %s", s)
	}
	t, err := time.Parse(types.DateLayout, s)
	if err != nil || t.Format(types.DateLayout) != s {
		return errf(i, "日期无效: %s", s)
	}
	if s < minDate {
		return errf(i, "日期早于最早允许日期 %s: %s", minDate, s)
	}
	if today := timeNow().Format(types.DateLayout); s > today {
		return errf(i, "日期晚于今天: %s", s)
	}
	return nil
}

func reqAmount(i int, rec map[string]any) error {
	v, present := rec["amount"]
	if !present {
		return errf(i, "缺少必填字段 amount")
	}
	n, ok := v.(json.Number)
	if !ok {
		return errf(i, "字段 amount 类型错误")
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return errf(i, "金额无效: %s", n.String())
	}
	a := types.Amount{Decimal: d}
	if !a.InRange() {
		return errf(i, "金额必须大于 0 且不超过 %s", types.MaxAmount.String())
	}
	return nil
}

func reqString(i int, rec map[string]any, field string, maxLen int) error {
	v, present := rec[field]
	if !present {
		return errf(i, "缺少必填字段 %s", field)
	}
	s, ok := v.(string)
	if !ok {
		return errf(i, "字段 %s 类型错误", field)
	}
	if s == "" {
		return errf(i, "字段 %s 不能为空", field)
	}
	return checkLen(i, field, s, maxLen)
}

func optString(i int, rec map[string]any, field string, maxLen int) error {
	v, present := rec[field]
	if !present || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return errf(i, "字段 %s 类型错误", field)
	}
	return checkLen(i, field, s, maxLen)
}

func checkLen(i int, field, s string, maxLen int) error {
	if utf8.RuneCountInString(s) > maxLen {
		return errf(i, "字段 %s 超过 %d 字符限制", field, maxLen)
	}
	return nil
}

func reqIntRange(i int, rec map[string]any, field string, lo, hi int) error {
	v, present := rec[field]
	if !present {
		return errf(i, "缺少必填字段 %s", field)
	}
	return intRange(i, field, v, lo, hi)
}

func optIntRange(i int, rec map[string]any, field string, lo, hi int) error {
	v, present := rec[field]
	if !present || v == nil {
		return nil
	}
	return intRange(i, field, v, lo, hi)
}

func intRange(i int, field string, v any, lo, hi int) error {
	n, ok := v.(json.Number)
	if !ok {
		return errf(i, "字段 %s 类型错误", field)
	}
	x, err := n.Int64()
	if err != nil {
		return errf(i, "字段 %s 必须是整数", field)
	}
	if x < int64(lo) || x > int64(hi) {
		return errf(i, "字段 %s 必须在 %d 到 %d 之间", field, lo, hi)
	}
	return nil
}

func reqClock(i int, rec map[string]any, field string) error {
	v, present := rec[field]
	if !present {
		return errf(i, "缺少必填字段 %s", field)
	}
	s, ok := v.(string)
	if !ok {
		return errf(i, "字段 %s 类型错误", field)
	}
	if !clockRe.MatchString(s) {
		return errf(i, "字段 %s 时间格式无效: %s", field, s)
	}
	return nil
}

func reqMeal(i int, rec map[string]any, field string) error {
	v, present := rec[field]
	if !present {
		return errf(i, "缺少必填字段 %s", field)
	}
	s, ok := v.(string)
	if !ok {
		return errf(i, "字段 %s 类型错误", field)
	}
	if !types.ValidMealStatuses[s] {
		return errf(i, "字段 %s 取值无效: %s", field, s)
	}
	return nil
}

func reqCreatedAtISO(i int, rec map[string]any) error {
	v, present := rec["createdAt"]
	if !present {
		return errf(i, "缺少必填字段 createdAt")
	}
	s, ok := v.(string)
	if !ok {
		return errf(i, "字段 createdAt 类型错误")
	}
	if _, err := time.Parse(time.RFC3339, s); err != nil {
		return errf(i, "字段 createdAt 格式无效: %s", s)
	}
	return nil
}

func reqCreatedAtEpoch(i int, rec map[string]any) error {
	v, present := rec["createdAt"]
	if !present {
		return errf(i, "缺少必填字段 createdAt")
	}
	n, ok := v.(json.Number)
	if !ok {
		return errf(i, "字段 createdAt 类型错误")
	}
	x, err := n.Int64()
	if err != nil || x <= 0 {
		return errf(i, "字段 createdAt 必须是正整数时间戳")
	}
	return nil
}

// optImage type-checks the attachment fields. Only the type is enforced:
// the payload itself is opaque to validation.
func optImage(i int, rec map[string]any) error {
	for _, field := range []string{"image", "imageId"} {
		if v, present := rec[field]; present && v != nil {
			if _, ok := v.(string); !ok {
				return errf(i, "字段 %s 类型错误", field)
			}
		}
	}
	return nil
}
