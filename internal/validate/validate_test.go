package validate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelog-dev/lifelog/pkg/types"
)

// parseDoc decodes src the way the import engine does: UseNumber mode.
func parseDoc(t *testing.T, src string) any {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader([]byte(src)))
	dec.UseNumber()
	var doc any
	require.NoError(t, dec.Decode(&doc))
	return doc
}

// pinToday fixes "today" for the date-window checks.
func pinToday(t *testing.T, day string) {
	t.Helper()
	fixed, err := time.Parse(types.DateLayout, day)
	require.NoError(t, err)
	orig := timeNow
	timeNow = func() time.Time { return fixed }
	t.Cleanup(func() { timeNow = orig })
}

// ledgerEnvelope builds a minimal valid ledger envelope around the given
// expense objects (JSON fragments).
func ledgerEnvelope(expenses ...string) string {
	joined := ""
	for i, e := range expenses {
		if i > 0 {
			joined += ","
		}
		joined += e
	}
	return fmt.Sprintf(`{
		"version": "1.0.0",
		"exportDate": "2025-01-01T00:00:00Z",
		"expenses": [%s],
		"incomes": [],
		"totalExpenses": %d,
		"totalIncomes": 0
	}`, joined, len(expenses))
}

func validExpense(id string) string {
	return fmt.Sprintf(`{
		"id": %q,
		"date": "2025-10-05",
		"amount": 42.5,
		"category": "餐饮",
		"createdAt": "2025-10-05T08:00:00Z"
	}`, id)
}

func TestEnvelopeRejectsUnknownFamily(t *testing.T) {
	// Direct callers must not get a pass for a family the validator has
	// no schema for.
	err := Envelope(types.Family("grocery"), parseDoc(t, ledgerEnvelope()))
	assert.ErrorIs(t, err, types.ErrUnknownFamily)
}

func TestEnvelopeTopLevelShape(t *testing.T) {
	pinToday(t, "2025-12-31")

	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name:    "array rejected",
			src:     `[]`,
			wantErr: "数据格式错误",
		},
		{
			name:    "scalar rejected",
			src:     `42`,
			wantErr: "数据格式错误",
		},
		{
			name:    "missing version",
			src:     `{"exportDate":"2025-01-01T00:00:00Z","expenses":[],"incomes":[],"totalExpenses":0,"totalIncomes":0}`,
			wantErr: "version",
		},
		{
			name:    "mistyped version",
			src:     `{"version":1,"exportDate":"2025-01-01T00:00:00Z","expenses":[],"incomes":[],"totalExpenses":0,"totalIncomes":0}`,
			wantErr: "version",
		},
		{
			name:    "missing exportDate",
			src:     `{"version":"1.0.0","expenses":[],"incomes":[],"totalExpenses":0,"totalIncomes":0}`,
			wantErr: "exportDate",
		},
		{
			name:    "missing total field",
			src:     `{"version":"1.0.0","exportDate":"2025-01-01T00:00:00Z","expenses":[],"incomes":[],"totalIncomes":0}`,
			wantErr: "totalExpenses",
		},
		{
			name:    "records field not an array",
			src:     `{"version":"1.0.0","exportDate":"2025-01-01T00:00:00Z","expenses":{},"incomes":[],"totalExpenses":0,"totalIncomes":0}`,
			wantErr: "expenses 必须是数组",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Envelope(types.FamilyLedger, parseDoc(t, tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvelopeCountMismatchNamesBothNumbers(t *testing.T) {
	pinToday(t, "2025-12-31")
	src := fmt.Sprintf(`{
		"version": "1.0.0",
		"exportDate": "2025-01-01T00:00:00Z",
		"expenses": [%s],
		"incomes": [],
		"totalExpenses": 3,
		"totalIncomes": 0
	}`, validExpense("e1"))

	err := Envelope(types.FamilyLedger, parseDoc(t, src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3")
	assert.Contains(t, err.Error(), "1")
	assert.Contains(t, err.Error(), "totalExpenses")
}

func TestEnvelopeValidLedger(t *testing.T) {
	pinToday(t, "2025-12-31")
	doc := parseDoc(t, ledgerEnvelope(validExpense("e1"), validExpense("e2")))
	assert.NoError(t, Envelope(types.FamilyLedger, doc))
}

func TestExpenseRecordRules(t *testing.T) {
	pinToday(t, "2025-12-31")

	tests := []struct {
		name    string
		rec     string
		wantErr string
	}{
		{
			name:    "missing id",
			rec:     `{"date":"2025-10-05","amount":1,"category":"餐饮","createdAt":"2025-10-05T08:00:00Z"}`,
			wantErr: "记录[0]: 缺少必填字段 id",
		},
		{
			name:    "mistyped amount",
			rec:     `{"id":"e1","date":"2025-10-05","amount":"42","category":"餐饮","createdAt":"2025-10-05T08:00:00Z"}`,
			wantErr: "字段 amount 类型错误",
		},
		{
			name:    "zero amount",
			rec:     `{"id":"e1","date":"2025-10-05","amount":0,"category":"餐饮","createdAt":"2025-10-05T08:00:00Z"}`,
			wantErr: "金额必须大于 0",
		},
		{
			name:    "amount above bound",
			rec:     `{"id":"e1","date":"2025-10-05","amount":1000001,"category":"餐饮","createdAt":"2025-10-05T08:00:00Z"}`,
			wantErr: "金额必须大于 0",
		},
		{
			name:    "malformed date",
			rec:     `{"id":"e1","date":"2025/10/05","amount":1,"category":"餐饮","createdAt":"2025-10-05T08:00:00Z"}`,
			wantErr: "日期格式无效",
		},
		{
			name:    "impossible calendar date",
			rec:     `{"id":"e1","date":"2025-02-30","amount":1,"category":"餐饮","createdAt":"2025-02-28T08:00:00Z"}`,
			wantErr: "日期无效: 2025-02-30",
		},
		{
			name:    "date before window",
			rec:     `{"id":"e1","date":"1999-12-31","amount":1,"category":"餐饮","createdAt":"2025-10-05T08:00:00Z"}`,
			wantErr: "早于最早允许日期",
		},
		{
			name:    "date after today",
			rec:     `{"id":"e1","date":"2026-01-01","amount":1,"category":"餐饮","createdAt":"2025-10-05T08:00:00Z"}`,
			wantErr: "晚于今天",
		},
		{
			name:    "empty category",
			rec:     `{"id":"e1","date":"2025-10-05","amount":1,"category":"","createdAt":"2025-10-05T08:00:00Z"}`,
			wantErr: "字段 category 不能为空",
		},
		{
			name:    "oversized description",
			rec:     fmt.Sprintf(`{"id":"e1","date":"2025-10-05","amount":1,"category":"餐饮","description":%q,"createdAt":"2025-10-05T08:00:00Z"}`, stringOfLen(101)),
			wantErr: "字段 description 超过 100 字符限制",
		},
		{
			name:    "mistyped createdAt",
			rec:     `{"id":"e1","date":"2025-10-05","amount":1,"category":"餐饮","createdAt":1700000000000}`,
			wantErr: "字段 createdAt 类型错误",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Envelope(types.FamilyLedger, parseDoc(t, ledgerEnvelope(tt.rec)))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func stringOfLen(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'x'
	}
	return string(b)
}

func TestExpenseMaxAmountAccepted(t *testing.T) {
	pinToday(t, "2025-12-31")
	rec := `{"id":"e1","date":"2025-10-05","amount":1000000,"category":"餐饮","createdAt":"2025-10-05T08:00:00Z"}`
	assert.NoError(t, Envelope(types.FamilyLedger, parseDoc(t, ledgerEnvelope(rec))))
}

func TestRecordErrorsCarryIndex(t *testing.T) {
	pinToday(t, "2025-12-31")
	bad := `{"id":"e2","date":"2025-02-30","amount":1,"category":"餐饮","createdAt":"2025-02-28T08:00:00Z"}`
	doc := parseDoc(t, ledgerEnvelope(validExpense("e1"), bad))

	err := Envelope(types.FamilyLedger, doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "记录[1]")
}

func TestDuplicateIDWithinEnvelope(t *testing.T) {
	pinToday(t, "2025-12-31")
	doc := parseDoc(t, ledgerEnvelope(validExpense("e1"), validExpense("e1")))

	err := Envelope(types.FamilyLedger, doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "重复的记录 ID: e1")
	assert.Contains(t, err.Error(), "记录[1]")
}

func TestSleepEnvelope(t *testing.T) {
	pinToday(t, "2025-12-31")

	valid := `{
		"version": "1.0.0",
		"exportDate": "2025-01-01T00:00:00Z",
		"sleepRecords": [{
			"id": "s1", "date": "2025-10-05",
			"bedTime": "23:30", "wakeTime": "07:15",
			"quality": 80, "createdAt": 1728100000000
		}],
		"totalRecords": 1
	}`
	assert.NoError(t, Envelope(types.FamilySleep, parseDoc(t, valid)))

	tests := []struct {
		name    string
		mutate  string
		wantErr string
	}{
		{
			name:    "bad clock",
			mutate:  `"bedTime": "24:30", "wakeTime": "07:15", "quality": 80, "createdAt": 1728100000000`,
			wantErr: "字段 bedTime 时间格式无效",
		},
		{
			name:    "quality out of range",
			mutate:  `"bedTime": "23:30", "wakeTime": "07:15", "quality": 101, "createdAt": 1728100000000`,
			wantErr: "字段 quality 必须在 0 到 100 之间",
		},
		{
			name:    "createdAt not epoch",
			mutate:  `"bedTime": "23:30", "wakeTime": "07:15", "quality": 80, "createdAt": "2025-10-05T08:00:00Z"`,
			wantErr: "字段 createdAt 类型错误",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := fmt.Sprintf(`{
				"version": "1.0.0",
				"exportDate": "2025-01-01T00:00:00Z",
				"sleepRecords": [{"id": "s1", "date": "2025-10-05", %s}],
				"totalRecords": 1
			}`, tt.mutate)
			err := Envelope(types.FamilySleep, parseDoc(t, src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDailyMealStatuses(t *testing.T) {
	pinToday(t, "2025-12-31")
	src := `{
		"version": "1.0.0",
		"exportDate": "2025-01-01T00:00:00Z",
		"dailyRecords": [{
			"id": "d1", "date": "2025-10-05",
			"breakfast": "home", "lunch": "banquet", "dinner": "out",
			"mood": 60, "createdAt": 1728100000000
		}],
		"totalRecords": 1
	}`
	err := Envelope(types.FamilyDaily, parseDoc(t, src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "字段 lunch 取值无效")
}

func TestDiaryEnvelope(t *testing.T) {
	pinToday(t, "2025-12-31")

	valid := `{
		"version": "1.0.0",
		"exportDate": "2025-01-01T00:00:00Z",
		"diaries": [{
			"id": "d1", "date": "2025-10-05",
			"content": "早睡早起",
			"image": "aGVsbG8=",
			"createdAt": "2025-10-05T22:00:00Z"
		}],
		"totalDiaries": 1
	}`
	assert.NoError(t, Envelope(types.FamilyDiary, parseDoc(t, valid)))

	mistyped := `{
		"version": "1.0.0",
		"exportDate": "2025-01-01T00:00:00Z",
		"diaries": [{
			"id": "d1", "date": "2025-10-05",
			"content": "x",
			"image": 42,
			"createdAt": "2025-10-05T22:00:00Z"
		}],
		"totalDiaries": 1
	}`
	err := Envelope(types.FamilyDiary, parseDoc(t, mistyped))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "字段 image 类型错误")
}

func TestFirstFailureWins(t *testing.T) {
	pinToday(t, "2025-12-31")
	// Record 0 has two violations; the id check runs first.
	rec := `{"date":"2025-02-30","amount":0,"category":"餐饮","createdAt":"2025-02-28T08:00:00Z"}`
	err := Envelope(types.FamilyLedger, parseDoc(t, ledgerEnvelope(rec)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "缺少必填字段 id")
}
