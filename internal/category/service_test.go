package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelog-dev/lifelog/internal/kv"
	"github.com/lifelog-dev/lifelog/internal/store"
	"github.com/lifelog-dev/lifelog/pkg/types"
)

func newTestService(t *testing.T) (*Service, *store.Store[*types.Expense]) {
	t.Helper()
	medium, err := kv.Open(t.TempDir(), 0, nil)
	require.NoError(t, err)
	expenses := store.New[*types.Expense](medium, types.KeyExpenses, nil)
	incomes := store.New[*types.Income](medium, types.KeyIncomes, nil)
	return NewService(medium, expenses, incomes, nil), expenses
}

func TestDefaultsContainSentinel(t *testing.T) {
	s, _ := newTestService(t)

	for _, kind := range []Kind{KindExpense, KindIncome} {
		labels := s.List(kind)
		assert.Contains(t, labels, DefaultSentinel)
		assert.Equal(t, DefaultSentinel, s.Sentinel(kind))
	}
}

func TestAdd(t *testing.T) {
	s, _ := newTestService(t)

	ok, err := s.Add(KindExpense, "宠物")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, s.List(KindExpense), "宠物")

	// Exact duplicate is refused without error.
	ok, err = s.Add(KindExpense, "宠物")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteSentinelRefused(t *testing.T) {
	s, _ := newTestService(t)

	ok, err := s.Delete(KindExpense, DefaultSentinel)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, s.List(KindExpense), DefaultSentinel)
}

func TestDeleteCascadesToRecords(t *testing.T) {
	s, expenses := newTestService(t)

	require.NoError(t, expenses.Add(&types.Expense{
		ID: "e1", Date: "2025-01-02", Amount: types.AmountFromFloat(10),
		Category: "餐饮", CreatedAt: "2025-01-02T08:00:00Z",
	}))
	require.NoError(t, expenses.Add(&types.Expense{
		ID: "e2", Date: "2025-01-03", Amount: types.AmountFromFloat(20),
		Category: "交通", CreatedAt: "2025-01-03T08:00:00Z",
	}))

	ok, err := s.Delete(KindExpense, "餐饮")
	require.NoError(t, err)
	require.True(t, ok)

	assert.NotContains(t, s.List(KindExpense), "餐饮")
	got, err := expenses.Get("e1")
	require.NoError(t, err)
	assert.Equal(t, DefaultSentinel, got.Category)

	// The untouched record keeps its category.
	got, err = expenses.Get("e2")
	require.NoError(t, err)
	assert.Equal(t, "交通", got.Category)

	assert.True(t, s.HasRecords(KindExpense, DefaultSentinel))
	assert.False(t, s.HasRecords(KindExpense, "餐饮"))
}

func TestRenameCascadesToRecords(t *testing.T) {
	s, expenses := newTestService(t)

	require.NoError(t, expenses.Add(&types.Expense{
		ID: "e1", Date: "2025-01-02", Amount: types.AmountFromFloat(10),
		Category: "餐饮", CreatedAt: "2025-01-02T08:00:00Z",
	}))

	ok, err := s.Rename(KindExpense, "餐饮", "吃喝")
	require.NoError(t, err)
	require.True(t, ok)

	got, err := expenses.Get("e1")
	require.NoError(t, err)
	assert.Equal(t, "吃喝", got.Category)
}

func TestRenameSentinelMovesLabel(t *testing.T) {
	s, _ := newTestService(t)

	ok, err := s.Rename(KindExpense, DefaultSentinel, "未分类")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "未分类", s.Sentinel(KindExpense))

	// The relabeled sentinel is still protected.
	ok, err = s.Delete(KindExpense, "未分类")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRenameMissingOrTaken(t *testing.T) {
	s, _ := newTestService(t)

	ok, err := s.Rename(KindExpense, "不存在", "x")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Rename(KindExpense, "餐饮", "交通")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveOrder(t *testing.T) {
	s, _ := newTestService(t)

	labels := s.List(KindIncome)
	// Reverse the display order.
	reversed := make([]string, 0, len(labels))
	for i := len(labels) - 1; i >= 0; i-- {
		reversed = append(reversed, labels[i])
	}
	require.NoError(t, s.SaveOrder(KindIncome, reversed))
	assert.Equal(t, reversed, s.List(KindIncome))

	// Dropping the sentinel from the order is refused.
	assert.Error(t, s.SaveOrder(KindIncome, reversed[:len(reversed)-1]))
}
