// Package category implements the taxonomy service: the ordered, mutable
// category lists for the ledger families. The service is an explicit
// object injected into the import/export engine and the CLI rather than
// ambient package state, so tests run against isolated instances.
//
// Each kind's list always contains a sentinel fallback category. The
// sentinel can be relabeled but never deleted; deleting any other category
// reassigns every record that referenced it to the sentinel.
package category

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/lifelog-dev/lifelog/internal/kv"
	"github.com/lifelog-dev/lifelog/internal/store"
	"github.com/lifelog-dev/lifelog/pkg/types"
)

// Kind selects which family's taxonomy an operation targets.
type Kind string

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

// DefaultSentinel is the label the fallback category starts with.
const DefaultSentinel = "其他"

// Seed lists for a fresh install. The sentinel is always last.
var (
	defaultExpenseCategories = []string{"餐饮", "交通", "购物", "娱乐", "居住", "医疗", DefaultSentinel}
	defaultIncomeCategories  = []string{"工资", "奖金", "理财", "兼职", DefaultSentinel}
)

// taxonomy is the persisted form of one kind's category list.
type taxonomy struct {
	Labels   []string `json:"labels"`
	Sentinel string   `json:"sentinel"`
}

// Service manages the category taxonomies and their record cascades.
type Service struct {
	kv       *kv.Store
	expenses *store.Store[*types.Expense]
	incomes  *store.Store[*types.Income]
	log      *slog.Logger
}

// NewService returns a Service over the given medium and ledger stores.
// The ledger stores are needed for the delete/rename cascades.
func NewService(medium *kv.Store, expenses *store.Store[*types.Expense], incomes *store.Store[*types.Income], log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{kv: medium, expenses: expenses, incomes: incomes, log: log}
}

// List returns the kind's categories in display order, the sentinel
// included. A fresh store yields the seeded defaults.
func (s *Service) List(kind Kind) []string {
	tax := s.load(kind)
	return slices.Clone(tax.Labels)
}

// Sentinel returns the kind's current sentinel label.
func (s *Service) Sentinel(kind Kind) string {
	return s.load(kind).Sentinel
}

// Contains reports whether name is a category of the kind.
func (s *Service) Contains(kind Kind, name string) bool {
	return slices.Contains(s.load(kind).Labels, name)
}

// Add appends a new category. Returns false without error if a category
// with the exact same name already exists.
func (s *Service) Add(kind Kind, name string) (bool, error) {
	if name == "" {
		return false, fmt.Errorf("adding category: empty name")
	}
	tax := s.load(kind)
	if slices.Contains(tax.Labels, name) {
		return false, nil
	}
	tax.Labels = append(tax.Labels, name)
	if err := s.save(kind, tax); err != nil {
		return false, err
	}
	return true, nil
}

// Rename relabels a category and rewrites every record referencing the old
// label. Renaming the sentinel moves the sentinel label with it. Returns
// false without error if the old name does not exist or the new name is
// already taken.
func (s *Service) Rename(kind Kind, oldName, newName string) (bool, error) {
	if newName == "" {
		return false, fmt.Errorf("renaming category: empty name")
	}
	tax := s.load(kind)
	idx := slices.Index(tax.Labels, oldName)
	if idx < 0 || slices.Contains(tax.Labels, newName) {
		return false, nil
	}
	tax.Labels[idx] = newName
	if tax.Sentinel == oldName {
		tax.Sentinel = newName
	}
	if err := s.save(kind, tax); err != nil {
		return false, err
	}
	if _, err := s.reassign(kind, oldName, newName); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes a category. The sentinel is protected: deleting it
// returns false and changes nothing. On success every record that
// referenced the deleted category is reassigned to the sentinel.
func (s *Service) Delete(kind Kind, name string) (bool, error) {
	tax := s.load(kind)
	if name == tax.Sentinel {
		return false, nil
	}
	idx := slices.Index(tax.Labels, name)
	if idx < 0 {
		return false, nil
	}
	tax.Labels = slices.Delete(tax.Labels, idx, idx+1)
	if err := s.save(kind, tax); err != nil {
		return false, err
	}
	n, err := s.reassign(kind, name, tax.Sentinel)
	if err != nil {
		return false, err
	}
	if n > 0 {
		s.log.Info("reassigned records to sentinel category",
			"kind", string(kind), "category", name, "records", n)
	}
	return true, nil
}

// SaveOrder persists a user-chosen display order. The new order must be a
// permutation of the current list; in particular the sentinel must appear.
func (s *Service) SaveOrder(kind Kind, names []string) error {
	tax := s.load(kind)
	if len(names) != len(tax.Labels) {
		return fmt.Errorf("saving category order: got %d names, have %d categories",
			len(names), len(tax.Labels))
	}
	for _, name := range tax.Labels {
		if !slices.Contains(names, name) {
			return fmt.Errorf("saving category order: missing category %s", name)
		}
	}
	tax.Labels = slices.Clone(names)
	return s.save(kind, tax)
}

// HasRecords reports whether any ledger record of the kind references the
// category.
func (s *Service) HasRecords(kind Kind, name string) bool {
	switch kind {
	case KindExpense:
		for _, rec := range s.expenses.Load() {
			if rec.Category == name {
				return true
			}
		}
	case KindIncome:
		for _, rec := range s.incomes.Load() {
			if rec.Category == name {
				return true
			}
		}
	}
	return false
}

// reassign rewrites every record of the kind whose category is oldName.
// Returns how many records changed.
func (s *Service) reassign(kind Kind, oldName, newName string) (int, error) {
	switch kind {
	case KindExpense:
		recs := s.expenses.Load()
		n := 0
		for _, rec := range recs {
			if rec.Category == oldName {
				rec.Category = newName
				n++
			}
		}
		if n == 0 {
			return 0, nil
		}
		return n, s.expenses.Save(recs)
	case KindIncome:
		recs := s.incomes.Load()
		n := 0
		for _, rec := range recs {
			if rec.Category == oldName {
				rec.Category = newName
				n++
			}
		}
		if n == 0 {
			return 0, nil
		}
		return n, s.incomes.Save(recs)
	}
	return 0, nil
}

func storageKey(kind Kind) string {
	return "categories." + string(kind)
}

func defaults(kind Kind) taxonomy {
	labels := defaultExpenseCategories
	if kind == KindIncome {
		labels = defaultIncomeCategories
	}
	return taxonomy{Labels: slices.Clone(labels), Sentinel: DefaultSentinel}
}

func (s *Service) load(kind Kind) taxonomy {
	data, ok := s.kv.Get(storageKey(kind))
	if !ok {
		return defaults(kind)
	}
	var tax taxonomy
	if err := json.Unmarshal(data, &tax); err != nil || len(tax.Labels) == 0 {
		s.log.Warn("corrupt taxonomy treated as defaults",
			"kind", string(kind), "error", err)
		return defaults(kind)
	}
	// The sentinel must always exist; repair stored data that lost it.
	if tax.Sentinel == "" || !slices.Contains(tax.Labels, tax.Sentinel) {
		tax.Sentinel = DefaultSentinel
		if !slices.Contains(tax.Labels, tax.Sentinel) {
			tax.Labels = append(tax.Labels, tax.Sentinel)
		}
	}
	return tax
}

func (s *Service) save(kind Kind, tax taxonomy) error {
	data, err := json.Marshal(tax)
	if err != nil {
		return fmt.Errorf("encoding taxonomy: %w", err)
	}
	if err := s.kv.Set(storageKey(kind), data); err != nil {
		return fmt.Errorf("saving taxonomy: %w", err)
	}
	return nil
}
