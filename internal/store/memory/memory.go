// Package memory is a non-durable Store kept in maps, for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

type Store struct {
	mu      sync.RWMutex
	seeded  bool
	version atomic.Uint64
	now     func() time.Time

	nextTx, nextCat, nextBudget int64
	txs                         map[int64]core.Transaction
	cats                        map[int64]core.Category
	budgets                     map[int64]core.Budget
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		now:     time.Now,
		txs:     map[int64]core.Transaction{},
		cats:    map[int64]core.Category{},
		budgets: map[int64]core.Budget{},
	}
}

// Init seeds the default categories once per Store.
func (s *Store) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seeded {
		return nil
	}
	for _, c := range core.DefaultCategories() {
		s.nextCat++
		c.ID = s.nextCat
		s.cats[c.ID] = c
	}
	s.seeded = true
	s.version.Add(1)
	return nil
}

func (s *Store) Version() uint64 { return s.version.Load() }

func (s *Store) Close() error { return nil }

func (s *Store) AddTransaction(_ context.Context, t core.Transaction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := core.NormalizeInstant(s.now())
	s.nextTx++
	t.ID = s.nextTx
	t.Date = core.NormalizeInstant(t.Date)
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.CreatedAt = core.NormalizeInstant(t.CreatedAt)
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	t.UpdatedAt = core.NormalizeInstant(t.UpdatedAt)
	t.Labels = cloneLabels(t.Labels)
	s.txs[t.ID] = t
	s.version.Add(1)
	return t.ID, nil
}

func (s *Store) UpdateTransaction(_ context.Context, id int64, patch core.TransactionPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txs[id]
	if !ok {
		return store.ErrNotFound
	}
	t = patch.Apply(t)
	t.UpdatedAt = core.NormalizeInstant(s.now())
	s.txs[id] = t
	s.version.Add(1)
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.txs, id)
	s.version.Add(1)
	return nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.txs[id]
	if !ok {
		return core.Transaction{}, store.ErrNotFound
	}
	t.Labels = cloneLabels(t.Labels)
	return t, nil
}

func (s *Store) ListTransactions(_ context.Context, f store.TransactionFilter) ([]core.Transaction, error) {
	s.mu.RLock()
	out := make([]core.Transaction, 0, len(s.txs))
	for _, t := range s.txs {
		if f.Match(t) {
			t.Labels = cloneLabels(t.Labels)
			out = append(out, t)
		}
	}
	s.mu.RUnlock()

	desc := f.Order == store.OrderDateDesc
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			if desc {
				return a.Date.After(b.Date)
			}
			return a.Date.Before(b.Date)
		}
		if desc {
			return a.ID > b.ID
		}
		return a.ID < b.ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Store) CountTransactionsByCategory(_ context.Context, categoryID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countByCategory(categoryID), nil
}

func (s *Store) countByCategory(categoryID int64) int {
	n := 0
	for _, t := range s.txs {
		if t.CategoryID == categoryID {
			n++
		}
	}
	return n
}

func (s *Store) AddCategory(_ context.Context, c core.Category) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCat++
	c.ID = s.nextCat
	s.cats[c.ID] = c
	s.version.Add(1)
	return c.ID, nil
}

func (s *Store) UpdateCategory(_ context.Context, id int64, patch core.CategoryPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cats[id]
	if !ok {
		return store.ErrNotFound
	}
	s.cats[id] = patch.Apply(c)
	s.version.Add(1)
	return nil
}

// DeleteCategory counts references and deletes under one write lock.
func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cats[id]; !ok {
		return store.ErrNotFound
	}
	if n := s.countByCategory(id); n > 0 {
		return &core.CategoryInUseError{CategoryID: id, Count: n}
	}
	delete(s.cats, id)
	s.version.Add(1)
	return nil
}

func (s *Store) GetCategory(_ context.Context, id int64) (core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cats[id]
	if !ok {
		return core.Category{}, store.ErrNotFound
	}
	return c, nil
}

func (s *Store) ListCategories(_ context.Context, typ core.TransactionType) ([]core.Category, error) {
	s.mu.RLock()
	out := make([]core.Category, 0, len(s.cats))
	for _, c := range s.cats {
		if typ == "" || c.Type == typ {
			out = append(out, c)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) AddBudget(_ context.Context, b core.Budget) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextBudget++
	b.ID = s.nextBudget
	b = normalizeBudget(b)
	s.budgets[b.ID] = b
	s.version.Add(1)
	return b.ID, nil
}

func (s *Store) UpdateBudget(_ context.Context, id int64, patch core.BudgetPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok {
		return store.ErrNotFound
	}
	s.budgets[id] = normalizeBudget(patch.Apply(b))
	s.version.Add(1)
	return nil
}

func (s *Store) DeleteBudget(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.budgets[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.budgets, id)
	s.version.Add(1)
	return nil
}

func (s *Store) GetBudget(_ context.Context, id int64) (core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.budgets[id]
	if !ok {
		return core.Budget{}, store.ErrNotFound
	}
	return normalizeBudget(b), nil
}

func (s *Store) ListBudgets(_ context.Context, f store.BudgetFilter) ([]core.Budget, error) {
	s.mu.RLock()
	out := make([]core.Budget, 0, len(s.budgets))
	for _, b := range s.budgets {
		if f.Match(b) {
			out = append(out, normalizeBudget(b))
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// normalizeBudget also detaches pointer fields from the caller's copy.
func normalizeBudget(b core.Budget) core.Budget {
	b.StartDate = core.NormalizeInstant(b.StartDate)
	if b.EndDate != nil {
		end := core.NormalizeInstant(*b.EndDate)
		b.EndDate = &end
	}
	if b.IsRecurring != nil {
		v := *b.IsRecurring
		b.IsRecurring = &v
	}
	return b
}

func cloneLabels(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string{}, in...)
}
