package storage

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

func openTestRepo(t *testing.T, path string) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	if err := repo.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return repo
}

func TestRunMigrationsReportsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.db")
	for i := 0; i < 2; i++ {
		v, err := RunMigrations(path)
		if err != nil {
			t.Fatalf("RunMigrations() run %d error = %v", i, err)
		}
		if v != SchemaVersion {
			t.Errorf("RunMigrations() = %d, want %d", v, SchemaVersion)
		}
	}
}

func TestSeedOnceAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "fintrack.db")

	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Init(ctx); err != nil {
				t.Errorf("Init() error = %v", err)
			}
		}()
	}
	wg.Wait()

	cats, err := repo.ListCategories(ctx, "")
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	if len(cats) != 12 {
		t.Fatalf("seeded %d categories, want 12", len(cats))
	}
	for _, c := range cats {
		if err := repo.DeleteCategory(ctx, c.ID); err != nil {
			t.Fatalf("DeleteCategory() error = %v", err)
		}
	}
	repo.Close()

	reopened := openTestRepo(t, path)
	cats, _ = reopened.ListCategories(ctx, "")
	if len(cats) != 0 {
		t.Errorf("reopen reseeded %d categories", len(cats))
	}
}

func TestTransactionRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t, filepath.Join(t.TempDir(), "tx.db"))

	in := core.Transaction{
		Type:          core.Expense,
		Amount:        core.Money{Cents: 12999},
		CategoryID:    9,
		Date:          core.NormalizeInstant(time.Date(2024, 2, 14, 20, 15, 0, 250_000_000, time.UTC)),
		Description:   "Concert",
		Notes:         "front row",
		ReceiptImage:  "data:image/png;base64,AAAA",
		PaymentMethod: "card",
		Location:      "Turin",
		Labels:        []string{"music", "fun"},
		CreatedAt:     core.NormalizeInstant(time.Date(2024, 2, 14, 21, 0, 0, 0, time.UTC)),
	}
	id, err := repo.AddTransaction(ctx, in)
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	got, err := repo.GetTransaction(ctx, id)
	if err != nil {
		t.Fatalf("GetTransaction() error = %v", err)
	}
	want := in
	want.ID = id
	want.UpdatedAt = in.CreatedAt
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetTransaction() = %+v\nwant %+v", got, want)
	}

	desc := "Opera"
	if err := repo.UpdateTransaction(ctx, id, core.TransactionPatch{Description: &desc}); err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}
	got, _ = repo.GetTransaction(ctx, id)
	if got.Description != "Opera" || got.Notes != "front row" || len(got.Labels) != 2 {
		t.Errorf("UpdateTransaction() result = %+v", got)
	}

	if err := repo.DeleteTransaction(ctx, id); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
	if _, err := repo.GetTransaction(ctx, id); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetTransaction() after delete = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteTransaction(ctx, id); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second DeleteTransaction() = %v, want ErrNotFound", err)
	}
}

func TestLabelsRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t, filepath.Join(t.TempDir(), "labels.db"))
	tests := []struct {
		name   string
		labels []string
	}{
		{"nil", nil},
		{"empty", []string{}},
		{"values", []string{"trip", "work"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := repo.AddTransaction(ctx, core.Transaction{Type: core.Expense, CategoryID: 5, Date: time.Now(), Description: "x", Labels: tt.labels})
			if err != nil {
				t.Fatalf("AddTransaction() error = %v", err)
			}
			got, err := repo.GetTransaction(ctx, id)
			if err != nil {
				t.Fatalf("GetTransaction() error = %v", err)
			}
			if !reflect.DeepEqual(got.Labels, tt.labels) {
				t.Errorf("Labels = %#v, want %#v", got.Labels, tt.labels)
			}
		})
	}
}

func TestListTransactionsRangeAndCategory(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t, filepath.Join(t.TempDir(), "range.db"))
	day := func(d int) time.Time { return time.Date(2024, 1, d, 9, 0, 0, 0, time.UTC) }
	for _, tx := range []core.Transaction{
		{Type: core.Expense, CategoryID: 5, Date: day(2), Description: "a", Amount: core.Money{Cents: 100}},
		{Type: core.Expense, CategoryID: 6, Date: day(4), Description: "b", Amount: core.Money{Cents: 100}},
		{Type: core.Income, CategoryID: 1, Date: day(6), Description: "c", Amount: core.Money{Cents: 100}},
		{Type: core.Expense, CategoryID: 5, Date: day(8), Description: "d", Amount: core.Money{Cents: 100}},
	} {
		if _, err := repo.AddTransaction(ctx, tx); err != nil {
			t.Fatalf("AddTransaction() error = %v", err)
		}
	}

	tests := []struct {
		name   string
		filter store.TransactionFilter
		want   []string
	}{
		{"inclusive range", store.TransactionFilter{From: day(2), To: day(6)}, []string{"a", "b", "c"}},
		{"date and category", store.TransactionFilter{From: day(1), To: day(31), CategoryID: 5}, []string{"a", "d"}},
		{"type", store.TransactionFilter{Type: core.Income}, []string{"c"}},
		{"recent", store.TransactionFilter{Order: store.OrderDateDesc, Limit: 2}, []string{"d", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ListTransactions(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListTransactions() error = %v", err)
			}
			var descs []string
			for _, tx := range got {
				descs = append(descs, tx.Description)
			}
			if !reflect.DeepEqual(descs, tt.want) {
				t.Errorf("ListTransactions() = %v, want %v", descs, tt.want)
			}
		})
	}

	n, err := repo.CountTransactionsByCategory(ctx, 5)
	if err != nil || n != 2 {
		t.Errorf("CountTransactionsByCategory(5) = %d, %v; want 2", n, err)
	}
}

func TestDeleteCategoryReferential(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t, filepath.Join(t.TempDir(), "ref.db"))
	for i := 0; i < 3; i++ {
		if _, err := repo.AddTransaction(ctx, core.Transaction{
			Type: core.Expense, CategoryID: 7, Date: time.Now(), Description: "taxi", Amount: core.Money{Cents: 1500},
		}); err != nil {
			t.Fatalf("AddTransaction() error = %v", err)
		}
	}

	before := repo.Version()
	err := repo.DeleteCategory(ctx, 7)
	var inUse *core.CategoryInUseError
	if !errors.As(err, &inUse) || inUse.Count != 3 {
		t.Fatalf("DeleteCategory() error = %v, want in-use count 3", err)
	}
	if repo.Version() != before {
		t.Errorf("rejected delete bumped version")
	}
	if _, err := repo.GetCategory(ctx, 7); err != nil {
		t.Errorf("GetCategory() after rejected delete = %v", err)
	}

	id, err := repo.AddCategory(ctx, core.Category{Name: "Pets", Type: core.Expense, Color: "#654321", Icon: "heart"})
	if err != nil {
		t.Fatalf("AddCategory() error = %v", err)
	}
	if err := repo.DeleteCategory(ctx, id); err != nil {
		t.Fatalf("DeleteCategory() error = %v", err)
	}
	if _, err := repo.GetCategory(ctx, id); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetCategory() = %v, want ErrNotFound", err)
	}
}

func TestBudgetRoundTripAndFilter(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t, filepath.Join(t.TempDir(), "budget.db"))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	recurring := true
	in := core.Budget{CategoryID: 5, Amount: core.Money{Cents: 10000}, Period: core.Monthly, StartDate: start, EndDate: &end, Name: "Food", IsRecurring: &recurring}

	id, err := repo.AddBudget(ctx, in)
	if err != nil {
		t.Fatalf("AddBudget() error = %v", err)
	}
	if _, err := repo.AddBudget(ctx, core.Budget{CategoryID: 5, Amount: core.Money{Cents: 500}, Period: core.Weekly, StartDate: start}); err != nil {
		t.Fatalf("AddBudget() error = %v", err)
	}

	got, err := repo.GetBudget(ctx, id)
	if err != nil {
		t.Fatalf("GetBudget() error = %v", err)
	}
	want := in
	want.ID = id
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetBudget() = %+v, want %+v", got, want)
	}

	monthly, err := repo.ListBudgets(ctx, store.BudgetFilter{Period: core.Monthly, CategoryID: 5})
	if err != nil || len(monthly) != 1 || monthly[0].ID != id {
		t.Errorf("ListBudgets() = %+v, %v", monthly, err)
	}

	amount := core.Money{Cents: 20000}
	if err := repo.UpdateBudget(ctx, id, core.BudgetPatch{Amount: &amount}); err != nil {
		t.Fatalf("UpdateBudget() error = %v", err)
	}
	got, _ = repo.GetBudget(ctx, id)
	if got.Amount.Cents != 20000 || got.EndDate == nil || !got.EndDate.Equal(end) {
		t.Errorf("UpdateBudget() result = %+v", got)
	}
	if err := repo.UpdateBudget(ctx, 404, core.BudgetPatch{Amount: &amount}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpdateBudget(missing) = %v, want ErrNotFound", err)
	}
}
