package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/store"
)

// RecentLimit is the number of transactions shown on the dashboard.
const RecentLimit = 5

// ChangePublisher announces committed writes. *amqp.Client implements it.
type ChangePublisher interface {
	PublishChange(ctx context.Context, msg *amqp.ChangeMessage) error
}

// Options tunes a FinanceService. Zero values select defaults.
type Options struct {
	Location  *time.Location
	CacheSize int
	CacheTTL  time.Duration
	Now       func() time.Time
}

// FinanceService orchestrates validation, store writes, change publication
// and cached reporting. Every write is awaited; publication failures are
// logged and never fail the request.
type FinanceService struct {
	store     store.Store
	publisher ChangePublisher
	loc       *time.Location
	now       func() time.Time

	reports    *cache.Versioned[core.Report]
	dashboards *cache.Versioned[core.Dashboard]
}

func NewFinanceService(st store.Store, publisher ChangePublisher, opts Options) *FinanceService {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &FinanceService{
		store:      st,
		publisher:  publisher,
		loc:        opts.Location,
		now:        opts.Now,
		reports:    cache.NewVersioned[core.Report](opts.CacheSize, opts.CacheTTL),
		dashboards: cache.NewVersioned[core.Dashboard](opts.CacheSize, opts.CacheTTL),
	}
}

// Location is the zone calendar arithmetic is done in.
func (s *FinanceService) Location() *time.Location { return s.loc }

// Caches exposes the report caches for periodic cleanup.
func (s *FinanceService) Caches() []cache.Cleaner {
	return []cache.Cleaner{s.reports, s.dashboards}
}

// TransactionQuery selects transactions for listing. Search matches
// description or notes, ignoring case.
type TransactionQuery struct {
	Filter store.TransactionFilter
	Search string
}

func (s *FinanceService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.Date = core.NormalizeInstant(t.Date)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.requireCategory(ctx, t.CategoryID); err != nil {
		return core.Transaction{}, err
	}

	id, err := s.store.AddTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	saved, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load transaction: %w", err)
	}
	s.publish(ctx, amqp.NewChangeMessage(amqp.TableTransactions, amqp.OpCreated, id).ForMonth(saved.Date, s.loc))
	return saved, nil
}

// UpdateTransaction applies patch. When the date moves to another month both
// months are announced.
func (s *FinanceService) UpdateTransaction(ctx context.Context, id int64, patch core.TransactionPatch) (core.Transaction, error) {
	current, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	next := patch.Apply(current)
	if err := next.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if next.CategoryID != current.CategoryID {
		if err := s.requireCategory(ctx, next.CategoryID); err != nil {
			return core.Transaction{}, err
		}
	}

	if err := s.store.UpdateTransaction(ctx, id, patch); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	saved, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load transaction: %w", err)
	}

	s.publish(ctx, amqp.NewChangeMessage(amqp.TableTransactions, amqp.OpUpdated, id).ForMonth(saved.Date, s.loc))
	if !sameMonth(current.Date, saved.Date, s.loc) {
		s.publish(ctx, amqp.NewChangeMessage(amqp.TableTransactions, amqp.OpUpdated, id).ForMonth(current.Date, s.loc))
	}
	return saved, nil
}

func (s *FinanceService) DeleteTransaction(ctx context.Context, id int64) error {
	current, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.publish(ctx, amqp.NewChangeMessage(amqp.TableTransactions, amqp.OpDeleted, id).ForMonth(current.Date, s.loc))
	return nil
}

func (s *FinanceService) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

// ListTransactions returns matching transactions, newest first unless the
// filter asks for ascending order.
func (s *FinanceService) ListTransactions(ctx context.Context, q TransactionQuery) ([]core.Transaction, error) {
	filter := q.Filter
	if filter.Order == "" {
		filter.Order = store.OrderDateDesc
	}
	limit := filter.Limit
	if q.Search != "" {
		// The limit applies after searching.
		filter.Limit = 0
	}
	txs, err := s.store.ListTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	txs = SearchTransactions(txs, q.Search)
	if limit > 0 && len(txs) > limit {
		txs = txs[:limit]
	}
	return txs, nil
}

// ListTransactionsByDay groups ListTransactions results by calendar day.
func (s *FinanceService) ListTransactionsByDay(ctx context.Context, q TransactionQuery) ([]core.DayGroup, error) {
	txs, err := s.ListTransactions(ctx, q)
	if err != nil {
		return nil, err
	}
	return GroupByDay(txs, s.loc), nil
}

func (s *FinanceService) requireCategory(ctx context.Context, id int64) error {
	_, err := s.store.GetCategory(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return core.NewValidationError("category", core.ErrUnknownCategory)
	}
	if err != nil {
		return fmt.Errorf("load category: %w", err)
	}
	return nil
}

// CreateCategory fills in the default color and icon when they are blank.
func (s *FinanceService) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if c.Color == "" {
		c.Color = core.DefaultCategoryColor
	}
	if c.Icon == "" {
		c.Icon = core.DefaultCategoryIcon
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	id, err := s.store.AddCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("save category: %w", err)
	}
	c.ID = id
	s.publish(ctx, amqp.NewChangeMessage(amqp.TableCategories, amqp.OpCreated, id))
	return c, nil
}

func (s *FinanceService) UpdateCategory(ctx context.Context, id int64, patch core.CategoryPatch) (core.Category, error) {
	current, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, err
	}
	next := patch.Apply(current)
	if err := next.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := s.store.UpdateCategory(ctx, id, patch); err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	s.publish(ctx, amqp.NewChangeMessage(amqp.TableCategories, amqp.OpUpdated, id))
	return next, nil
}

// DeleteCategory refuses while transactions reference the category; the
// returned error is a *core.CategoryInUseError.
func (s *FinanceService) DeleteCategory(ctx context.Context, id int64) error {
	err := s.store.DeleteCategory(ctx, id)
	var inUse *core.CategoryInUseError
	switch {
	case err == nil:
	case errors.As(err, &inUse), errors.Is(err, store.ErrNotFound):
		return err
	default:
		return fmt.Errorf("delete category: %w", err)
	}
	s.publish(ctx, amqp.NewChangeMessage(amqp.TableCategories, amqp.OpDeleted, id))
	return nil
}

func (s *FinanceService) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	return s.store.GetCategory(ctx, id)
}

// ListCategories lists every category, or only those of typ when set.
func (s *FinanceService) ListCategories(ctx context.Context, typ core.TransactionType) ([]core.Category, error) {
	cats, err := s.store.ListCategories(ctx, typ)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// CreateBudget applies creation defaults: StartDate is now, EndDate is one
// period after StartDate and IsRecurring is true.
func (s *FinanceService) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if b.StartDate.IsZero() {
		b.StartDate = s.now()
	}
	b.StartDate = core.NormalizeInstant(b.StartDate)
	if b.EndDate == nil && b.Period.IsValid() {
		end, err := PeriodEnd(b, s.loc)
		if err != nil {
			return core.Budget{}, err
		}
		end = core.NormalizeInstant(end)
		b.EndDate = &end
	}
	if b.IsRecurring == nil {
		recurring := true
		b.IsRecurring = &recurring
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	if err := s.requireExpenseCategory(ctx, b.CategoryID); err != nil {
		return core.Budget{}, err
	}

	id, err := s.store.AddBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("save budget: %w", err)
	}
	b.ID = id
	s.publish(ctx, amqp.NewChangeMessage(amqp.TableBudgets, amqp.OpCreated, id))
	return b, nil
}

func (s *FinanceService) UpdateBudget(ctx context.Context, id int64, patch core.BudgetPatch) (core.Budget, error) {
	current, err := s.store.GetBudget(ctx, id)
	if err != nil {
		return core.Budget{}, err
	}
	next := patch.Apply(current)
	// A cleared end date falls back to one period after the start, as on creation.
	if patch.ClearEndDate && next.Period.IsValid() {
		end, err := PeriodEnd(next, s.loc)
		if err != nil {
			return core.Budget{}, err
		}
		end = core.NormalizeInstant(end)
		patch.ClearEndDate = false
		patch.EndDate = &end
		next.EndDate = &end
	}
	if err := next.Validate(); err != nil {
		return core.Budget{}, err
	}
	if next.CategoryID != current.CategoryID {
		if err := s.requireExpenseCategory(ctx, next.CategoryID); err != nil {
			return core.Budget{}, err
		}
	}
	if err := s.store.UpdateBudget(ctx, id, patch); err != nil {
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}
	s.publish(ctx, amqp.NewChangeMessage(amqp.TableBudgets, amqp.OpUpdated, id))
	return next, nil
}

// requireExpenseCategory rejects unknown and income categories.
func (s *FinanceService) requireExpenseCategory(ctx context.Context, id int64) error {
	cat, err := s.store.GetCategory(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return core.NewValidationError("category", core.ErrUnknownCategory)
	}
	if err != nil {
		return fmt.Errorf("load category: %w", err)
	}
	if cat.Type != core.Expense {
		return core.NewValidationError("category", core.ErrIncomeCategory)
	}
	return nil
}

func (s *FinanceService) DeleteBudget(ctx context.Context, id int64) error {
	if err := s.store.DeleteBudget(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete budget: %w", err)
	}
	s.publish(ctx, amqp.NewChangeMessage(amqp.TableBudgets, amqp.OpDeleted, id))
	return nil
}

func (s *FinanceService) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	return s.store.GetBudget(ctx, id)
}

func (s *FinanceService) ListBudgets(ctx context.Context, filter store.BudgetFilter) ([]core.Budget, error) {
	budgets, err := s.store.ListBudgets(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return budgets, nil
}

// BudgetStatuses reports every budget whose category still exists.
func (s *FinanceService) BudgetStatuses(ctx context.Context) ([]core.BudgetStatus, error) {
	budgets, err := s.store.ListBudgets(ctx, store.BudgetFilter{})
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	cats, err := s.store.ListCategories(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	now := s.now()
	statuses := make([]core.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		cat, ok := findCategory(cats, b.CategoryID)
		if !ok {
			continue
		}
		st, err := s.budgetStatus(ctx, b, cat, now)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

// BudgetStatus reports one budget. A budget whose category was deleted
// reports zero spend under the Unknown category.
func (s *FinanceService) BudgetStatus(ctx context.Context, id int64) (core.BudgetStatus, error) {
	b, err := s.store.GetBudget(ctx, id)
	if err != nil {
		return core.BudgetStatus{}, err
	}
	cat, err := s.store.GetCategory(ctx, b.CategoryID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		unknown := core.Category{ID: b.CategoryID, Name: core.UnknownCategoryName, Type: core.Expense, Color: core.UnknownCategoryColor, Icon: string(core.IconUnknown)}
		return BuildStatus(b, unknown, nil, s.now(), s.loc)
	case err != nil:
		return core.BudgetStatus{}, fmt.Errorf("load category: %w", err)
	}
	return s.budgetStatus(ctx, b, cat, s.now())
}

func (s *FinanceService) budgetStatus(ctx context.Context, b core.Budget, cat core.Category, now time.Time) (core.BudgetStatus, error) {
	w, err := ResolveWindow(b, now, s.loc)
	if err != nil {
		return core.BudgetStatus{}, err
	}
	var txs []core.Transaction
	if !w.Empty() {
		txs, err = s.store.ListTransactions(ctx, store.TransactionFilter{
			Type:       core.Expense,
			CategoryID: b.CategoryID,
			From:       w.Start,
			To:         w.End,
		})
		if err != nil {
			return core.BudgetStatus{}, fmt.Errorf("list budget transactions: %w", err)
		}
	}
	return BuildStatus(b, cat, txs, now, s.loc)
}

// Report totals the month or year containing ref. Results are cached until
// the next write to the store.
func (s *FinanceService) Report(ctx context.Context, period core.ReportPeriod, ref time.Time) (core.Report, error) {
	start, end, err := PeriodRange(period, ref, s.loc)
	if err != nil {
		return core.Report{}, err
	}
	key := string(period) + ":" + start.Format("2006-01")
	version := s.store.Version()
	if r, ok := s.reports.Get(key, version); ok {
		return r, nil
	}

	txs, err := s.store.ListTransactions(ctx, store.TransactionFilter{From: start, To: end})
	if err != nil {
		return core.Report{}, fmt.Errorf("list report transactions: %w", err)
	}
	cats, err := s.store.ListCategories(ctx, "")
	if err != nil {
		return core.Report{}, fmt.Errorf("list categories: %w", err)
	}
	timeline, err := AggregateByTimeBucket(txs, bucketUnitFor(period), start, end, s.loc)
	if err != nil {
		return core.Report{}, err
	}

	r := core.Report{
		Period:     period,
		Label:      PeriodLabel(period, start, s.loc),
		Start:      start.UTC(),
		End:        end.UTC(),
		Summary:    Totals(txs),
		ByCategory: AggregateByCategory(ofType(txs, core.Expense), cats),
		Timeline:   timeline,
	}
	s.reports.Set(key, version, r)
	return r, nil
}

// Dashboard summarizes the month containing ref and lists the most recent
// transactions overall.
func (s *FinanceService) Dashboard(ctx context.Context, ref time.Time) (core.Dashboard, error) {
	start, end, err := PeriodRange(core.ReportMonth, ref, s.loc)
	if err != nil {
		return core.Dashboard{}, err
	}
	key := start.Format("2006-01")
	version := s.store.Version()
	if d, ok := s.dashboards.Get(key, version); ok {
		return d, nil
	}

	txs, err := s.store.ListTransactions(ctx, store.TransactionFilter{From: start, To: end})
	if err != nil {
		return core.Dashboard{}, fmt.Errorf("list dashboard transactions: %w", err)
	}
	cats, err := s.store.ListCategories(ctx, "")
	if err != nil {
		return core.Dashboard{}, fmt.Errorf("list categories: %w", err)
	}
	recent, err := s.store.ListTransactions(ctx, store.TransactionFilter{Order: store.OrderDateDesc, Limit: RecentLimit})
	if err != nil {
		return core.Dashboard{}, fmt.Errorf("list recent transactions: %w", err)
	}

	d := core.Dashboard{
		Year:       start.Year(),
		Month:      int(start.Month()),
		Summary:    Totals(txs),
		ByCategory: AggregateByCategory(ofType(txs, core.Expense), cats),
		Recent:     recent,
	}
	s.dashboards.Set(key, version, d)
	return d, nil
}

// ReportData returns the rows behind a report, oldest first, for export.
func (s *FinanceService) ReportData(ctx context.Context, period core.ReportPeriod, ref time.Time) (export.ReportData, error) {
	start, end, err := PeriodRange(period, ref, s.loc)
	if err != nil {
		return export.ReportData{}, err
	}
	txs, err := s.store.ListTransactions(ctx, store.TransactionFilter{From: start, To: end, Order: store.OrderDateAsc})
	if err != nil {
		return export.ReportData{}, fmt.Errorf("list report transactions: %w", err)
	}
	cats, err := s.store.ListCategories(ctx, "")
	if err != nil {
		return export.ReportData{}, fmt.Errorf("list categories: %w", err)
	}
	return export.ReportData{
		Label:        PeriodLabel(period, start, s.loc),
		Year:         start.Year(),
		Transactions: txs,
		Categories:   cats,
	}, nil
}

// Snapshot exports every table.
func (s *FinanceService) Snapshot(ctx context.Context) (export.Snapshot, error) {
	return export.BuildSnapshot(ctx, s.store, s.now())
}

// Ready reports whether the store answers queries.
func (s *FinanceService) Ready(ctx context.Context) error {
	_, err := s.store.ListCategories(ctx, "")
	return err
}

func (s *FinanceService) publish(ctx context.Context, msg *amqp.ChangeMessage) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No change publisher configured, skipping change message",
			"table", msg.Table, "op", msg.Op, "entity_id", msg.EntityID)
		return
	}
	if err := s.publisher.PublishChange(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change message",
			"table", msg.Table, "op", msg.Op, "entity_id", msg.EntityID, "error", err)
	}
}

func ofType(txs []core.Transaction, typ core.TransactionType) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if t.Type == typ {
			out = append(out, t)
		}
	}
	return out
}

func sameMonth(a, b time.Time, loc *time.Location) bool {
	a, b = a.In(loc), b.In(loc)
	return a.Year() == b.Year() && a.Month() == b.Month()
}
