package services

import (
	"math"
	"time"

	"fintrack/internal/core"
)

// Severity thresholds, in percent of the budget consumed.
const (
	warningThreshold  = 70
	criticalThreshold = 90
)

// ResolveWindow returns the span a budget's spend is measured over:
// from StartDate to the earlier of now and the period end. The period end is
// EndDate when set, otherwise StartDate advanced by one period. There is no
// roll-over; once the period end passes, the window stays fixed. A budget
// starting after now yields an empty window.
func ResolveWindow(b core.Budget, now time.Time, loc *time.Location) (core.Window, error) {
	if loc == nil {
		loc = time.UTC
	}
	periodEnd, err := PeriodEnd(b, loc)
	if err != nil {
		return core.Window{}, err
	}
	end := periodEnd
	if now.Before(end) {
		end = now
	}
	return core.Window{Start: b.StartDate, End: end.UTC()}, nil
}

// PeriodEnd is EndDate when present, otherwise StartDate plus one period.
func PeriodEnd(b core.Budget, loc *time.Location) (time.Time, error) {
	if b.EndDate != nil {
		return *b.EndDate, nil
	}
	advancer, err := GetPeriodAdvancer(b.Period)
	if err != nil {
		return time.Time{}, err
	}
	return advancer.Advance(b.StartDate, loc).UTC(), nil
}

// Spend sums the transactions in the budget's category dated inside its
// current window, both ends inclusive.
func Spend(b core.Budget, txs []core.Transaction, now time.Time, loc *time.Location) (core.Money, error) {
	w, err := ResolveWindow(b, now, loc)
	if err != nil {
		return core.Money{}, err
	}
	return spendInWindow(b.CategoryID, w, txs), nil
}

func spendInWindow(categoryID int64, w core.Window, txs []core.Transaction) core.Money {
	var total core.Money
	if w.Empty() {
		return total
	}
	for _, t := range txs {
		if t.CategoryID == categoryID && w.Contains(t.Date) {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// SpendFor looks the budget up by id. It yields zero when the budget does not
// exist or its category has been deleted.
func SpendFor(budgetID int64, budgets []core.Budget, categories []core.Category, txs []core.Transaction, now time.Time, loc *time.Location) (core.Money, error) {
	for _, b := range budgets {
		if b.ID != budgetID {
			continue
		}
		if _, ok := findCategory(categories, b.CategoryID); !ok {
			return core.Money{}, nil
		}
		return Spend(b, txs, now, loc)
	}
	return core.Money{}, nil
}

// Progress is the rounded percentage of limit consumed, capped at 100.
// A zero limit reports 0.
func Progress(spent, limit core.Money) int {
	if limit.Cents <= 0 {
		return 0
	}
	ratio := float64(spent.Cents) / float64(limit.Cents)
	if ratio > 1 {
		ratio = 1
	}
	if ratio < 0 {
		ratio = 0
	}
	return int(math.Round(ratio * 100))
}

// Remaining is limit minus spent, never below zero.
func Remaining(spent, limit core.Money) core.Money {
	if spent.Cents >= limit.Cents {
		return core.Money{}
	}
	return limit.Sub(spent)
}

func SeverityFor(progress int) core.Severity {
	switch {
	case progress >= criticalThreshold:
		return core.SeverityCritical
	case progress >= warningThreshold:
		return core.SeverityWarning
	default:
		return core.SeverityLow
	}
}

// BuildStatus derives every displayed value of a budget.
func BuildStatus(b core.Budget, category core.Category, txs []core.Transaction, now time.Time, loc *time.Location) (core.BudgetStatus, error) {
	w, err := ResolveWindow(b, now, loc)
	if err != nil {
		return core.BudgetStatus{}, err
	}
	spent := spendInWindow(b.CategoryID, w, txs)
	progress := Progress(spent, b.Amount)
	return core.BudgetStatus{
		Budget:    b,
		Category:  category,
		Name:      b.DisplayName(category),
		Window:    w,
		Spent:     spent,
		Remaining: Remaining(spent, b.Amount),
		Progress:  progress,
		Severity:  SeverityFor(progress),
	}, nil
}

func findCategory(categories []core.Category, id int64) (core.Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return core.Category{}, false
}
