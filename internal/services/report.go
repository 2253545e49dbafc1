package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

// AggregateByCategory totals amounts per category, largest first. Ties keep
// the order in which categories first appear in txs. Totals for categories
// missing from categories are labelled Unknown.
func AggregateByCategory(txs []core.Transaction, categories []core.Category) []core.CategoryAmount {
	index := make(map[int64]int)
	var out []core.CategoryAmount
	for _, t := range txs {
		i, ok := index[t.CategoryID]
		if !ok {
			i = len(out)
			index[t.CategoryID] = i
			out = append(out, categoryAmount(t.CategoryID, categories))
		}
		out[i].Amount = out[i].Amount.Add(t.Amount)
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Amount.Cents > out[b].Amount.Cents
	})
	return out
}

func categoryAmount(id int64, categories []core.Category) core.CategoryAmount {
	c, ok := findCategory(categories, id)
	if !ok {
		return core.CategoryAmount{
			CategoryID: id,
			Name:       core.UnknownCategoryName,
			Color:      core.UnknownCategoryColor,
			Icon:       core.IconUnknown,
		}
	}
	return core.CategoryAmount{
		CategoryID: id,
		Name:       c.Name,
		Color:      c.Color,
		Icon:       core.ResolveIcon(c.Icon),
	}
}

// AggregateByTimeBucket splits txs into calendar buckets of unit, computed in
// loc. Every bucket is returned in calendar order, zero filled: all days of
// rangeStart's month for DayOfMonth, Jan through Dec of rangeStart's year for
// MonthOfYear. Transactions outside [rangeStart, rangeEnd] are ignored.
func AggregateByTimeBucket(txs []core.Transaction, unit core.BucketUnit, rangeStart, rangeEnd time.Time, loc *time.Location) ([]core.TimeBucket, error) {
	if loc == nil {
		loc = time.UTC
	}
	ref := rangeStart.In(loc)

	var (
		buckets []core.TimeBucket
		slot    func(time.Time) (int, bool)
	)
	switch unit {
	case core.MonthOfYear:
		year := ref.Year()
		buckets = make([]core.TimeBucket, 12)
		for i := range buckets {
			m := time.Month(i + 1)
			buckets[i] = core.TimeBucket{Index: i, Label: m.String()[:3], Start: time.Date(year, m, 1, 0, 0, 0, 0, loc)}
		}
		slot = func(t time.Time) (int, bool) {
			return int(t.Month()) - 1, t.Year() == year
		}
	case core.DayOfMonth:
		year, month := ref.Year(), ref.Month()
		days := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
		buckets = make([]core.TimeBucket, days)
		for i := range buckets {
			buckets[i] = core.TimeBucket{Index: i, Label: strconv.Itoa(i + 1), Start: time.Date(year, month, i+1, 0, 0, 0, 0, loc)}
		}
		slot = func(t time.Time) (int, bool) {
			return t.Day() - 1, t.Year() == year && t.Month() == month
		}
	default:
		return nil, fmt.Errorf("unknown bucket unit %q", unit)
	}

	for _, t := range txs {
		if t.Date.Before(rangeStart) || t.Date.After(rangeEnd) {
			continue
		}
		i, ok := slot(t.Date.In(loc))
		if !ok {
			continue
		}
		switch t.Type {
		case core.Income:
			buckets[i].Income = buckets[i].Income.Add(t.Amount)
		case core.Expense:
			buckets[i].Expense = buckets[i].Expense.Add(t.Amount)
		}
	}
	return buckets, nil
}

// Totals sums income and expense; Balance is income minus expense.
func Totals(txs []core.Transaction) core.Summary {
	var s core.Summary
	for _, t := range txs {
		switch t.Type {
		case core.Income:
			s.Income = s.Income.Add(t.Amount)
		case core.Expense:
			s.Expense = s.Expense.Add(t.Amount)
		}
	}
	s.Balance = s.Income.Sub(s.Expense)
	return s
}

// PeriodRange returns the first and last millisecond of the month or year
// containing ref, in loc.
func PeriodRange(period core.ReportPeriod, ref time.Time, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	ref = ref.In(loc)
	var start, next time.Time
	switch period {
	case core.ReportMonth:
		start = time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc)
		next = start.AddDate(0, 1, 0)
	case core.ReportYear:
		start = time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, loc)
		next = start.AddDate(1, 0, 0)
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown report period %q", period)
	}
	return start, next.Add(-time.Millisecond), nil
}

// PeriodLabel renders "January 2024" for months and "2024" for years.
func PeriodLabel(period core.ReportPeriod, ref time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	if period == core.ReportYear {
		return strconv.Itoa(ref.In(loc).Year())
	}
	return ref.In(loc).Format("January 2006")
}

// ShiftPeriod moves ref by n months or years, anchored on the first of the
// period so that month lengths never skip a month.
func ShiftPeriod(period core.ReportPeriod, ref time.Time, n int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	ref = ref.In(loc)
	if period == core.ReportYear {
		return time.Date(ref.Year()+n, time.January, 1, 0, 0, 0, 0, loc)
	}
	return time.Date(ref.Year(), ref.Month()+time.Month(n), 1, 0, 0, 0, 0, loc)
}

// bucketUnitFor picks the timeline granularity of a report period.
func bucketUnitFor(period core.ReportPeriod) core.BucketUnit {
	if period == core.ReportYear {
		return core.MonthOfYear
	}
	return core.DayOfMonth
}

// SearchTransactions keeps transactions whose description or notes contain
// query, ignoring case. An empty query keeps everything.
func SearchTransactions(txs []core.Transaction, query string) []core.Transaction {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return txs
	}
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if strings.Contains(strings.ToLower(t.Description), query) || strings.Contains(strings.ToLower(t.Notes), query) {
			out = append(out, t)
		}
	}
	return out
}

// GroupByDay groups transactions by calendar day in loc. Days appear in order
// of first occurrence; transactions keep their input order within a day.
func GroupByDay(txs []core.Transaction, loc *time.Location) []core.DayGroup {
	if loc == nil {
		loc = time.UTC
	}
	index := map[string]int{}
	var groups []core.DayGroup
	for _, t := range txs {
		day := t.Date.In(loc).Format("2006-01-02")
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, core.DayGroup{Day: day})
		}
		groups[i].Transactions = append(groups[i].Transactions, t)
	}
	return groups
}
