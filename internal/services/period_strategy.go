// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for budget period lengths.
// Each period (daily, weekly, monthly, yearly) has its own strategy that
// advances an instant by exactly one period using calendar arithmetic.

package services

import (
	"fmt"
	"time"

	"fintrack/internal/core"
)

// PeriodAdvancer is the strategy interface for one budget period length.
type PeriodAdvancer interface {
	// Advance returns t moved forward by one period. Calendar fields are
	// computed in loc so that day and month boundaries follow local time.
	Advance(t time.Time, loc *time.Location) time.Time
}

// DailyAdvancer adds one calendar day.
type DailyAdvancer struct{}

func (DailyAdvancer) Advance(t time.Time, loc *time.Location) time.Time {
	return t.In(loc).AddDate(0, 0, 1)
}

// WeeklyAdvancer adds seven calendar days.
type WeeklyAdvancer struct{}

func (WeeklyAdvancer) Advance(t time.Time, loc *time.Location) time.Time {
	return t.In(loc).AddDate(0, 0, 7)
}

// MonthlyAdvancer adds one calendar month. Day overflow normalizes forward:
// Jan 31 advances to Mar 3, or Mar 2 in a leap year.
type MonthlyAdvancer struct{}

func (MonthlyAdvancer) Advance(t time.Time, loc *time.Location) time.Time {
	return t.In(loc).AddDate(0, 1, 0)
}

// YearlyAdvancer adds one calendar year; Feb 29 advances to Mar 1.
type YearlyAdvancer struct{}

func (YearlyAdvancer) Advance(t time.Time, loc *time.Location) time.Time {
	return t.In(loc).AddDate(1, 0, 0)
}

// periodStrategies maps budget periods to their advancers.
var periodStrategies = map[core.Period]PeriodAdvancer{
	core.Daily:   DailyAdvancer{},
	core.Weekly:  WeeklyAdvancer{},
	core.Monthly: MonthlyAdvancer{},
	core.Yearly:  YearlyAdvancer{},
}

// GetPeriodAdvancer returns the advancer for a period.
// Returns an error if the period is not supported.
func GetPeriodAdvancer(period core.Period) (PeriodAdvancer, error) {
	advancer, ok := periodStrategies[period]
	if !ok {
		return nil, fmt.Errorf("unknown budget period %q: %w", period, core.ErrInvalidPeriod)
	}
	return advancer, nil
}
