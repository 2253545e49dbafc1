package core

import "time"

// Severity bands for budget progress.
const (
	SeverityLow      Severity = "low"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

const (
	DayOfMonth  BucketUnit = "day"
	MonthOfYear BucketUnit = "month"
)

const (
	ReportMonth ReportPeriod = "month"
	ReportYear  ReportPeriod = "year"
)

// UnknownCategoryName and UnknownCategoryColor label totals whose category
// no longer exists.
const (
	UnknownCategoryName  = "Unknown"
	UnknownCategoryColor = "#888888"
)

type (
	Severity     string
	BucketUnit   string
	ReportPeriod string

	// CategoryAmount is one category total.
	CategoryAmount struct {
		CategoryID int64  `json:"category"`
		Name       string `json:"name"`
		Color      string `json:"color"`
		Icon       Icon   `json:"icon"`
		Amount     Money  `json:"amount"`
	}

	// TimeBucket holds income and expense totals for one calendar slot.
	TimeBucket struct {
		Index   int       `json:"index"`
		Label   string    `json:"label"`
		Start   time.Time `json:"start"`
		Income  Money     `json:"income"`
		Expense Money     `json:"expense"`
	}

	Summary struct {
		Income  Money `json:"income"`
		Expense Money `json:"expense"`
		Balance Money `json:"balance"`
	}

	// Window is an inclusive instant range. End before Start means empty.
	Window struct {
		Start time.Time `json:"start"`
		End   time.Time `json:"end"`
	}

	BudgetStatus struct {
		Budget    Budget   `json:"budget"`
		Category  Category `json:"category"`
		Name      string   `json:"name"`
		Window    Window   `json:"window"`
		Spent     Money    `json:"spent"`
		Remaining Money    `json:"remaining"`
		Progress  int      `json:"progress"`
		Severity  Severity `json:"severity"`
	}

	Report struct {
		Period     ReportPeriod     `json:"period"`
		Label      string           `json:"label"`
		Start      time.Time        `json:"start"`
		End        time.Time        `json:"end"`
		Summary    Summary          `json:"summary"`
		ByCategory []CategoryAmount `json:"byCategory"`
		Timeline   []TimeBucket     `json:"timeline"`
	}

	Dashboard struct {
		Year       int              `json:"year"`
		Month      int              `json:"month"`
		Summary    Summary          `json:"summary"`
		ByCategory []CategoryAmount `json:"byCategory"`
		Recent     []Transaction    `json:"recent"`
	}

	// DayGroup is the transactions of one calendar day, keyed YYYY-MM-DD.
	DayGroup struct {
		Day          string        `json:"day"`
		Transactions []Transaction `json:"transactions"`
	}
)

func (w Window) Empty() bool {
	return w.End.Before(w.Start)
}

// Contains reports whether t lies in the window, both ends inclusive.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

func (p ReportPeriod) IsValid() bool {
	return p == ReportMonth || p == ReportYear
}
