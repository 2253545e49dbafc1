package core

import (
	"regexp"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

type (
	TransactionType string

	// Period is the length of a budget window.
	Period string

	Transaction struct {
		ID            int64           `json:"id"`
		Type          TransactionType `json:"type"`
		Amount        Money           `json:"amount"`
		CategoryID    int64           `json:"category"`
		Date          time.Time       `json:"date"`
		Description   string          `json:"description"`
		Notes         string          `json:"notes,omitempty"`
		ReceiptImage  string          `json:"receiptImage,omitempty"` // base64 data URL
		PaymentMethod string          `json:"paymentMethod,omitempty"`
		Location      string          `json:"location,omitempty"`
		Labels        []string        `json:"labels,omitempty"`
		CreatedAt     time.Time       `json:"createdAt"`
		UpdatedAt     time.Time       `json:"updatedAt"`
	}

	Category struct {
		ID    int64           `json:"id"`
		Name  string          `json:"name"`
		Type  TransactionType `json:"type"`
		Color string          `json:"color"`
		Icon  string          `json:"icon"`
	}

	Budget struct {
		ID          int64      `json:"id"`
		CategoryID  int64      `json:"category"`
		Amount      Money      `json:"amount"`
		Period      Period     `json:"period"`
		StartDate   time.Time  `json:"startDate"`
		EndDate     *time.Time `json:"endDate,omitempty"`
		Name        string     `json:"name,omitempty"`
		IsRecurring *bool      `json:"isRecurring,omitempty"`
	}
)

// Defaults applied to categories created without color or icon.
const (
	DefaultCategoryColor = "#3B82F6"
	DefaultCategoryIcon  = "tag"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

func (p Period) IsValid() bool {
	switch p {
	case Daily, Weekly, Monthly, Yearly:
		return true
	default:
		return false
	}
}

// NormalizeInstant maps t to the precision kept by every store: UTC, milliseconds.
func NormalizeInstant(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

func (t Transaction) Validate() error {
	if !t.Type.IsValid() {
		return invalid("type", ErrInvalidType)
	}
	if t.Amount.Cents < 0 {
		return invalid("amount", ErrInvalidAmount)
	}
	if t.CategoryID <= 0 {
		return invalid("category", ErrMissingCategory)
	}
	if t.Date.IsZero() {
		return invalid("date", ErrInvalidDate)
	}
	if strings.TrimSpace(t.Description) == "" {
		return invalid("description", ErrEmptyDescription)
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid("name", ErrEmptyName)
	}
	if !c.Type.IsValid() {
		return invalid("type", ErrInvalidType)
	}
	if c.Color != "" && !hexColor.MatchString(c.Color) {
		return invalid("color", ErrInvalidColor)
	}
	return nil
}

func (b Budget) Validate() error {
	if b.CategoryID <= 0 {
		return invalid("category", ErrMissingCategory)
	}
	if b.Amount.Cents <= 0 {
		return invalid("amount", ErrInvalidAmount)
	}
	if !b.Period.IsValid() {
		return invalid("period", ErrInvalidPeriod)
	}
	if b.StartDate.IsZero() {
		return invalid("startDate", ErrInvalidDate)
	}
	if b.EndDate != nil && b.EndDate.Before(b.StartDate) {
		return invalid("endDate", ErrInvalidDate)
	}
	return nil
}

// DisplayName is the budget's own name, or the category name when it has none.
func (b Budget) DisplayName(category Category) string {
	if n := strings.TrimSpace(b.Name); n != "" {
		return n
	}
	return category.Name
}

// Patches carry the fields of a partial update; nil fields are left unchanged.
type (
	TransactionPatch struct {
		Type          *TransactionType `json:"type,omitempty"`
		Amount        *Money           `json:"amount,omitempty"`
		CategoryID    *int64           `json:"category,omitempty"`
		Date          *time.Time       `json:"date,omitempty"`
		Description   *string          `json:"description,omitempty"`
		Notes         *string          `json:"notes,omitempty"`
		ReceiptImage  *string          `json:"receiptImage,omitempty"`
		PaymentMethod *string          `json:"paymentMethod,omitempty"`
		Location      *string          `json:"location,omitempty"`
		Labels        *[]string        `json:"labels,omitempty"`
	}

	CategoryPatch struct {
		Name  *string          `json:"name,omitempty"`
		Type  *TransactionType `json:"type,omitempty"`
		Color *string          `json:"color,omitempty"`
		Icon  *string          `json:"icon,omitempty"`
	}

	BudgetPatch struct {
		CategoryID  *int64     `json:"category,omitempty"`
		Amount      *Money     `json:"amount,omitempty"`
		Period      *Period    `json:"period,omitempty"`
		StartDate   *time.Time `json:"startDate,omitempty"`
		EndDate     *time.Time `json:"endDate,omitempty"`
		Name        *string    `json:"name,omitempty"`
		IsRecurring *bool      `json:"isRecurring,omitempty"`

		// ClearEndDate drops the stored end date; it wins over EndDate.
		ClearEndDate bool `json:"clearEndDate,omitempty"`
	}
)

func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.CategoryID != nil {
		t.CategoryID = *p.CategoryID
	}
	if p.Date != nil {
		t.Date = NormalizeInstant(*p.Date)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.ReceiptImage != nil {
		t.ReceiptImage = *p.ReceiptImage
	}
	if p.PaymentMethod != nil {
		t.PaymentMethod = *p.PaymentMethod
	}
	if p.Location != nil {
		t.Location = *p.Location
	}
	if p.Labels != nil {
		t.Labels = nil
		if *p.Labels != nil {
			t.Labels = append([]string{}, (*p.Labels)...)
		}
	}
	return t
}

func (p CategoryPatch) Apply(c Category) Category {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
	return c
}

func (p BudgetPatch) Apply(b Budget) Budget {
	if p.CategoryID != nil {
		b.CategoryID = *p.CategoryID
	}
	if p.Amount != nil {
		b.Amount = *p.Amount
	}
	if p.Period != nil {
		b.Period = *p.Period
	}
	if p.StartDate != nil {
		b.StartDate = NormalizeInstant(*p.StartDate)
	}
	switch {
	case p.ClearEndDate:
		b.EndDate = nil
	case p.EndDate != nil:
		end := NormalizeInstant(*p.EndDate)
		b.EndDate = &end
	}
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.IsRecurring != nil {
		v := *p.IsRecurring
		b.IsRecurring = &v
	}
	return b
}
