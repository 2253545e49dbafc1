package storage

import (
	"database/sql"
	"encoding/json"
	"time"

	"fintrack/internal/core"
)

type transactionRow struct {
	ID            int64  `db:"id"`
	Type          string `db:"type"`
	AmountCents   int64  `db:"amount_cents"`
	CategoryID    int64  `db:"category_id"`
	Date          int64  `db:"date"`
	Description   string `db:"description"`
	Notes         string `db:"notes"`
	ReceiptImage  string `db:"receipt_image"`
	PaymentMethod string `db:"payment_method"`
	Location      string `db:"location"`
	Labels        string `db:"labels"`
	CreatedAt     int64  `db:"created_at"`
	UpdatedAt     int64  `db:"updated_at"`
}

type categoryRow struct {
	ID    int64  `db:"id"`
	Name  string `db:"name"`
	Type  string `db:"type"`
	Color string `db:"color"`
	Icon  string `db:"icon"`
}

type budgetRow struct {
	ID          int64         `db:"id"`
	CategoryID  int64         `db:"category_id"`
	AmountCents int64         `db:"amount_cents"`
	Period      string        `db:"period"`
	StartDate   int64         `db:"start_date"`
	EndDate     sql.NullInt64 `db:"end_date"`
	Name        string        `db:"name"`
	IsRecurring sql.NullBool  `db:"is_recurring"`
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func toTransactionRow(t core.Transaction) (transactionRow, error) {
	// nil encodes as null and an empty list as [], so both read back as written.
	encoded, err := json.Marshal(t.Labels)
	if err != nil {
		return transactionRow{}, err
	}
	return transactionRow{
		ID:            t.ID,
		Type:          string(t.Type),
		AmountCents:   t.Amount.Cents,
		CategoryID:    t.CategoryID,
		Date:          toMillis(t.Date),
		Description:   t.Description,
		Notes:         t.Notes,
		ReceiptImage:  t.ReceiptImage,
		PaymentMethod: t.PaymentMethod,
		Location:      t.Location,
		Labels:        string(encoded),
		CreatedAt:     toMillis(t.CreatedAt),
		UpdatedAt:     toMillis(t.UpdatedAt),
	}, nil
}

func (r transactionRow) toCore() (core.Transaction, error) {
	var labels []string
	if r.Labels != "" {
		if err := json.Unmarshal([]byte(r.Labels), &labels); err != nil {
			return core.Transaction{}, err
		}
	}
	return core.Transaction{
		ID:            r.ID,
		Type:          core.TransactionType(r.Type),
		Amount:        core.Money{Cents: r.AmountCents},
		CategoryID:    r.CategoryID,
		Date:          fromMillis(r.Date),
		Description:   r.Description,
		Notes:         r.Notes,
		ReceiptImage:  r.ReceiptImage,
		PaymentMethod: r.PaymentMethod,
		Location:      r.Location,
		Labels:        labels,
		CreatedAt:     fromMillis(r.CreatedAt),
		UpdatedAt:     fromMillis(r.UpdatedAt),
	}, nil
}

func toCategoryRow(c core.Category) categoryRow {
	return categoryRow{
		ID:    c.ID,
		Name:  c.Name,
		Type:  string(c.Type),
		Color: c.Color,
		Icon:  c.Icon,
	}
}

func (r categoryRow) toCore() core.Category {
	return core.Category{
		ID:    r.ID,
		Name:  r.Name,
		Type:  core.TransactionType(r.Type),
		Color: r.Color,
		Icon:  r.Icon,
	}
}

func toBudgetRow(b core.Budget) budgetRow {
	row := budgetRow{
		ID:          b.ID,
		CategoryID:  b.CategoryID,
		AmountCents: b.Amount.Cents,
		Period:      string(b.Period),
		StartDate:   toMillis(b.StartDate),
		Name:        b.Name,
	}
	if b.EndDate != nil {
		row.EndDate = sql.NullInt64{Int64: toMillis(*b.EndDate), Valid: true}
	}
	if b.IsRecurring != nil {
		row.IsRecurring = sql.NullBool{Bool: *b.IsRecurring, Valid: true}
	}
	return row
}

func (r budgetRow) toCore() core.Budget {
	b := core.Budget{
		ID:         r.ID,
		CategoryID: r.CategoryID,
		Amount:     core.Money{Cents: r.AmountCents},
		Period:     core.Period(r.Period),
		StartDate:  fromMillis(r.StartDate),
		Name:       r.Name,
	}
	if r.EndDate.Valid {
		end := fromMillis(r.EndDate.Int64)
		b.EndDate = &end
	}
	if r.IsRecurring.Valid {
		v := r.IsRecurring.Bool
		b.IsRecurring = &v
	}
	return b
}
