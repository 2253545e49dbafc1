// This file implements parsing of path ids, query strings and request
// bodies into service arguments.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi"

	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/store"
)

// maxBodyBytes bounds request bodies; receipt images travel inline as data URLs.
const maxBodyBytes = 8 << 20

const dateLayout = "2006-01-02"

// ParseID reads the {id} path parameter.
func ParseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// ParseMonthRef reads year and month, defaulting to the month containing now.
// The result is the first instant of that month in loc.
func ParseMonthRef(query url.Values, now time.Time, loc *time.Location) (time.Time, error) {
	now = now.In(loc)
	year, month := now.Year(), int(now.Month())

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 || y > 9999 {
			return time.Time{}, fmt.Errorf("invalid year %q", v)
		}
		year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return time.Time{}, fmt.Errorf("invalid month %q", v)
		}
		month = m
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc), nil
}

// ParseReportPeriod reads ?period=, defaulting to month.
func ParseReportPeriod(query url.Values) (core.ReportPeriod, error) {
	v := strings.TrimSpace(query.Get("period"))
	if v == "" {
		return core.ReportMonth, nil
	}
	p := core.ReportPeriod(strings.ToLower(v))
	if !p.IsValid() {
		return "", fmt.Errorf("invalid period %q: must be month or year", v)
	}
	return p, nil
}

// ParseTransactionType reads ?type=; empty means any type.
func ParseTransactionType(query url.Values) (core.TransactionType, error) {
	v := strings.TrimSpace(query.Get("type"))
	if v == "" {
		return "", nil
	}
	t := core.TransactionType(strings.ToLower(v))
	if !t.IsValid() {
		return "", fmt.Errorf("invalid type %q: must be income or expense", v)
	}
	return t, nil
}

// ParseTransactionQuery reads the listing filters q, type, category, from,
// to, order and limit. Dates are RFC 3339 instants or YYYY-MM-DD days in loc;
// a plain day in to covers the whole day.
func ParseTransactionQuery(query url.Values, loc *time.Location) (services.TransactionQuery, error) {
	var q services.TransactionQuery
	q.Search = strings.TrimSpace(query.Get("q"))

	typ, err := ParseTransactionType(query)
	if err != nil {
		return q, err
	}
	q.Filter.Type = typ

	if v := strings.TrimSpace(query.Get("category")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return q, fmt.Errorf("invalid category %q", v)
		}
		q.Filter.CategoryID = id
	}
	if v := strings.TrimSpace(query.Get("from")); v != "" {
		from, _, err := parseInstant(v, loc)
		if err != nil {
			return q, fmt.Errorf("invalid from %q: %w", v, err)
		}
		q.Filter.From = from
	}
	if v := strings.TrimSpace(query.Get("to")); v != "" {
		to, dayOnly, err := parseInstant(v, loc)
		if err != nil {
			return q, fmt.Errorf("invalid to %q: %w", v, err)
		}
		if dayOnly {
			to = to.AddDate(0, 0, 1).Add(-time.Millisecond)
		}
		q.Filter.To = to
	}
	switch v := strings.ToLower(strings.TrimSpace(query.Get("order"))); v {
	case "":
	case string(store.OrderDateAsc), string(store.OrderDateDesc):
		q.Filter.Order = store.Order(v)
	default:
		return q, fmt.Errorf("invalid order %q: must be asc or desc", v)
	}
	if v := strings.TrimSpace(query.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return q, fmt.Errorf("invalid limit %q", v)
		}
		q.Filter.Limit = n
	}
	return q, nil
}

func parseInstant(v string, loc *time.Location) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(dateLayout, v, loc); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, false, errors.New("must be YYYY-MM-DD or RFC 3339")
	}
	return t, false, nil
}

// DecodeJSON decodes a bounded JSON request body into v.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		if errors.Is(err, core.ErrInvalidAmount) {
			return core.NewValidationError("amount", core.ErrInvalidAmount)
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
