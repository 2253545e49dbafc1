package http

import (
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// resource names an API collection in error messages and list hints.
type resource struct {
	name string
	list string
}

var (
	transactionsResource = resource{name: "transaction", list: "/api/transactions"}
	categoriesResource   = resource{name: "category", list: "/api/categories"}
	budgetsResource      = resource{name: "budget", list: "/api/budgets"}
	reportsResource      = resource{name: "report", list: "/api/reports"}
)

// Verbs used in storage failure messages.
const (
	verbSave   = "saving"
	verbLoad   = "loading"
	verbDelete = "deleting"
)

// StatusFor maps a service error to its HTTP status:
// validation 422, category in use 409, missing entity 404, anything else 500.
func StatusFor(err error) int {
	var (
		validation *core.ValidationError
		inUse      *core.CategoryInUseError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity
	case errors.As(err, &inUse):
		return http.StatusConflict
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError renders err. Storage failures are logged and replaced by
// a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, res resource, verb string) {
	status := StatusFor(err)
	switch status {
	case http.StatusUnprocessableEntity:
		var validation *core.ValidationError
		errors.As(err, &validation)
		ErrorResponse(status, ErrorBody{Error: validation.Error(), Field: validation.Field}).Write(w)
	case http.StatusConflict:
		ErrorResponse(status, ErrorBody{Error: err.Error()}).Write(w)
	case http.StatusNotFound:
		NotFoundError(res.name+" not found", res.list).Write(w)
	default:
		fields := log.NewFields().WithError(err)
		fields[log.FieldPath] = r.URL.Path
		fields[log.FieldTable] = res.name
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", fields.ToSlice()...)
		InternalServerError("Error " + verb + " " + res.name + ". Please try again.").Write(w)
	}
}
