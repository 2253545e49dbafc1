package http

import (
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q, err := ParseTransactionQuery(r.URL.Query(), s.finance.Location())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	if strings.EqualFold(r.URL.Query().Get("group"), "day") {
		groups, err := s.finance.ListTransactionsByDay(r.Context(), q)
		if err != nil {
			writeServiceError(w, r, err, transactionsResource, verbLoad)
			return
		}
		NewResponse().JSON(map[string]any{"days": orEmpty(groups)}).Write(w)
		return
	}

	txs, err := s.finance.ListTransactions(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, err, transactionsResource, verbLoad)
		return
	}
	NewResponse().JSON(map[string]any{"transactions": orEmpty(txs)}).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var t core.Transaction
	if err := DecodeJSON(w, r, &t); err != nil {
		writeDecodeError(w, r, err, transactionsResource)
		return
	}
	t.ID = 0

	saved, err := s.finance.CreateTransaction(r.Context(), t)
	if err != nil {
		writeServiceError(w, r, err, transactionsResource, verbSave)
		return
	}

	fields := log.NewFields().
		WithOperation(log.OpCreate).
		WithEntity("transactions", saved.ID).
		WithTransaction(string(saved.Type), saved.Amount.Cents, saved.CategoryID)
	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction created", fields.ToSlice()...)

	NewResponse().Status(http.StatusCreated).JSON(saved).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	t, err := s.finance.GetTransaction(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, transactionsResource, verbLoad)
		return
	}
	NewResponse().JSON(t).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	var patch core.TransactionPatch
	if err := DecodeJSON(w, r, &patch); err != nil {
		writeDecodeError(w, r, err, transactionsResource)
		return
	}
	t, err := s.finance.UpdateTransaction(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, err, transactionsResource, verbSave)
		return
	}
	fields := log.NewFields().
		WithOperation(log.OpUpdate).
		WithEntity("transactions", t.ID).
		WithTransaction(string(t.Type), t.Amount.Cents, t.CategoryID)
	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction updated", fields.ToSlice()...)

	NewResponse().JSON(t).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if err := s.finance.DeleteTransaction(r.Context(), id); err != nil {
		writeServiceError(w, r, err, transactionsResource, verbDelete)
		return
	}
	fields := log.NewFields().WithOperation(log.OpDelete).WithEntity("transactions", id)
	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction deleted", fields.ToSlice()...)

	NoContent().Write(w)
}

// writeDecodeError reports an unreadable body as 400, or as 422 when the
// body was well formed but carried an invalid amount.
func writeDecodeError(w http.ResponseWriter, r *http.Request, err error, res resource) {
	if StatusFor(err) == http.StatusUnprocessableEntity {
		writeServiceError(w, r, err, res, verbSave)
		return
	}
	BadRequestError(err.Error()).Write(w)
}

// orEmpty keeps empty lists encoded as [] rather than null.
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
