package http

import (
	"net/http"
	"strconv"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	var filter store.BudgetFilter
	query := r.URL.Query()
	if v := strings.TrimSpace(query.Get("period")); v != "" {
		p := core.Period(strings.ToLower(v))
		if !p.IsValid() {
			BadRequestError("invalid period " + strconv.Quote(v)).Write(w)
			return
		}
		filter.Period = p
	}
	if v := strings.TrimSpace(query.Get("category")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			BadRequestError("invalid category " + strconv.Quote(v)).Write(w)
			return
		}
		filter.CategoryID = id
	}

	budgets, err := s.finance.ListBudgets(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err, budgetsResource, verbLoad)
		return
	}
	NewResponse().JSON(map[string]any{"budgets": orEmpty(budgets)}).Write(w)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var b core.Budget
	if err := DecodeJSON(w, r, &b); err != nil {
		writeDecodeError(w, r, err, budgetsResource)
		return
	}
	b.ID = 0

	saved, err := s.finance.CreateBudget(r.Context(), b)
	if err != nil {
		writeServiceError(w, r, err, budgetsResource, verbSave)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(saved).Write(w)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	b, err := s.finance.GetBudget(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, budgetsResource, verbLoad)
		return
	}
	NewResponse().JSON(b).Write(w)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	var patch core.BudgetPatch
	if err := DecodeJSON(w, r, &patch); err != nil {
		writeDecodeError(w, r, err, budgetsResource)
		return
	}
	b, err := s.finance.UpdateBudget(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, err, budgetsResource, verbSave)
		return
	}
	NewResponse().JSON(b).Write(w)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if err := s.finance.DeleteBudget(r.Context(), id); err != nil {
		writeServiceError(w, r, err, budgetsResource, verbDelete)
		return
	}
	NoContent().Write(w)
}

func (s *Server) handleBudgetStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.finance.BudgetStatuses(r.Context())
	if err != nil {
		writeServiceError(w, r, err, budgetsResource, verbLoad)
		return
	}
	NewResponse().JSON(map[string]any{"budgets": orEmpty(statuses)}).Write(w)
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	status, err := s.finance.BudgetStatus(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, budgetsResource, verbLoad)
		return
	}
	NewResponse().JSON(status).Write(w)
}
