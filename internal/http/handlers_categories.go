package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	typ, err := ParseTransactionType(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	cats, err := s.finance.ListCategories(r.Context(), typ)
	if err != nil {
		writeServiceError(w, r, err, categoriesResource, verbLoad)
		return
	}
	NewResponse().JSON(map[string]any{"categories": orEmpty(cats)}).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var c core.Category
	if err := DecodeJSON(w, r, &c); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	c.ID = 0

	saved, err := s.finance.CreateCategory(r.Context(), c)
	if err != nil {
		writeServiceError(w, r, err, categoriesResource, verbSave)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Category created",
		log.FieldOperation, log.OpCreate,
		log.FieldEntityID, saved.ID,
		"name", saved.Name)
	NewResponse().Status(http.StatusCreated).JSON(saved).Write(w)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	c, err := s.finance.GetCategory(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, categoriesResource, verbLoad)
		return
	}
	NewResponse().JSON(c).Write(w)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	var patch core.CategoryPatch
	if err := DecodeJSON(w, r, &patch); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	c, err := s.finance.UpdateCategory(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, err, categoriesResource, verbSave)
		return
	}
	NewResponse().JSON(c).Write(w)
}

// handleDeleteCategory answers 409 while transactions still use the category.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if err := s.finance.DeleteCategory(r.Context(), id); err != nil {
		writeServiceError(w, r, err, categoriesResource, verbDelete)
		return
	}
	NoContent().Write(w)
}
