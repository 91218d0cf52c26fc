package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/stoke/internal/auth"
	"github.com/dukerupert/stoke/internal/model"
	"github.com/dukerupert/stoke/internal/store"
)

type TemplateHandler struct {
	templates *store.TemplateStore
	logger    *slog.Logger
}

func NewTemplateHandler(ts *store.TemplateStore, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{templates: ts, logger: logger}
}

type templateRequest struct {
	Name          string `json:"name"`
	BasePoints    int    `json:"base_points"`
	PartialPoints int    `json:"partial_points"`
	ShowUpPoints  int    `json:"show_up_points"`
	AllowShowUp   bool   `json:"allow_show_up"`
}

func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.BasePoints < 0 || req.PartialPoints < 0 || req.ShowUpPoints < 0 {
		writeError(w, http.StatusBadRequest, "point values must not be negative")
		return
	}

	tmpl, err := h.templates.Create(auth.UserID(r.Context()), req.Name, req.BasePoints, req.PartialPoints, req.ShowUpPoints, req.AllowShowUp)
	if err != nil {
		h.logger.Error("create template", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create template")
		return
	}

	writeJSON(w, http.StatusCreated, tmpl)
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templates.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list templates", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list templates")
		return
	}
	if templates == nil {
		templates = []model.HabitTemplate{}
	}
	writeJSON(w, http.StatusOK, templates)
}

func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	tmpl, ok := h.owned(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.owned(w, r)
	if !ok {
		return
	}

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.BasePoints < 0 || req.PartialPoints < 0 || req.ShowUpPoints < 0 {
		writeError(w, http.StatusBadRequest, "point values must not be negative")
		return
	}

	tmpl, err := h.templates.Update(existing.ID, req.Name, req.BasePoints, req.PartialPoints, req.ShowUpPoints, req.AllowShowUp)
	if err != nil {
		h.logger.Error("update template", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update template")
		return
	}

	writeJSON(w, http.StatusOK, tmpl)
}

func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.owned(w, r)
	if !ok {
		return
	}

	if err := h.templates.Delete(existing.ID); err != nil {
		h.logger.Error("delete template", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete template")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// owned loads the template from the path ID and enforces ownership, writing
// the error response itself when the check fails.
func (h *TemplateHandler) owned(w http.ResponseWriter, r *http.Request) (*model.HabitTemplate, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}

	tmpl, err := h.templates.GetByID(id)
	if err != nil {
		h.logger.Error("get template", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get template")
		return nil, false
	}
	if tmpl == nil {
		writeError(w, http.StatusNotFound, "template not found")
		return nil, false
	}
	if tmpl.UserID != auth.UserID(r.Context()) {
		writeError(w, http.StatusForbidden, "not your template")
		return nil, false
	}
	return tmpl, true
}
