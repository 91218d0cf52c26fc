package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/stoke/internal/auth"
	"github.com/dukerupert/stoke/internal/model"
	"github.com/dukerupert/stoke/internal/store"
)

type GoalHandler struct {
	goals     *store.GoalStore
	templates *store.TemplateStore
	logger    *slog.Logger
}

func NewGoalHandler(gs *store.GoalStore, ts *store.TemplateStore, logger *slog.Logger) *GoalHandler {
	return &GoalHandler{goals: gs, templates: ts, logger: logger}
}

type goalRequest struct {
	TemplateID   int64  `json:"template_id"`
	Month        string `json:"month"`
	TargetCount  int    `json:"target_count"`
	AllowNextDay bool   `json:"allow_next_day"`
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if _, err := time.Parse(model.MonthLayout, req.Month); err != nil {
		writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
		return
	}
	if req.TargetCount < 0 {
		writeError(w, http.StatusBadRequest, "target_count must not be negative")
		return
	}

	userID := auth.UserID(r.Context())

	// The goal must point at one of the caller's own templates
	tmpl, err := h.templates.GetByID(req.TemplateID)
	if err != nil {
		h.logger.Error("get template", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to check template")
		return
	}
	if tmpl == nil || tmpl.UserID != userID {
		writeError(w, http.StatusBadRequest, "template not found")
		return
	}

	goal, err := h.goals.Create(userID, req.TemplateID, req.Month, req.TargetCount, req.AllowNextDay)
	if err != nil {
		h.logger.Error("create goal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create goal")
		return
	}

	writeJSON(w, http.StatusCreated, goal)
}

func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	goals, err := h.goals.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list goals", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list goals")
		return
	}
	if goals == nil {
		goals = []model.MonthlyGoal{}
	}
	writeJSON(w, http.StatusOK, goals)
}

func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	goal, ok := h.owned(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.owned(w, r)
	if !ok {
		return
	}

	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if _, err := time.Parse(model.MonthLayout, req.Month); err != nil {
		writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
		return
	}
	if req.TargetCount < 0 {
		writeError(w, http.StatusBadRequest, "target_count must not be negative")
		return
	}

	goal, err := h.goals.Update(existing.ID, req.Month, req.TargetCount, req.AllowNextDay)
	if err != nil {
		h.logger.Error("update goal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update goal")
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.owned(w, r)
	if !ok {
		return
	}

	if err := h.goals.Delete(existing.ID); err != nil {
		h.logger.Error("delete goal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete goal")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *GoalHandler) owned(w http.ResponseWriter, r *http.Request) (*model.MonthlyGoal, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}

	goal, err := h.goals.GetByID(id)
	if err != nil {
		h.logger.Error("get goal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get goal")
		return nil, false
	}
	if goal == nil {
		writeError(w, http.StatusNotFound, "goal not found")
		return nil, false
	}
	if goal.UserID != auth.UserID(r.Context()) {
		writeError(w, http.StatusForbidden, "not your goal")
		return nil, false
	}
	return goal, true
}
