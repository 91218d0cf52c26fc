package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/stoke/internal/auth"
	"github.com/dukerupert/stoke/internal/award"
	"github.com/dukerupert/stoke/internal/model"
	"github.com/dukerupert/stoke/internal/store"
	"github.com/dukerupert/stoke/internal/websocket"
)

type MilestoneHandler struct {
	award      *award.Service
	milestones *store.MilestoneStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewMilestoneHandler(svc *award.Service, ms *store.MilestoneStore, hub *websocket.Hub, logger *slog.Logger) *MilestoneHandler {
	return &MilestoneHandler{award: svc, milestones: ms, hub: hub, logger: logger}
}

type milestoneRequest struct {
	Title  string `json:"title"`
	Points int    `json:"points"`
}

func (h *MilestoneHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req milestoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Points < 0 {
		writeError(w, http.StatusBadRequest, "points must not be negative")
		return
	}

	m, err := h.milestones.Create(auth.UserID(r.Context()), req.Title, req.Points)
	if err != nil {
		h.logger.Error("create milestone", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create milestone")
		return
	}

	writeJSON(w, http.StatusCreated, m)
}

func (h *MilestoneHandler) List(w http.ResponseWriter, r *http.Request) {
	milestones, err := h.milestones.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list milestones", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list milestones")
		return
	}
	if milestones == nil {
		milestones = []model.Milestone{}
	}
	writeJSON(w, http.StatusOK, milestones)
}

// Complete awards the milestone's points through the award service so the
// flag flip and balance update commit together.
func (h *MilestoneHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	userID := auth.UserID(r.Context())
	points, err := h.award.CompleteMilestone(r.Context(), userID, id)
	if err != nil {
		writeAwardError(w, err)
		return
	}

	if h.hub != nil {
		h.hub.Publish(userID, websocket.NewEvent("milestone", "completed", map[string]any{
			"milestone_id":   id,
			"points_awarded": points,
		}))
		h.hub.Publish(userID, websocket.NewEvent("points", "changed", map[string]any{
			"delta": points,
		}))
	}

	writeJSON(w, http.StatusOK, map[string]int{"points_awarded": points})
}

func (h *MilestoneHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	m, err := h.milestones.GetByID(id)
	if err != nil {
		h.logger.Error("get milestone", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get milestone")
		return
	}
	if m == nil {
		writeError(w, http.StatusNotFound, "milestone not found")
		return
	}
	if m.UserID != auth.UserID(r.Context()) {
		writeError(w, http.StatusForbidden, "not your milestone")
		return
	}

	if err := h.milestones.Delete(id); err != nil {
		h.logger.Error("delete milestone", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete milestone")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
