package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/stoke/internal/auth"
	"github.com/dukerupert/stoke/internal/award"
	"github.com/dukerupert/stoke/internal/model"
	"github.com/dukerupert/stoke/internal/store"
	"github.com/dukerupert/stoke/internal/streak"
	"github.com/dukerupert/stoke/internal/websocket"
)

type EntryHandler struct {
	award   *award.Service
	goals   *store.GoalStore
	entries *store.EntryStore
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewEntryHandler(svc *award.Service, gs *store.GoalStore, es *store.EntryStore, hub *websocket.Hub, logger *slog.Logger) *EntryHandler {
	return &EntryHandler{award: svc, goals: gs, entries: es, hub: hub, logger: logger}
}

func (h *EntryHandler) publish(userID int64, ev websocket.Event) {
	if h.hub != nil {
		h.hub.Publish(userID, ev)
	}
}

type logEntryRequest struct {
	TargetDate string `json:"target_date"`
	Value      any    `json:"value"`
}

// Log records an entry for a goal and awards points. The response carries the
// awarded points and the streak state after this entry.
func (h *EntryHandler) Log(w http.ResponseWriter, r *http.Request) {
	goalID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req logEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.TargetDate == "" {
		req.TargetDate = time.Now().UTC().Format(model.DateLayout)
	}

	userID := auth.UserID(r.Context())
	result, err := h.award.LogEntry(r.Context(), userID, goalID, req.TargetDate, req.Value)
	if err != nil {
		writeAwardError(w, err)
		return
	}

	h.publish(userID, websocket.NewEvent("entry", "logged", map[string]any{
		"goal_id":        goalID,
		"entry_id":       result.EntryID,
		"points_awarded": result.PointsAwarded,
		"streak":         result.Streak.CurrentStreak,
	}))
	if result.PointsAwarded != 0 {
		h.publish(userID, websocket.NewEvent("points", "changed", map[string]any{
			"delta": result.PointsAwarded,
		}))
	}

	writeJSON(w, http.StatusCreated, result)
}

// Undo deletes an entry. Points already awarded stay on the balance; the next
// log recomputes the streak from the remaining history.
func (h *EntryHandler) Undo(w http.ResponseWriter, r *http.Request) {
	goalID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	entryID := r.PathValue("entry_id")
	if entryID == "" {
		writeError(w, http.StatusBadRequest, "invalid entry_id")
		return
	}

	userID := auth.UserID(r.Context())

	entry, err := h.entries.GetByID(entryID)
	if err != nil {
		h.logger.Error("get entry", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if entry == nil || entry.MonthlyGoalID != goalID {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	if entry.UserID != userID {
		writeError(w, http.StatusForbidden, "not your entry")
		return
	}

	if err := h.entries.Delete(entryID); err != nil {
		h.logger.Error("delete entry", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.publish(userID, websocket.NewEvent("entry", "undone", map[string]any{
		"goal_id":  goalID,
		"entry_id": entryID,
	}))

	w.WriteHeader(http.StatusNoContent)
}

type streakResponse struct {
	Streak        streak.Info `json:"streak"`
	RecentHistory []bool      `json:"recent_history"`
}

// Streak reports the goal's current streak state and a completion window for
// display, evaluated as of today without writing anything.
func (h *EntryHandler) Streak(w http.ResponseWriter, r *http.Request) {
	goalID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	userID := auth.UserID(r.Context())

	goal, err := h.goals.GetByID(goalID)
	if err != nil {
		h.logger.Error("get goal", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if goal == nil {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	}
	if goal.UserID != userID {
		writeError(w, http.StatusForbidden, "not your goal")
		return
	}

	today := time.Now().UTC()
	since := today.AddDate(0, 0, -(streak.MaxLookbackDays - 1)).Format(model.DateLayout)
	entries, err := h.entries.ListForGoalSince(goalID, since)
	if err != nil {
		h.logger.Error("list entries", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, streakResponse{
		Streak:        streak.Evaluate(entries, today),
		RecentHistory: streak.RecentHistory(entries, today, streak.DefaultWindowDays),
	})
}

// ListForGoal returns the goal's entries for the current month view.
func (h *EntryHandler) ListForGoal(w http.ResponseWriter, r *http.Request) {
	goalID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	userID := auth.UserID(r.Context())

	goal, err := h.goals.GetByID(goalID)
	if err != nil {
		h.logger.Error("get goal", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if goal == nil {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	}
	if goal.UserID != userID {
		writeError(w, http.StatusForbidden, "not your goal")
		return
	}

	entries, err := h.entries.ListForGoal(goalID)
	if err != nil {
		h.logger.Error("list entries", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if entries == nil {
		entries = []model.HabitEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
