package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/stoke/internal/auth"
	"github.com/dukerupert/stoke/internal/store"
)

type PointsHandler struct {
	users  *store.UserStore
	logger *slog.Logger
}

func NewPointsHandler(us *store.UserStore, logger *slog.Logger) *PointsHandler {
	return &PointsHandler{users: us, logger: logger}
}

// Balance returns the caller's current points balance.
func (h *PointsHandler) Balance(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get user", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"points": user.Points})
}
