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

type RewardHandler struct {
	award   *award.Service
	rewards *store.RewardStore
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewRewardHandler(svc *award.Service, rs *store.RewardStore, hub *websocket.Hub, logger *slog.Logger) *RewardHandler {
	return &RewardHandler{award: svc, rewards: rs, hub: hub, logger: logger}
}

type rewardRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PointCost   int    `json:"point_cost"`
}

func (h *RewardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req rewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.PointCost <= 0 {
		writeError(w, http.StatusBadRequest, "point_cost must be positive")
		return
	}

	reward, err := h.rewards.Create(auth.UserID(r.Context()), req.Title, req.Description, req.PointCost)
	if err != nil {
		h.logger.Error("create reward", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create reward")
		return
	}

	writeJSON(w, http.StatusCreated, reward)
}

func (h *RewardHandler) List(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.rewards.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list rewards", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list rewards")
		return
	}
	if rewards == nil {
		rewards = []model.Reward{}
	}
	writeJSON(w, http.StatusOK, rewards)
}

func (h *RewardHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.owned(w, r)
	if !ok {
		return
	}
	if existing.Redeemed {
		writeError(w, http.StatusConflict, "reward already redeemed")
		return
	}

	var req rewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.PointCost <= 0 {
		writeError(w, http.StatusBadRequest, "point_cost must be positive")
		return
	}

	reward, err := h.rewards.Update(existing.ID, req.Title, req.Description, req.PointCost)
	if err != nil {
		h.logger.Error("update reward", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update reward")
		return
	}

	writeJSON(w, http.StatusOK, reward)
}

// Redeem spends points on the reward. The balance check happens inside the
// award transaction, so a racing redemption cannot overspend.
func (h *RewardHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	userID := auth.UserID(r.Context())
	cost, err := h.award.RedeemReward(r.Context(), userID, id)
	if err != nil {
		writeAwardError(w, err)
		return
	}

	if h.hub != nil {
		h.hub.Publish(userID, websocket.NewEvent("reward", "redeemed", map[string]any{
			"reward_id":    id,
			"points_spent": cost,
		}))
		h.hub.Publish(userID, websocket.NewEvent("points", "changed", map[string]any{
			"delta": -cost,
		}))
	}

	writeJSON(w, http.StatusOK, map[string]int{"points_spent": cost})
}

func (h *RewardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.owned(w, r)
	if !ok {
		return
	}

	if err := h.rewards.Delete(existing.ID); err != nil {
		h.logger.Error("delete reward", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete reward")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Redemptions lists the caller's redemption ledger, newest first.
func (h *RewardHandler) Redemptions(w http.ResponseWriter, r *http.Request) {
	redemptions, err := h.rewards.ListRedemptionsByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list redemptions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list redemptions")
		return
	}
	if redemptions == nil {
		redemptions = []model.RewardRedemption{}
	}
	writeJSON(w, http.StatusOK, redemptions)
}

func (h *RewardHandler) owned(w http.ResponseWriter, r *http.Request) (*model.Reward, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}

	reward, err := h.rewards.GetByID(id)
	if err != nil {
		h.logger.Error("get reward", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get reward")
		return nil, false
	}
	if reward == nil {
		writeError(w, http.StatusNotFound, "reward not found")
		return nil, false
	}
	if reward.UserID != auth.UserID(r.Context()) {
		writeError(w, http.StatusForbidden, "not your reward")
		return nil, false
	}
	return reward, true
}
