package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dukerupert/stoke/internal/award"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIDParam(r *http.Request) (int64, error) {
	idStr := r.PathValue("id")
	return strconv.ParseInt(idStr, 10, 64)
}

// writeAwardError maps award service sentinels to HTTP statuses. Anything
// unrecognized is a 500 with a generic body.
func writeAwardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, award.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, award.ErrUnauthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, award.ErrAlreadyLogged),
		errors.Is(err, award.ErrAlreadyCompleted),
		errors.Is(err, award.ErrAlreadyRedeemed):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, award.ErrInsufficientPoints),
		errors.Is(err, award.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
