package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

type userCheckRequest struct {
	Username string `json:"username"`
}

// UserCheck reports whether any attempt has ever been recorded under the
// username. There is no account system; the username string is the identity.
func (a *App) UserCheck(w http.ResponseWriter, r *http.Request) {
	var req userCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "username is required")
		return
	}

	exists, err := a.Attempts.HasAttempts(r.Context(), req.Username)
	if err != nil {
		a.Logger.Error().Err(err).Msg("user check failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to check user")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"exists": exists})
}
