package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	"starscape-server/internal/auth"
	"starscape-server/internal/shared/config"
	"starscape-server/internal/shared/errors"
	"starscape-server/internal/shared/response"
)

type TokenHandler struct {
	logger *slog.Logger
}

func NewTokenHandler(logger *slog.Logger) *TokenHandler {
	return &TokenHandler{logger: logger}
}

// IssueToken handles POST /api/auth/token: exchanges the admin password for
// a bearer token. The comparison is constant-time.
func (h *TokenHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("handler", "issue_token")

	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	expected := config.GlobalConfig.Auth.AdminPassword
	if expected == "" {
		response.Error(w, r, logger, errors.Unauthorized("admin access is not configured"))
		return
	}
	if subtle.ConstantTimeCompare([]byte(body.Password), []byte(expected)) != 1 {
		logger.Warn("Failed admin authentication attempt", "remote_addr", r.RemoteAddr)
		response.Error(w, r, logger, errors.Unauthorized("invalid credentials"))
		return
	}

	token, err := auth.GenerateAdminJWT()
	if err != nil {
		response.Error(w, r, logger, errors.WrapInternal("failed to generate token", err))
		return
	}

	logger.Info("Admin token issued", "remote_addr", r.RemoteAddr)
	response.Success(w, http.StatusOK, map[string]string{"token": token})
}
