package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/erazemk/foodrescue/internal/auth"
	"github.com/erazemk/foodrescue/internal/model"
	"github.com/erazemk/foodrescue/internal/store"
)

// SessionHandler handles picking and leaving a role.
type SessionHandler struct {
	DB     *sql.DB
	Secret string
}

type sessionRequest struct {
	Role  string `json:"role"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type sessionResponse struct {
	Token string `json:"token,omitempty"`
	Role  string `json:"role"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Start handles POST /api/session.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role != model.RoleDonor && role != model.RoleVolunteer {
		jsonError(w, http.StatusBadRequest, "role must be donor or volunteer")
		return
	}

	id := model.NewIdentity(req.Name, req.Phone)
	if err := id.Validate(); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := auth.GenerateToken(h.Secret, role, id)
	if err != nil {
		slog.Error("issuing session", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	slog.Info("session started", "role", role, "name", id.Name)
	jsonResponse(w, http.StatusOK, sessionResponse{Token: token, Role: role, Name: id.Name, Phone: id.Phone})
}

// Get handles GET /api/session.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	jsonResponse(w, http.StatusOK, sessionResponse{Role: claims.Role, Name: claims.Name, Phone: claims.Phone})
}

// Logout handles POST /api/session/logout.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	expires := time.Now().Add(auth.TokenExpiry)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}

	if err := store.RevokeSession(r.Context(), h.DB, claims.ID, expires); err != nil {
		slog.Error("ending session", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to end session")
		return
	}

	slog.Info("session ended", "role", claims.Role, "name", claims.Name)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}
