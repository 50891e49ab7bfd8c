package handlers

import (
	"context"
	"net/http"
	"strings"

	"postcraft/internal/middleware"
	"postcraft/internal/session"
)

const maxOwnerIDLen = 200

// SessionStore issues and ends owner sessions. *session.Store satisfies it.
type SessionStore interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

type devSessionRequest struct {
	OwnerID string `json:"ownerId"`
	Email   string `json:"email"`
}

// IssueDevSession handles POST /api/session. It is only routed outside
// production: it signs the caller in as the given owner, or as the owner
// already resolved for the request (the development owner).
func (a *API) IssueDevSession(w http.ResponseWriter, r *http.Request) {
	if a.sessions == nil {
		writeError(w, http.StatusServiceUnavailable, "Sessions are not configured")
		return
	}
	var req devSessionRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req, maxBodyBytes) {
		return
	}
	owner := strings.TrimSpace(req.OwnerID)
	if owner == "" {
		owner = middleware.OwnerFromCtx(r.Context())
	}
	if owner == "" {
		writeError(w, http.StatusBadRequest, "Owner id is required")
		return
	}
	if len(owner) > maxOwnerIDLen {
		writeError(w, http.StatusBadRequest, "Owner id is too long")
		return
	}

	if _, err := a.sessions.Create(r.Context(), w, &session.Data{OwnerID: owner, Email: req.Email}); err != nil {
		a.logger.Error("issue session failed", "error", err, "owner", owner)
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	a.logger.Info("development session issued", "owner", owner)
	writeJSON(w, http.StatusCreated, map[string]string{"ownerId": owner})
}

// SignOut handles DELETE /api/session. Without a session it still succeeds.
func (a *API) SignOut(w http.ResponseWriter, r *http.Request) {
	if a.sessions != nil {
		if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
			a.logger.Error("sign out failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to end session")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
