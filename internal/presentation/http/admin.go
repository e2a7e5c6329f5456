package httppresentation

import (
	"net/http"

	"github.com/Zhima-Mochi/lessonshop/internal/observability"
	"github.com/Zhima-Mochi/lessonshop/internal/observability/logctx"
)

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	key, err := h.deps.Admin.Login(req.Username, req.Password)
	if err != nil {
		logctx.FromOr(r.Context(), h.log).Warn("admin_login_rejected",
			observability.F("username_length", len(req.Username)),
		)
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Message: "Login successful", AdminKey: key})
}

// requireAdmin rejects requests whose x-admin-key header does not match.
func (h *Handler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.deps.Admin.CheckKey(r.Header.Get(headerAdminKey)); err != nil {
			writeMessage(w, http.StatusForbidden, "Forbidden")
			return
		}
		next(w, r)
	}
}
