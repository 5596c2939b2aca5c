package handlers

import (
	"net/http"

	"github.com/abrezinsky/stageplot/internal/auth"
)

// handleLogin checks the editor password and sets the session cookie
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	token, err := h.Auth.Login(req.Password)
	if err != nil {
		respondError(w, Unauthorized("Invalid password"))
		return
	}

	h.Auth.SetCookie(w, token)
	respondSuccess(w, "Logged in")
}

// handleLogout clears the session
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := auth.TokenFromRequest(r); token != "" {
		h.Auth.Logout(token)
	}

	auth.ClearCookie(w)
	respondSuccess(w, "Logged out")
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondOK(w, map[string]string{"status": "ok"})
}
