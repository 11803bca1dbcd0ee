package httpapi

import (
	"net/http"
	"time"

	"internhunt-engine/internal/auth"
	"internhunt-engine/internal/store"
)

type AuthHandler struct {
	Auth *auth.Service
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	OK        bool        `json:"ok"`
	User      *store.User `json:"user"`
	Token     string      `json:"token,omitempty"`
	ExpiresAt string      `json:"expires_at,omitempty"`
}

func (h AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := decodeJSON(r, &c); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}
	u, s, err := h.Auth.SignUp(r.Context(), c.Email, c.Password)
	if err != nil {
		writeAuthError(w, r, err)
		return
	}
	h.opened(w, r, http.StatusCreated, u, s)
}

func (h AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := decodeJSON(r, &c); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}
	u, s, err := h.Auth.SignIn(r.Context(), c.Email, c.Password)
	if err != nil {
		writeAuthError(w, r, err)
		return
	}
	h.opened(w, r, http.StatusOK, u, s)
}

func (h AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.SignOut(r.Context(), sessionToken(r)); err != nil {
		writeStoreError(w, r, "Failed to sign out: ", err)
		return
	}
	clearSessionCookie(w)
	writeJSON(w, map[string]any{"ok": true})
}

// Session reports the signed-in user, or null when there is none.
func (h AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	u, err := optionalUser(r, h.Auth)
	if err != nil {
		writeStoreError(w, r, "Failed to load session: ", err)
		return
	}
	if u.ID == "" {
		writeJSON(w, sessionResponse{OK: true})
		return
	}
	writeJSON(w, sessionResponse{OK: true, User: &u})
}

func (h AuthHandler) opened(w http.ResponseWriter, r *http.Request, status int, u store.User, s store.Session) {
	setSessionCookie(w, r, s)
	WriteJSON(w, status, sessionResponse{
		OK:        true,
		User:      &u,
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt.UTC().Format(time.RFC3339),
	})
}
