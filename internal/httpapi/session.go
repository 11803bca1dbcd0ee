package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"internhunt-engine/internal/auth"
	"internhunt-engine/internal/store"
)

const sessionCookie = "internhunt_session"

type userKey struct{}

func userFrom(ctx context.Context) (store.User, bool) {
	u, ok := ctx.Value(userKey{}).(store.User)
	return u, ok
}

// sessionToken reads a bearer token, falling back to the session cookie.
func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// optionalUser resolves the session when present. Errors other than a
// missing session are returned.
func optionalUser(r *http.Request, svc *auth.Service) (store.User, error) {
	tok := sessionToken(r)
	if tok == "" || svc == nil {
		return store.User{}, nil
	}
	u, err := svc.CurrentUser(r.Context(), tok)
	if errors.Is(err, auth.ErrNoSession) {
		return store.User{}, nil
	}
	return u, err
}

// RequireUser rejects requests without a live session.
func RequireUser(svc *auth.Service) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			u, err := svc.CurrentUser(r.Context(), sessionToken(r))
			if err != nil {
				if errors.Is(err, auth.ErrNoSession) {
					writeAuthError(w, r, err)
					return
				}
				writeStoreError(w, r, "Failed to load session: ", err)
				return
			}
			next(w, r.WithContext(context.WithValue(r.Context(), userKey{}, u)))
		}
	}
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, s store.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    s.Token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
