package httpapi

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/learnflow/learnflow/internal/identity"
)

type userHandler func(w http.ResponseWriter, r *http.Request, u identity.User)

// sessionToken reads the session cookie (plain or __Secure- prefixed) or a
// bearer token.
func (s *Server) sessionToken(r *http.Request) string {
	for _, name := range []string{s.deps.CookieName, "__Secure-" + s.deps.CookieName} {
		if c, err := r.Cookie(name); err == nil && c.Value != "" {
			return c.Value
		}
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

func (s *Server) withUser(h userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := s.deps.Sessions.Current(r.Context(), s.sessionToken(r))
		if err != nil {
			writeError(w, err)
			return
		}
		h(w, r, u)
	}
}

func (s *Server) withInstructor(h userHandler) http.HandlerFunc {
	return s.withUser(func(w http.ResponseWriter, r *http.Request, u identity.User) {
		if !u.IsInstructor() {
			slog.Warn("instructor route refused", "user_id", u.ID, "role", u.Role, "path", r.URL.Path)
			writeError(w, errForbidden)
			return
		}
		h(w, r, u)
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Sessions.Invalidate(r.Context(), s.sessionToken(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
