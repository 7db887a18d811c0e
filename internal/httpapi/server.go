// Package httpapi is the browser-facing HTTP surface. Handlers are thin:
// they resolve the current user, call into quiz, mastery and the
// collaborator client, and map errors to status codes.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/learnflow/learnflow/internal/curriculum"
	"github.com/learnflow/learnflow/internal/events"
	"github.com/learnflow/learnflow/internal/identity"
	"github.com/learnflow/learnflow/internal/instructor"
	"github.com/learnflow/learnflow/internal/mastery"
	"github.com/learnflow/learnflow/internal/progress"
	"github.com/learnflow/learnflow/internal/quiz"
	"github.com/learnflow/learnflow/internal/struggle"
)

const readyTimeout = 2 * time.Second

// ProgressSource fetches learner progress reports.
type ProgressSource interface {
	GetProgress(ctx context.Context, userID string) (progress.Report, error)
}

// StruggleSource lists unresolved struggle alerts.
type StruggleSource interface {
	ListStruggles(ctx context.Context) ([]struggle.Alert, error)
	ListUserStruggles(ctx context.Context, userID string) ([]struggle.Alert, error)
}

// Check reports whether a dependency is ready.
type Check func(ctx context.Context) error

// Deps holds the server's dependencies. Events defaults to a no-op logger
// and a nil Feed disables the live alert route.
type Deps struct {
	Catalog    curriculum.Catalog
	Progress   ProgressSource
	Struggles  StruggleSource
	Sessions   *identity.Sessions
	Quizzes    *quiz.Registry
	Events     events.Logger
	Feed       *instructor.Feed
	Thresholds mastery.Thresholds
	CookieName string
	Checks     map[string]Check
}

// Server serves the BFF routes.
type Server struct {
	deps Deps
}

// New creates a server.
func New(deps Deps) *Server {
	if deps.Events == nil {
		deps.Events = events.NopLogger{}
	}
	if deps.Thresholds == (mastery.Thresholds{}) {
		deps.Thresholds = mastery.DefaultThresholds
	}
	if deps.CookieName == "" {
		deps.CookieName = "better-auth.session_token"
	}
	return &Server{deps: deps}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("GET /api/curriculum", s.handleListModules)
	mux.HandleFunc("GET /api/curriculum/{moduleId}", s.handleGetModule)
	mux.HandleFunc("GET /api/dashboard", s.withUser(s.handleDashboard))

	mux.HandleFunc("GET /api/modules/{moduleId}/quiz", s.withUser(s.handleQuizSnapshot))
	mux.HandleFunc("POST /api/modules/{moduleId}/quiz", s.withUser(s.handleQuizLoad))
	mux.HandleFunc("DELETE /api/modules/{moduleId}/quiz", s.withUser(s.handleQuizDiscard))
	mux.HandleFunc("PUT /api/modules/{moduleId}/quiz/answers/{questionId}", s.withUser(s.handleQuizAnswer))
	mux.HandleFunc("POST /api/modules/{moduleId}/quiz/navigate", s.withUser(s.handleQuizNavigate))
	mux.HandleFunc("POST /api/modules/{moduleId}/quiz/submit", s.withUser(s.handleQuizSubmit))

	mux.HandleFunc("GET /api/instructor/struggles", s.withInstructor(s.handleStruggles))
	mux.HandleFunc("GET /api/instructor/struggles.xlsx", s.withInstructor(s.handleStrugglesExport))
	mux.HandleFunc("GET /api/instructor/struggles/live", s.withInstructor(s.handleStrugglesLive))

	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	return mux
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	failed := map[string]string{}
	for name, check := range s.deps.Checks {
		if err := check(ctx); err != nil {
			slog.Warn("readiness check failed", "check", name, "error", err)
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not ready", "failed": failed})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
