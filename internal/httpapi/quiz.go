package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/learnflow/learnflow/internal/events"
	"github.com/learnflow/learnflow/internal/identity"
	"github.com/learnflow/learnflow/internal/quiz"
)

type loadRequest struct {
	Topic        string `json:"topic"`
	NumQuestions *int   `json:"num_questions"`
}

type answerRequest struct {
	Option *int `json:"option"`
}

type navigateRequest struct {
	Delta int `json:"delta"`
}

func (s *Server) handleQuizSnapshot(w http.ResponseWriter, r *http.Request, u identity.User) {
	sess, ok := s.deps.Quizzes.Lookup(u.ID, r.PathValue("moduleId"))
	if !ok {
		writeJSON(w, http.StatusOK, quiz.Snapshot{State: quiz.Idle, Answers: quiz.Answers{}})
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleQuizLoad(w http.ResponseWriter, r *http.Request, u identity.User) {
	var body loadRequest
	if err := decodeJSON(r, &body); err != nil {
		writeDecodeError(w, err)
		return
	}

	moduleID := r.PathValue("moduleId")
	module, err := s.deps.Catalog.GetModule(r.Context(), moduleID)
	if err != nil {
		writeError(w, err)
		return
	}

	req := quiz.Request{ModuleID: module.ID, Topic: body.Topic, NumQuestions: quiz.DefaultNumQuestions}
	if body.NumQuestions != nil {
		req.NumQuestions = *body.NumQuestions
	}
	if req.Topic == "" {
		req.Topic = module.Name
		if len(module.Topics) > 0 {
			req.Topic = module.Topics[0]
		}
	}

	sess := s.deps.Quizzes.Session(u.ID, moduleID)
	err = sess.Load(r.Context(), req)
	snap := sess.Snapshot()
	if err != nil {
		if !errors.Is(err, quiz.ErrValidation) && !errors.Is(err, quiz.ErrStaleResponse) {
			s.logEvent(r.Context(), u, moduleID, snap.AttemptID, events.QuizFailed, map[string]any{"op": "load", "error": err.Error()})
		}
		writeErrorWithSession(w, err, &snap)
		return
	}

	s.logEvent(r.Context(), u, moduleID, snap.AttemptID, events.QuizLoaded, map[string]any{
		"quiz_id":       snap.Quiz.ID,
		"topic":         req.Topic,
		"num_questions": snap.Total,
	})
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleQuizAnswer(w http.ResponseWriter, r *http.Request, u identity.User) {
	var body answerRequest
	if err := decodeJSON(r, &body); err != nil {
		writeDecodeError(w, err)
		return
	}
	if body.Option == nil {
		writeError(w, &quiz.ValidationError{Field: "option", Reason: "is required"})
		return
	}

	sess, ok := s.lookup(w, r, u)
	if !ok {
		return
	}
	if err := sess.SelectAnswer(r.PathValue("questionId"), *body.Option); err != nil {
		snap := sess.Snapshot()
		writeErrorWithSession(w, err, &snap)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleQuizNavigate(w http.ResponseWriter, r *http.Request, u identity.User) {
	var body navigateRequest
	if err := decodeJSON(r, &body); err != nil {
		writeDecodeError(w, err)
		return
	}
	sess, ok := s.lookup(w, r, u)
	if !ok {
		return
	}
	sess.Navigate(body.Delta)
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleQuizSubmit(w http.ResponseWriter, r *http.Request, u identity.User) {
	sess, ok := s.lookup(w, r, u)
	if !ok {
		return
	}
	moduleID := r.PathValue("moduleId")

	result, err := sess.Submit(r.Context())
	snap := sess.Snapshot()
	if err != nil {
		// Only failures that moved the session to Failed are recorded.
		if snap.State == quiz.Failed {
			s.logEvent(r.Context(), u, moduleID, snap.AttemptID, events.QuizFailed, map[string]any{"op": "submit", "error": err.Error()})
		}
		writeErrorWithSession(w, err, &snap)
		return
	}

	s.logEvent(r.Context(), u, moduleID, snap.AttemptID, events.QuizGraded, map[string]any{
		"score":      result.Score,
		"total":      result.Total,
		"percentage": result.Percentage,
		"verdict":    string(result.Verdict()),
	})
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleQuizDiscard(w http.ResponseWriter, r *http.Request, u identity.User) {
	moduleID := r.PathValue("moduleId")
	if sess, ok := s.deps.Quizzes.Lookup(u.ID, moduleID); ok {
		attemptID := sess.Snapshot().AttemptID
		s.deps.Quizzes.Discard(u.ID, moduleID)
		if attemptID != "" {
			s.logEvent(r.Context(), u, moduleID, attemptID, events.QuizDiscarded, nil)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// lookup finds the caller's session for the module. A missing session is an
// invalid state for every operation except load.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request, u identity.User) (*quiz.Session, bool) {
	sess, ok := s.deps.Quizzes.Lookup(u.ID, r.PathValue("moduleId"))
	if !ok {
		writeError(w, quiz.ErrInvalidState)
		return nil, false
	}
	return sess, true
}

// logEvent records an analytics event. Failures are logged and never fail
// the request.
func (s *Server) logEvent(ctx context.Context, u identity.User, moduleID, attemptID, eventType string, data map[string]any) {
	err := s.deps.Events.LogEvent(context.WithoutCancel(ctx), events.Event{
		AttemptID: attemptID,
		UserID:    u.ID,
		ModuleID:  moduleID,
		EventType: eventType,
		Data:      data,
	})
	if err != nil {
		slog.Warn("failed to log event", "event_type", eventType, "user_id", u.ID, "error", err)
	}
}
