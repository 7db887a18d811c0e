package quiz

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/google/uuid"
)

// State is a session's position in the quiz workflow.
type State int

const (
	Idle State = iota
	Loading
	Ready
	Answering
	Submitting
	Graded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Answering:
		return "answering"
	case Submitting:
		return "submitting"
	case Graded:
		return "graded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type op int

const (
	opNone op = iota
	opLoad
	opSubmit
)

// Session is one learner's quiz attempt for one module. It is safe for
// concurrent use. The lock is never held across a Source call; every call
// records the session token it started under, and a response that comes
// back after the token moved on is dropped.
type Session struct {
	source Source

	mu        sync.Mutex
	token     uint64
	state     State
	attemptID string
	quiz      *Quiz
	cursor    int
	answers   Answers
	result    *Result
	err       error
	failedOp  op
}

// NewSession creates an idle session backed by source.
func NewSession(source Source) *Session {
	return &Session{source: source, answers: Answers{}}
}

// Load starts a new attempt. Any previous attempt, including an in-flight
// Load or Submit, is discarded. An invalid request is rejected without
// touching the session.
func (s *Session) Load(ctx context.Context, req Request) error {
	if err := req.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.resetLocked()
	s.state = Loading
	s.attemptID = uuid.NewString()
	token := s.token
	s.mu.Unlock()

	q, err := s.source.GenerateQuiz(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.token {
		return fmt.Errorf("load quiz: %w", ErrStaleResponse)
	}
	if err == nil {
		err = q.Validate()
	}
	if err != nil {
		s.failLocked(opLoad, err)
		return fmt.Errorf("load quiz: %w", err)
	}

	redacted := q.Redact()
	s.quiz = &redacted
	s.state = Ready
	return nil
}

// SelectAnswer records option as the answer to questionID, replacing any
// earlier answer. Only allowed in Ready or Answering.
func (s *Session) SelectAnswer(questionID string, option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Ready && s.state != Answering {
		return fmt.Errorf("select answer in state %s: %w", s.state, ErrInvalidState)
	}
	q, ok := s.quiz.Question(questionID)
	if !ok {
		return invalid("question_id", "unknown question %q", questionID)
	}
	if option < 0 || option >= len(q.Options) {
		return invalid("option", "index %d out of range [0,%d]", option, len(q.Options)-1)
	}

	s.answers[questionID] = option
	s.state = Answering
	return nil
}

// Navigate moves the question cursor by delta, clamped to the quiz bounds,
// and returns the new position. It never changes state and is a no-op
// without a loaded quiz.
func (s *Session) Navigate(delta int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quiz == nil {
		return s.cursor
	}
	last := len(s.quiz.Questions) - 1
	switch {
	case delta > last:
		s.cursor = last
	case delta < -last:
		s.cursor = 0
	default:
		s.cursor = min(max(s.cursor+delta, 0), last)
	}
	return s.cursor
}

// CanSubmit reports whether every question has an answer.
func (s *Session) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canSubmitLocked()
}

func (s *Session) canSubmitLocked() bool {
	return s.quiz != nil && len(s.answers) == len(s.quiz.Questions)
}

// Submit sends the answers for grading. It is allowed from Ready or
// Answering once every question is answered, and from Failed after a failed
// Submit so the learner can retry without answering again. A Submit while
// another is in flight fails with ErrSubmitInFlight and does not reach the
// grader.
func (s *Session) Submit(ctx context.Context) (Result, error) {
	s.mu.Lock()
	switch {
	case s.state == Submitting:
		s.mu.Unlock()
		return Result{}, fmt.Errorf("submit quiz: %w", ErrSubmitInFlight)
	case s.state == Ready, s.state == Answering, s.state == Failed && s.failedOp == opSubmit:
	default:
		state := s.state
		s.mu.Unlock()
		return Result{}, fmt.Errorf("submit quiz in state %s: %w", state, ErrInvalidState)
	}
	if !s.canSubmitLocked() {
		answered, total := len(s.answers), len(s.quiz.Questions)
		s.mu.Unlock()
		return Result{}, invalid("answers", "%d of %d questions answered", answered, total)
	}

	s.state = Submitting
	s.err = nil
	token := s.token
	quizID := s.quiz.ID
	answers := maps.Clone(s.answers)
	s.mu.Unlock()

	res, err := s.source.SubmitQuiz(ctx, quizID, answers)

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.token {
		return Result{}, fmt.Errorf("submit quiz: %w", ErrStaleResponse)
	}
	if err == nil {
		err = res.checkShape(s.quiz.Questions)
	}
	if err != nil {
		s.failLocked(opSubmit, err)
		return Result{}, fmt.Errorf("submit quiz: %w", err)
	}

	stored := res.clone()
	s.result = &stored
	s.state = Graded
	return res.clone(), nil
}

// Discard drops the current attempt. A response still in flight for it will
// be ignored.
func (s *Session) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) resetLocked() {
	s.token++
	s.state = Idle
	s.attemptID = ""
	s.quiz = nil
	s.cursor = 0
	s.answers = Answers{}
	s.result = nil
	s.err = nil
	s.failedOp = opNone
}

func (s *Session) failLocked(o op, err error) {
	s.state = Failed
	s.failedOp = o
	s.err = err
}

// Snapshot is a point-in-time copy of a session for rendering.
type Snapshot struct {
	State           State   `json:"state"`
	AttemptID       string  `json:"attempt_id,omitempty"`
	Quiz            *Quiz   `json:"quiz,omitempty"`
	CurrentQuestion int     `json:"current_question"`
	Answers         Answers `json:"answers"`
	Answered        int     `json:"answered"`
	Total           int     `json:"total"`
	CanSubmit       bool    `json:"can_submit"`
	Result          *Result `json:"result,omitempty"`
	Verdict         Verdict `json:"verdict,omitempty"`
	Error           string  `json:"error,omitempty"`
	Retryable       bool    `json:"retryable,omitempty"`
}

// Snapshot returns a copy of the session that later changes do not affect.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:           s.state,
		AttemptID:       s.attemptID,
		CurrentQuestion: s.cursor,
		Answers:         maps.Clone(s.answers),
		Answered:        len(s.answers),
		CanSubmit:       s.canSubmitLocked() && s.state != Graded && s.state != Submitting,
	}
	if s.quiz != nil {
		q := s.quiz.clone()
		snap.Quiz = &q
		snap.Total = len(q.Questions)
	}
	if s.result != nil {
		r := s.result.clone()
		snap.Result = &r
		snap.Verdict = r.Verdict()
	}
	if s.err != nil {
		snap.Error = s.err.Error()
		snap.Retryable = s.failedOp == opSubmit
	}
	return snap
}
