// Package quiz implements the quiz-taking workflow: a quiz is loaded from
// the generator, answered question by question, submitted for grading and
// held with its graded result until the next attempt.
//
// Grading belongs to the quiz service. A session never compares answers with
// correct_answer; that field is stripped when a quiz enters a session and is
// only seen again inside the graded result.
package quiz

import (
	"context"
	"fmt"
	"slices"
)

// Source generates and grades quizzes.
type Source interface {
	GenerateQuiz(ctx context.Context, req Request) (Quiz, error)
	SubmitQuiz(ctx context.Context, quizID string, answers Answers) (Result, error)
}

// Request asks the generator for a quiz. The generator may return a
// different number of questions than requested.
type Request struct {
	ModuleID     string `json:"module_id"`
	Topic        string `json:"topic"`
	NumQuestions int    `json:"num_questions"`
}

// DefaultNumQuestions is used by callers that do not choose a count.
const DefaultNumQuestions = 5

// Validate checks the request before it is sent.
func (r Request) Validate() error {
	if r.ModuleID == "" {
		return invalid("module_id", "must not be empty")
	}
	if r.NumQuestions <= 0 {
		return invalid("num_questions", "must be positive, got %d", r.NumQuestions)
	}
	return nil
}

// Question is one multiple-choice question.
type Question struct {
	ID            string   `json:"id"`
	Prompt        string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer *int     `json:"correct_answer,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
}

// Quiz is a generated quiz.
type Quiz struct {
	ID        string     `json:"id"`
	ModuleID  string     `json:"module_id"`
	Topic     string     `json:"topic"`
	Questions []Question `json:"questions"`
}

// Answers maps question id to the selected option index.
type Answers map[string]int

// Validate checks the shape a session relies on: an id, at least one
// question, unique non-empty question ids and at least two options each.
func (q Quiz) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("%w: quiz id is empty", ErrMalformed)
	}
	if len(q.Questions) == 0 {
		return fmt.Errorf("%w: quiz %s has no questions", ErrMalformed, q.ID)
	}
	seen := make(map[string]struct{}, len(q.Questions))
	for i, qu := range q.Questions {
		if qu.ID == "" {
			return fmt.Errorf("%w: question %d has no id", ErrMalformed, i)
		}
		if _, dup := seen[qu.ID]; dup {
			return fmt.Errorf("%w: duplicate question id %q", ErrMalformed, qu.ID)
		}
		seen[qu.ID] = struct{}{}
		if len(qu.Options) < 2 {
			return fmt.Errorf("%w: question %q has %d options, need at least 2", ErrMalformed, qu.ID, len(qu.Options))
		}
	}
	return nil
}

// Redact returns a copy without correct answers or explanations.
func (q Quiz) Redact() Quiz {
	out := q.clone()
	for i := range out.Questions {
		out.Questions[i].CorrectAnswer = nil
		out.Questions[i].Explanation = ""
	}
	return out
}

// Question returns the question with the given id.
func (q Quiz) Question(id string) (Question, bool) {
	i := slices.IndexFunc(q.Questions, func(qu Question) bool { return qu.ID == id })
	if i < 0 {
		return Question{}, false
	}
	return q.Questions[i], true
}

func (q Quiz) clone() Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, qu := range q.Questions {
		qu.Options = slices.Clone(qu.Options)
		if qu.CorrectAnswer != nil {
			v := *qu.CorrectAnswer
			qu.CorrectAnswer = &v
		}
		out.Questions[i] = qu
	}
	return out
}
