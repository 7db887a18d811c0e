package upstream

import (
	"context"
	"net/http"
	"net/url"

	"github.com/learnflow/learnflow/internal/quiz"
)

// GenerateQuiz asks the quiz service for a new quiz.
func (c *Client) GenerateQuiz(ctx context.Context, req quiz.Request) (quiz.Quiz, error) {
	const op = "generate quiz"
	body, _, err := c.do(ctx, call{
		op:     op,
		method: http.MethodPost,
		url:    c.endpoints.Quiz + "/api/quizzes/generate",
		body:   req,
		schema: "quiz",
	})
	if err != nil {
		return quiz.Quiz{}, err
	}

	var q quiz.Quiz
	if err := decode(op, body, &q); err != nil {
		return quiz.Quiz{}, err
	}
	if err := q.Validate(); err != nil {
		return quiz.Quiz{}, &SchemaError{Op: op, Detail: err.Error(), Err: err}
	}
	return q, nil
}

type submitRequest struct {
	Answers quiz.Answers `json:"answers"`
}

// SubmitQuiz sends answers for grading. A 400 or 422 from the grader is
// returned as a *quiz.ValidationError.
func (c *Client) SubmitQuiz(ctx context.Context, quizID string, answers quiz.Answers) (quiz.Result, error) {
	const op = "submit quiz"
	body, status, err := c.do(ctx, call{
		op:     op,
		method: http.MethodPost,
		url:    c.endpoints.Quiz + "/api/quizzes/" + url.PathEscape(quizID) + "/submit",
		body:   submitRequest{Answers: answers},
		schema: "result",
	})
	if status == http.StatusBadRequest || status == http.StatusUnprocessableEntity {
		return quiz.Result{}, &quiz.ValidationError{Field: "answers", Reason: excerpt(body)}
	}
	if err != nil {
		return quiz.Result{}, err
	}

	var r quiz.Result
	if err := decode(op, body, &r); err != nil {
		return quiz.Result{}, err
	}
	return r, nil
}
