package quiz

import (
	"context"
	"maps"
	"sync"
)

// MockSource is a test double for Source. GenerateFunc and SubmitFunc, when
// set, replace the canned Quiz/Result responses.
type MockSource struct {
	Quiz        Quiz
	Result      Result
	GenerateErr error
	SubmitErr   error

	GenerateFunc func(ctx context.Context, req Request) (Quiz, error)
	SubmitFunc   func(ctx context.Context, quizID string, answers Answers) (Result, error)

	mu            sync.Mutex
	generateCalls int
	submitCalls   int
	lastRequest   Request
	lastQuizID    string
	lastAnswers   Answers
}

// NewMockSource creates a MockSource that serves q and grades with r.
func NewMockSource(q Quiz, r Result) *MockSource {
	return &MockSource{Quiz: q, Result: r}
}

func (m *MockSource) GenerateQuiz(ctx context.Context, req Request) (Quiz, error) {
	m.mu.Lock()
	m.generateCalls++
	m.lastRequest = req
	fn := m.GenerateFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if m.GenerateErr != nil {
		return Quiz{}, m.GenerateErr
	}
	return m.Quiz.clone(), nil
}

func (m *MockSource) SubmitQuiz(ctx context.Context, quizID string, answers Answers) (Result, error) {
	m.mu.Lock()
	m.submitCalls++
	m.lastQuizID = quizID
	m.lastAnswers = maps.Clone(answers)
	fn := m.SubmitFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, quizID, answers)
	}
	if m.SubmitErr != nil {
		return Result{}, m.SubmitErr
	}
	return m.Result.clone(), nil
}

// GenerateCalls returns how many times GenerateQuiz was called.
func (m *MockSource) GenerateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generateCalls
}

// SubmitCalls returns how many times SubmitQuiz was called.
func (m *MockSource) SubmitCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submitCalls
}

// LastRequest returns the most recent generate request.
func (m *MockSource) LastRequest() Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

// LastSubmission returns the quiz id and answers of the most recent submit.
func (m *MockSource) LastSubmission() (string, Answers) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastQuizID, maps.Clone(m.lastAnswers)
}
