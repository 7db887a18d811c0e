package quiz

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/learnflow/learnflow/internal/platform/wire"
)

// QuestionResult is the grader's verdict on one question.
type QuestionResult struct {
	QuestionID    string `json:"question_id"`
	Correct       bool   `json:"correct"`
	Selected      *int   `json:"selected"`
	CorrectAnswer *int   `json:"correct_answer"`
	Explanation   string `json:"explanation"`

	Extra map[string]json.RawMessage `json:"-"`
}

var questionResultFields = []string{
	"question_id", "correct", "selected", "correct_answer", "explanation",
}

func (r *QuestionResult) UnmarshalJSON(data []byte) error {
	type plain QuestionResult
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := wire.Extras(data, questionResultFields...)
	if err != nil {
		return err
	}
	*r = QuestionResult(p)
	r.Extra = extra
	return nil
}

func (r QuestionResult) MarshalJSON() ([]byte, error) {
	type plain QuestionResult
	return wire.Merge(plain(r), r.Extra)
}

// Result is a graded submission exactly as the grader returned it.
type Result struct {
	Score      int              `json:"score"`
	Total      int              `json:"total"`
	Percentage float64          `json:"percentage"`
	Results    []QuestionResult `json:"results"`

	Extra map[string]json.RawMessage `json:"-"`
}

var resultFields = []string{"score", "total", "percentage", "results"}

func (r *Result) UnmarshalJSON(data []byte) error {
	type plain Result
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := wire.Extras(data, resultFields...)
	if err != nil {
		return err
	}
	*r = Result(p)
	r.Extra = extra
	return nil
}

func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	return wire.Merge(plain(r), r.Extra)
}

// Verdict is the banner shown with a graded result.
type Verdict string

const (
	VerdictExcellent      Verdict = "excellent"
	VerdictGoodEffort     Verdict = "good_effort"
	VerdictKeepPracticing Verdict = "keep_practicing"
)

// Verdict buckets the percentage: 80 and above is excellent, 50 and above a
// good effort.
func (r Result) Verdict() Verdict {
	switch {
	case r.Percentage >= 80:
		return VerdictExcellent
	case r.Percentage >= 50:
		return VerdictGoodEffort
	default:
		return VerdictKeepPracticing
	}
}

// checkShape verifies the result lines up with the questions it grades.
// Values are not recomputed.
func (r Result) checkShape(questions []Question) error {
	if r.Total != len(questions) {
		return fmt.Errorf("%w: result total %d, quiz has %d questions", ErrMalformed, r.Total, len(questions))
	}
	if r.Score < 0 || r.Score > r.Total {
		return fmt.Errorf("%w: score %d outside [0,%d]", ErrMalformed, r.Score, r.Total)
	}
	if len(r.Results) != len(questions) {
		return fmt.Errorf("%w: %d results for %d questions", ErrMalformed, len(r.Results), len(questions))
	}
	for i, qr := range r.Results {
		if qr.QuestionID != questions[i].ID {
			return fmt.Errorf("%w: result %d is for question %q, want %q", ErrMalformed, i, qr.QuestionID, questions[i].ID)
		}
	}
	return nil
}

func (r Result) clone() Result {
	out := r
	out.Extra = maps.Clone(r.Extra)
	if r.Results != nil {
		out.Results = make([]QuestionResult, len(r.Results))
		for i, qr := range r.Results {
			qr.Selected = cloneInt(qr.Selected)
			qr.CorrectAnswer = cloneInt(qr.CorrectAnswer)
			qr.Extra = maps.Clone(qr.Extra)
			out.Results[i] = qr
		}
	}
	return out
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
