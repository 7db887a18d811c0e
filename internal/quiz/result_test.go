package quiz_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/learnflow/learnflow/internal/quiz"
)

func TestResult_Verdict(t *testing.T) {
	tests := []struct {
		pct  float64
		want quiz.Verdict
	}{
		{100, quiz.VerdictExcellent},
		{80, quiz.VerdictExcellent},
		{79.9, quiz.VerdictGoodEffort},
		{50, quiz.VerdictGoodEffort},
		{49, quiz.VerdictKeepPracticing},
		{0, quiz.VerdictKeepPracticing},
	}
	for _, tt := range tests {
		if got := (quiz.Result{Percentage: tt.pct}).Verdict(); got != tt.want {
			t.Errorf("Verdict(%v) = %q, want %q", tt.pct, got, tt.want)
		}
	}
}

func TestResult_PreservesUnknownFields(t *testing.T) {
	in := `{"score":1,"total":2,"percentage":50.0,"graded_by":"exercise-service",
		"results":[{"question_id":"a","correct":true,"selected":0,"correct_answer":0,"explanation":"x","hint":"h"},
		           {"question_id":"b","correct":false,"selected":null,"correct_answer":1,"explanation":"y"}]}`

	var r quiz.Result
	if err := json.Unmarshal([]byte(in), &r); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if r.Score != 1 || r.Total != 2 || r.Percentage != 50 {
		t.Errorf("decoded = %+v", r)
	}
	if r.Results[1].Selected != nil {
		t.Errorf("Selected = %v, want nil for unanswered", *r.Results[1].Selected)
	}
	if string(r.Extra["graded_by"]) != `"exercise-service"` {
		t.Errorf("Extra = %v", r.Extra)
	}
	if string(r.Results[0].Extra["hint"]) != `"h"` {
		t.Errorf("results[0].Extra = %v", r.Results[0].Extra)
	}

	out, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, want := range []string{`"graded_by":"exercise-service"`, `"hint":"h"`, `"question_id":"b"`} {
		if !strings.Contains(string(out), want) {
			t.Errorf("Marshal() = %s, missing %s", out, want)
		}
	}
}

func TestRequest_Validate(t *testing.T) {
	ok := quiz.Request{ModuleID: "mod-1", Topic: "loops", NumQuestions: quiz.DefaultNumQuestions}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	err := quiz.Request{ModuleID: "mod-1"}.Validate()
	var ve *quiz.ValidationError
	if !errors.As(err, &ve) || ve.Field != "num_questions" {
		t.Errorf("Validate() error = %v, want num_questions ValidationError", err)
	}
}

func TestQuiz_Redact(t *testing.T) {
	q := makeQuiz("quiz-1", 2)

	r := q.Redact()

	for _, qu := range r.Questions {
		if qu.CorrectAnswer != nil || qu.Explanation != "" {
			t.Errorf("Redact() left %+v", qu)
		}
	}
	if q.Questions[0].CorrectAnswer == nil {
		t.Error("Redact() modified the original quiz")
	}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(data), "correct_answer") || strings.Contains(string(data), "explanation") {
		t.Errorf("redacted quiz encodes correctness: %s", data)
	}
}
