package progress_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/learnflow/learnflow/internal/progress"
)

func TestRoundMastery(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{45.4, 45},
		{45.5, 46},
		{99.9, 100},
		{100, 100},
		{100.4, 100},
		{120, 120},
		{-3, -3},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := progress.RoundMastery(tt.in); got != tt.want {
			t.Errorf("RoundMastery(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestReport_Decode(t *testing.T) {
	body := []byte(`{
		"user_id": "u-1",
		"modules": {
			"mod-1": {"module_id": "mod-1", "module_name": "Python Basics", "mastery": 62.5,
			          "mastery_level": "learning", "exercises_completed": 4, "quizzes_taken": 2,
			          "quiz_score": 70.0}
		},
		"streak": 3,
		"last_activity": 1700000000.5,
		"total_exercises": 4,
		"total_quizzes": 2
	}`)

	var r progress.Report
	if err := json.Unmarshal(body, &r); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	m := r.Modules["mod-1"]
	if m.MasteryRaw != 63 {
		t.Errorf("MasteryRaw = %d, want 63", m.MasteryRaw)
	}
	if m.QuizzesTaken != 2 {
		t.Errorf("QuizzesTaken = %d, want 2", m.QuizzesTaken)
	}
	if _, ok := m.Extra["mastery_level"]; !ok {
		t.Error("upstream mastery_level should be preserved as an extra")
	}
	if r.Streak != 3 || r.TotalExercises != 4 {
		t.Errorf("Streak/TotalExercises = %d/%d, want 3/4", r.Streak, r.TotalExercises)
	}
}

func TestModuleProgress_MarshalKeepsExtras(t *testing.T) {
	var m progress.ModuleProgress
	if err := json.Unmarshal([]byte(`{"module_id":"mod-2","mastery":10,"code_quality":7.5}`), &m); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got map[string]any
	json.Unmarshal(data, &got)
	if got["code_quality"] != 7.5 {
		t.Errorf("code_quality = %v, want 7.5", got["code_quality"])
	}
	if got["mastery"] != float64(10) {
		t.Errorf("mastery = %v, want 10", got["mastery"])
	}
}

func TestReport_Validate(t *testing.T) {
	tests := []struct {
		name    string
		report  progress.Report
		wantErr bool
	}{
		{"empty", progress.Report{UserID: "u"}, false},
		{"negative streak", progress.Report{Streak: -1}, true},
		{"key mismatch", progress.Report{Modules: map[string]progress.ModuleProgress{
			"mod-1": {ModuleID: "mod-2"},
		}}, true},
		{"missing module id uses key", progress.Report{Modules: map[string]progress.ModuleProgress{
			"mod-1": {MasteryRaw: 40},
		}}, false},
		{"mastery above range", progress.Report{Modules: map[string]progress.ModuleProgress{
			"mod-1": {ModuleID: "mod-1", MasteryRaw: 250},
		}}, true},
		{"mastery below range", progress.Report{Modules: map[string]progress.ModuleProgress{
			"mod-1": {ModuleID: "mod-1", MasteryRaw: -40},
		}}, true},
		{"negative counter", progress.Report{Modules: map[string]progress.ModuleProgress{
			"mod-1": {ModuleID: "mod-1", QuizzesTaken: -1},
		}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.report.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
