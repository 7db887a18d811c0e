package mastery_test

import (
	"testing"

	"github.com/learnflow/learnflow/internal/mastery"
	"github.com/learnflow/learnflow/internal/struggle"
)

func TestStruggleLabel(t *testing.T) {
	tests := []struct {
		in        string
		wantLabel string
		wantKnown bool
	}{
		{"low_quiz_score", "Low Quiz Score", true},
		{"repeated_failures", "Repeated Code Failures", true},
		{"repeated_error", "Repeated Same Error", true},
		{"verbal_expression", "Student Expressed Difficulty", true},
		{"idle_too_long", "idle_too_long", false},
		{"", "", false},
	}
	for _, tt := range tests {
		label, known := mastery.StruggleLabel(tt.in)
		if label != tt.wantLabel || known != tt.wantKnown {
			t.Errorf("StruggleLabel(%q) = %q,%v, want %q,%v", tt.in, label, known, tt.wantLabel, tt.wantKnown)
		}
	}
}

func TestClassifyStruggle(t *testing.T) {
	a := struggle.Alert{
		UserID:       "u-1",
		StruggleType: struggle.TypeRepeatedFailures,
		ModuleID:     "mod-4",
		Details: map[string]any{
			"consecutive_failures": float64(5),
			"last_error":           "NameError",
			"ratio":                0.25,
		},
	}

	c := mastery.ClassifyStruggle(a)

	if c.Label != "Repeated Code Failures" || !c.Known {
		t.Errorf("Label = %q known=%v", c.Label, c.Known)
	}
	if c.Alert.ModuleID != "mod-4" {
		t.Errorf("Alert not passed through: %+v", c.Alert)
	}
	if len(c.Details) != 3 {
		t.Fatalf("len(Details) = %d, want 3", len(c.Details))
	}

	first := c.Details[0]
	if first.Key != "consecutive_failures" || first.Label != "Consecutive Failures" || first.Value != "5" {
		t.Errorf("Details[0] = %+v", first)
	}
	if c.Details[1].Value != "NameError" {
		t.Errorf("Details[1].Value = %q, want NameError", c.Details[1].Value)
	}
	if c.Details[2].Value != "0.25" {
		t.Errorf("Details[2].Value = %q, want 0.25", c.Details[2].Value)
	}
}

func TestClassifyStruggle_UnknownTypePropagates(t *testing.T) {
	c := mastery.ClassifyStruggle(struggle.Alert{UserID: "u", StruggleType: "keyboard_rage"})

	if c.Known {
		t.Error("Known should be false for an unrecognised type")
	}
	if c.Label != "keyboard_rage" {
		t.Errorf("Label = %q, want raw type", c.Label)
	}
	if len(c.Details) != 0 {
		t.Errorf("Details = %v, want empty", c.Details)
	}
}
