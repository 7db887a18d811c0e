package mastery_test

import (
	"encoding/json"
	"testing"

	"github.com/learnflow/learnflow/internal/mastery"
)

func TestClassifyLevel_Boundaries(t *testing.T) {
	tests := []struct {
		raw  int
		want mastery.Level
	}{
		{0, mastery.Beginner},
		{24, mastery.Beginner},
		{25, mastery.Learning},
		{59, mastery.Learning},
		{60, mastery.Proficient},
		{84, mastery.Proficient},
		{85, mastery.Mastered},
		{100, mastery.Mastered},
		{-5, mastery.Beginner},
		{130, mastery.Mastered},
	}
	for _, tt := range tests {
		if got := mastery.ClassifyLevel(tt.raw); got != tt.want {
			t.Errorf("ClassifyLevel(%d) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestClassifyLevel_TotalAndMonotonic(t *testing.T) {
	thresholds := []mastery.Thresholds{
		mastery.DefaultThresholds,
		{Learning: 41, Proficient: 71, Mastered: 91},
		{Learning: 1, Proficient: 2, Mastered: 100},
	}

	for _, th := range thresholds {
		prev := mastery.Beginner
		seen := map[mastery.Level]bool{}
		for raw := 0; raw <= 100; raw++ {
			got := th.Classify(raw)
			if got < mastery.Beginner || got > mastery.Mastered {
				t.Fatalf("%+v: Classify(%d) = %d, not a level", th, raw, got)
			}
			if got < prev {
				t.Fatalf("%+v: Classify(%d) = %v is lower than Classify(%d) = %v", th, raw, got, raw-1, prev)
			}
			prev = got
			seen[got] = true
		}
		if len(seen) != len(mastery.Levels) {
			t.Errorf("%+v: only %d levels reachable, want %d", th, len(seen), len(mastery.Levels))
		}
	}
}

func TestParseThresholds(t *testing.T) {
	tests := []struct {
		in      string
		want    mastery.Thresholds
		wantErr bool
	}{
		{"25,60,85", mastery.DefaultThresholds, false},
		{" 41, 71 ,91", mastery.Thresholds{Learning: 41, Proficient: 71, Mastered: 91}, false},
		{"60,25,85", mastery.Thresholds{}, true},
		{"0,60,85", mastery.Thresholds{}, true},
		{"25,60,101", mastery.Thresholds{}, true},
		{"25,60", mastery.Thresholds{}, true},
		{"a,b,c", mastery.Thresholds{}, true},
	}
	for _, tt := range tests {
		got, err := mastery.ParseThresholds(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseThresholds(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseThresholds(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestLevel_Text(t *testing.T) {
	data, err := json.Marshal(map[string]mastery.Level{"level": mastery.Proficient})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"level":"proficient"}` {
		t.Errorf("Marshal() = %s", data)
	}

	var got struct {
		Level mastery.Level `json:"level"`
	}
	if err := json.Unmarshal([]byte(`{"level":"mastered"}`), &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.Level != mastery.Mastered {
		t.Errorf("Level = %v, want mastered", got.Level)
	}

	if err := json.Unmarshal([]byte(`{"level":"expert"}`), &got); err == nil {
		t.Error("Unmarshal() should reject an unknown level")
	}
}

func TestTagFor(t *testing.T) {
	tests := []struct {
		level mastery.Level
		color string
		sev   mastery.Severity
	}{
		{mastery.Beginner, "red", mastery.SeverityCritical},
		{mastery.Learning, "yellow", mastery.SeverityWarning},
		{mastery.Proficient, "green", mastery.SeverityOK},
		{mastery.Mastered, "blue", mastery.SeverityExcellent},
	}
	for _, tt := range tests {
		got := mastery.TagFor(tt.level)
		if got.Color != tt.color || got.Severity != tt.sev {
			t.Errorf("TagFor(%v) = %+v, want %s/%s", tt.level, got, tt.color, tt.sev)
		}
	}
}
