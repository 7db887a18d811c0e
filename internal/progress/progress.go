// Package progress holds the learner progress records reported by the
// progress service. The records are read-only here: counters are incremented
// upstream, this service only derives display values from them.
package progress

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/learnflow/learnflow/internal/platform/wire"
)

// ModuleProgress is one learner's counters for one module.
type ModuleProgress struct {
	ModuleID           string `json:"module_id"`
	ModuleName         string `json:"module_name,omitempty"`
	MasteryRaw         int    `json:"mastery"`
	ExercisesCompleted int    `json:"exercises_completed"`
	QuizzesTaken       int    `json:"quizzes_taken"`

	// Extra keeps upstream fields this service does not interpret, such as
	// the upstream's own mastery_level or score breakdowns.
	Extra map[string]json.RawMessage `json:"-"`
}

var moduleProgressFields = []string{
	"module_id", "module_name", "mastery", "exercises_completed", "quizzes_taken",
}

// UnmarshalJSON accepts fractional mastery (the progress service reports
// one decimal) and rounds it half-up. Out-of-range values are kept so that
// Validate reports them.
func (p *ModuleProgress) UnmarshalJSON(data []byte) error {
	var raw struct {
		ModuleID           string  `json:"module_id"`
		ModuleName         string  `json:"module_name"`
		Mastery            float64 `json:"mastery"`
		ExercisesCompleted int     `json:"exercises_completed"`
		QuizzesTaken       int     `json:"quizzes_taken"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	extra, err := wire.Extras(data, moduleProgressFields...)
	if err != nil {
		return err
	}

	*p = ModuleProgress{
		ModuleID:           raw.ModuleID,
		ModuleName:         raw.ModuleName,
		MasteryRaw:         RoundMastery(raw.Mastery),
		ExercisesCompleted: raw.ExercisesCompleted,
		QuizzesTaken:       raw.QuizzesTaken,
		Extra:              extra,
	}
	return nil
}

// MarshalJSON writes the known fields plus preserved extras.
func (p ModuleProgress) MarshalJSON() ([]byte, error) {
	type plain ModuleProgress
	return wire.Merge(plain(p), p.Extra)
}

// Validate checks the counter invariants.
func (p ModuleProgress) Validate() error {
	if p.MasteryRaw < 0 || p.MasteryRaw > 100 {
		return fmt.Errorf("module %s: mastery %d out of range [0,100]", p.ModuleID, p.MasteryRaw)
	}
	if p.ExercisesCompleted < 0 || p.QuizzesTaken < 0 {
		return fmt.Errorf("module %s: counters must be non-negative", p.ModuleID)
	}
	return nil
}

// RoundMastery rounds half-up. It does not clamp; NaN maps to 0.
func RoundMastery(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Floor(v + 0.5))
}

// Report is a learner's progress across all enrolled modules.
type Report struct {
	UserID         string                    `json:"user_id"`
	Modules        map[string]ModuleProgress `json:"modules"`
	Streak         int                       `json:"streak"`
	TotalExercises int                       `json:"total_exercises"`
	TotalQuizzes   int                       `json:"total_quizzes"`
}

// Validate checks every module record and that map keys match module ids.
func (r Report) Validate() error {
	if r.Streak < 0 {
		return fmt.Errorf("streak must be non-negative, got %d", r.Streak)
	}
	for id, m := range r.Modules {
		if m.ModuleID == "" {
			m.ModuleID = id
		}
		if m.ModuleID != id {
			return fmt.Errorf("module key %q does not match module_id %q", id, m.ModuleID)
		}
		if err := m.Validate(); err != nil {
			return err
		}
	}
	return nil
}
