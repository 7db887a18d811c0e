package mastery

import (
	"github.com/learnflow/learnflow/internal/curriculum"
	"github.com/learnflow/learnflow/internal/progress"
)

// ModuleCard is one module as shown on the dashboard and curriculum pages.
type ModuleCard struct {
	Module             curriculum.Module `json:"module"`
	Mastery            int               `json:"mastery"`
	Level              Level             `json:"level"`
	Tag                Tag               `json:"tag"`
	ExercisesCompleted int               `json:"exercises_completed"`
	QuizzesTaken       int               `json:"quizzes_taken"`
}

// Dashboard is the derived progress view of one learner.
type Dashboard struct {
	UserID         string       `json:"user_id"`
	Modules        []ModuleCard `json:"modules"`
	OverallMastery int          `json:"overall_mastery"`
	Streak         int          `json:"streak"`
	TotalExercises int          `json:"total_exercises"`
	TotalQuizzes   int          `json:"total_quizzes"`
}

// BuildDashboard combines the catalog with a learner's report. Modules are
// shown in curriculum order; a module missing from the report shows as
// 0% beginner. Overall mastery is taken over the report's modules only.
func BuildDashboard(modules []curriculum.Module, report progress.Report, t Thresholds) Dashboard {
	ordered := OrderModules(modules)

	cards := make([]ModuleCard, 0, len(ordered))
	for _, m := range ordered {
		p := report.Modules[m.ID]
		level := t.Classify(p.MasteryRaw)
		cards = append(cards, ModuleCard{
			Module:             m,
			Mastery:            clamp(p.MasteryRaw),
			Level:              level,
			Tag:                TagFor(level),
			ExercisesCompleted: p.ExercisesCompleted,
			QuizzesTaken:       p.QuizzesTaken,
		})
	}

	return Dashboard{
		UserID:         report.UserID,
		Modules:        cards,
		OverallMastery: OverallMastery(report.Modules),
		Streak:         report.Streak,
		TotalExercises: report.TotalExercises,
		TotalQuizzes:   report.TotalQuizzes,
	}
}
