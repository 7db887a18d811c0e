package mastery

import (
	"cmp"
	"slices"

	"github.com/learnflow/learnflow/internal/curriculum"
	"github.com/learnflow/learnflow/internal/progress"
)

// OverallMastery is the mean raw mastery over every module in the map,
// rounded half-up. An empty map yields 0.
func OverallMastery(byModule map[string]progress.ModuleProgress) int {
	n := len(byModule)
	if n == 0 {
		return 0
	}
	sum := 0
	for _, m := range byModule {
		sum += clamp(m.MasteryRaw)
	}
	// round(sum/n) half-up, in integers: floor((2*sum + n) / (2*n)).
	return (2*sum + n) / (2 * n)
}

// OrderModules returns the modules sorted by Order ascending. Modules with
// equal Order keep their input order. The input slice is not modified.
func OrderModules(modules []curriculum.Module) []curriculum.Module {
	out := slices.Clone(modules)
	slices.SortStableFunc(out, func(a, b curriculum.Module) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return out
}
