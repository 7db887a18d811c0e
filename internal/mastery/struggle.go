package mastery

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/learnflow/learnflow/internal/struggle"
)

var struggleLabels = map[string]string{
	struggle.TypeLowQuizScore:     "Low Quiz Score",
	struggle.TypeRepeatedFailures: "Repeated Code Failures",
	struggle.TypeRepeatedError:    "Repeated Same Error",
	struggle.TypeVerbalExpression: "Student Expressed Difficulty",
}

// StruggleClassification is the instructor-facing rendering of an alert.
type StruggleClassification struct {
	Alert   struggle.Alert `json:"alert"`
	Label   string         `json:"label"`
	Known   bool           `json:"known"`
	Details []DetailRow    `json:"details"`
}

// DetailRow is one alert detail as a label/value pair.
type DetailRow struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// StruggleLabel returns the display label for a struggle type. Unrecognised
// types come back unchanged so new detector output still renders.
func StruggleLabel(struggleType string) (label string, known bool) {
	if l, ok := struggleLabels[struggleType]; ok {
		return l, true
	}
	return struggleType, false
}

// ClassifyStruggle labels an alert and renders its details sorted by key.
func ClassifyStruggle(a struggle.Alert) StruggleClassification {
	label, known := StruggleLabel(a.StruggleType)
	return StruggleClassification{
		Alert:   a,
		Label:   label,
		Known:   known,
		Details: detailRows(a.Details),
	}
}

func detailRows(details map[string]any) []DetailRow {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	caser := cases.Title(language.English)
	rows := make([]DetailRow, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, DetailRow{
			Key:   k,
			Label: caser.String(strings.ReplaceAll(k, "_", " ")),
			Value: formatDetail(details[k]),
		})
	}
	return rows
}

func formatDetail(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprint(x)
	}
}
