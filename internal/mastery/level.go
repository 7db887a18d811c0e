// Package mastery derives display values from raw progress counters: the
// discrete mastery level of a module, its colour/severity tag, a learner's
// overall mastery, curriculum ordering and struggle-alert labels.
//
// Everything here is a pure function of its inputs and safe for concurrent
// use.
package mastery

import (
	"fmt"
	"strconv"
	"strings"
)

// Level is a discrete mastery classification. Levels are ordered:
// Beginner < Learning < Proficient < Mastered.
type Level int

const (
	Beginner Level = iota
	Learning
	Proficient
	Mastered
)

// Levels lists every level in ascending order.
var Levels = []Level{Beginner, Learning, Proficient, Mastered}

func (l Level) String() string {
	switch l {
	case Beginner:
		return "beginner"
	case Learning:
		return "learning"
	case Proficient:
		return "proficient"
	case Mastered:
		return "mastered"
	default:
		return "unknown"
	}
}

// MarshalText encodes the level by name.
func (l Level) MarshalText() ([]byte, error) {
	if l < Beginner || l > Mastered {
		return nil, fmt.Errorf("invalid mastery level %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText decodes a level name.
func (l *Level) UnmarshalText(text []byte) error {
	for _, lv := range Levels {
		if lv.String() == string(text) {
			*l = lv
			return nil
		}
	}
	return fmt.Errorf("unknown mastery level %q", text)
}

// Thresholds are the lowest raw scores of the learning, proficient and
// mastered levels. Scores below Learning are beginner.
type Thresholds struct {
	Learning   int
	Proficient int
	Mastered   int
}

// DefaultThresholds partitions [0,100] as [0,25) [25,60) [60,85) [85,100].
var DefaultThresholds = Thresholds{Learning: 25, Proficient: 60, Mastered: 85}

// Validate requires 0 < Learning < Proficient < Mastered <= 100, which keeps
// the partition contiguous with every level non-empty.
func (t Thresholds) Validate() error {
	if t.Learning <= 0 || t.Learning >= t.Proficient || t.Proficient >= t.Mastered || t.Mastered > 100 {
		return fmt.Errorf("mastery thresholds must satisfy 0 < learning < proficient < mastered <= 100, got %d,%d,%d",
			t.Learning, t.Proficient, t.Mastered)
	}
	return nil
}

// Classify maps a raw score to its level. Scores outside [0,100] are
// clamped so the mapping stays total.
func (t Thresholds) Classify(raw int) Level {
	raw = clamp(raw)
	switch {
	case raw >= t.Mastered:
		return Mastered
	case raw >= t.Proficient:
		return Proficient
	case raw >= t.Learning:
		return Learning
	default:
		return Beginner
	}
}

// ParseThresholds reads "learning,proficient,mastered", e.g. "25,60,85".
func ParseThresholds(s string) (Thresholds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Thresholds{}, fmt.Errorf("mastery thresholds: want 3 comma-separated values, got %q", s)
	}

	var vals [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Thresholds{}, fmt.Errorf("mastery thresholds: %q is not an integer", p)
		}
		vals[i] = v
	}

	t := Thresholds{Learning: vals[0], Proficient: vals[1], Mastered: vals[2]}
	if err := t.Validate(); err != nil {
		return Thresholds{}, err
	}
	return t, nil
}

// ClassifyLevel classifies raw with DefaultThresholds.
func ClassifyLevel(raw int) Level {
	return DefaultThresholds.Classify(raw)
}

func clamp(raw int) int {
	if raw < 0 {
		return 0
	}
	if raw > 100 {
		return 100
	}
	return raw
}
