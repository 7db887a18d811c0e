// Package struggle holds the instructor-facing struggle alert record. Alerts
// are generated by the progress service's detector; this service only reads
// and classifies them.
package struggle

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/learnflow/learnflow/internal/platform/wire"
)

// Known struggle types. The set is open: the detector may emit others.
const (
	TypeLowQuizScore     = "low_quiz_score"
	TypeRepeatedFailures = "repeated_failures"
	TypeRepeatedError    = "repeated_error"
	TypeVerbalExpression = "verbal_expression"
)

// Alert is one struggle signal for one learner.
type Alert struct {
	UserID       string         `json:"user_id"`
	StruggleType string         `json:"struggle_type"`
	ModuleID     string         `json:"module_id,omitempty"`
	Details      map[string]any `json:"details"`
	Timestamp    time.Time      `json:"-"`
	Resolved     bool           `json:"resolved"`

	Extra map[string]json.RawMessage `json:"-"`
}

var alertFields = []string{
	"user_id", "struggle_type", "module_id", "details", "timestamp", "resolved",
}

// UnmarshalJSON decodes the wire form, where timestamp is unix seconds as a
// float.
func (a *Alert) UnmarshalJSON(data []byte) error {
	type plain Alert
	var raw struct {
		plain
		Timestamp float64 `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	extra, err := wire.Extras(data, alertFields...)
	if err != nil {
		return err
	}

	*a = Alert(raw.plain)
	a.Timestamp = unixSeconds(raw.Timestamp)
	a.Extra = extra
	return nil
}

// MarshalJSON writes the wire form back, including preserved extras.
func (a Alert) MarshalJSON() ([]byte, error) {
	type plain Alert
	out := struct {
		plain
		Timestamp float64 `json:"timestamp"`
	}{plain: plain(a)}
	if !a.Timestamp.IsZero() {
		out.Timestamp = float64(a.Timestamp.Unix()) + float64(a.Timestamp.Nanosecond())/float64(time.Second)
	}
	return wire.Merge(out, a.Extra)
}

// Key identifies an alert for de-duplication across polls.
func (a Alert) Key() string {
	return fmt.Sprintf("%s|%s|%s|%d", a.UserID, a.StruggleType, a.ModuleID, a.Timestamp.UnixNano())
}

// Validate checks the fields every alert must carry.
func (a Alert) Validate() error {
	if a.UserID == "" {
		return fmt.Errorf("struggle alert: user_id is required")
	}
	if a.StruggleType == "" {
		return fmt.Errorf("struggle alert for %s: struggle_type is required", a.UserID)
	}
	return nil
}

func unixSeconds(v float64) time.Time {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return time.Time{}
	}
	sec, frac := math.Modf(v)
	return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC()
}
