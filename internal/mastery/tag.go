package mastery

// Severity orders how much attention a level needs, most urgent first.
type Severity string

const (
	SeverityCritical  Severity = "critical"
	SeverityWarning   Severity = "warning"
	SeverityOK        Severity = "ok"
	SeverityExcellent Severity = "excellent"
)

// Tag is the colour and severity shown next to a level.
type Tag struct {
	Color    string   `json:"color"`
	Severity Severity `json:"severity"`
}

// TagFor returns the display tag of a level. Colours match the dashboard
// palette: red, yellow, green, blue.
func TagFor(l Level) Tag {
	switch l {
	case Learning:
		return Tag{Color: "yellow", Severity: SeverityWarning}
	case Proficient:
		return Tag{Color: "green", Severity: SeverityOK}
	case Mastered:
		return Tag{Color: "blue", Severity: SeverityExcellent}
	default:
		return Tag{Color: "red", Severity: SeverityCritical}
	}
}
