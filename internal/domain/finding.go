package domain

// Severity grades a finding.
type Severity string

const (
	SeverityBlocking Severity = "blocking"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Rank orders severities; higher is more severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityBlocking:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// Scope tells whether a finding targets a single file or the whole project.
type Scope string

const (
	ScopeResource Scope = "resource"
	ScopeProject  Scope = "project"
)

// Finding is one rule firing on one resource (or on the project).
type Finding struct {
	RuleID       string       `json:"rule_id"`
	ResourcePath string       `json:"resource_path"`
	ResourceKind ResourceKind `json:"resource_kind,omitempty"`
	Scope        Scope        `json:"scope"`
	Severity     Severity     `json:"severity"`
	Message      string       `json:"message"`
	Fixable      bool         `json:"fixable"`
	Degraded     bool         `json:"degraded,omitempty"`
	Locator      Locator      `json:"locator"`
}

// Locator carries what a fix needs to act on a finding without re-running
// the rule: the primary line, every line the fix touches, and the matched
// text of the primary line so shifted files can still be matched.
type Locator struct {
	Line    int    `json:"line,omitempty"`
	EndLine int    `json:"end_line,omitempty"`
	Lines   []int  `json:"lines,omitempty"`
	Match   string `json:"match,omitempty"`
	Target  string `json:"target,omitempty"`
}
