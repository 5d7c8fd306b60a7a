package domain

// Transform rewrites a datafile's text. Transforms must be idempotent:
// applying one to its own output returns that output unchanged.
type Transform func(text string) string

// Confirm asks the user a yes/no question.
type Confirm func(prompt string) bool

// Always and Never are fixed Confirm answers.
func Always(string) bool { return true }
func Never(string) bool  { return false }

// SideEffectKind names a non-text action attached to a fix.
type SideEffectKind string

const (
	SideEffectRelocateInclude SideEffectKind = "relocate_include"
	SideEffectRelocateVendor  SideEffectKind = "relocate_vendor"
)

// SideEffect is a separately confirmable filesystem action. Paths are
// relative to the project root.
type SideEffect struct {
	Kind        SideEffectKind `json:"kind"`
	Description string         `json:"description"`
	Source      string         `json:"source"`
	Destination string         `json:"destination"`
}

// FixProposal is a fix derived from a fixable finding. Transform is nil for
// fixes that only carry side effects.
type FixProposal struct {
	Finding     Finding      `json:"finding"`
	Description string       `json:"description"`
	Transform   Transform    `json:"-"`
	SideEffects []SideEffect `json:"side_effects,omitempty"`
}

// FixSettings are the project-configurable knobs fix builders read.
type FixSettings struct {
	DefaultNode    string
	IncludesBackup string
	VendorBackup   string
	CommentPrefix  string
}

// DefaultFixSettings mirrors DefaultConfig.
func DefaultFixSettings() FixSettings {
	return DefaultConfig().FixSettings()
}

// FixStatus is the outcome of applying one proposal or side effect.
type FixStatus string

const (
	FixApplied   FixStatus = "applied"
	FixDeclined  FixStatus = "declined"
	FixUnchanged FixStatus = "unchanged"
	FixPlanned   FixStatus = "planned"
	FixFailed    FixStatus = "failed"
)

// FixResult describes what Apply did.
type FixResult struct {
	RuleID       string             `json:"rule_id"`
	ResourcePath string             `json:"resource_path"`
	Description  string             `json:"description"`
	Status       FixStatus          `json:"status"`
	BackupPath   string             `json:"backup_path,omitempty"`
	OldBytes     int                `json:"old_bytes"`
	NewBytes     int                `json:"new_bytes"`
	LinesChanged int                `json:"lines_changed"`
	Diff         string             `json:"diff,omitempty"`
	SideEffects  []SideEffectResult `json:"side_effects,omitempty"`
	Error        string             `json:"error,omitempty"`
}

// SideEffectResult describes one executed (or skipped) side effect.
type SideEffectResult struct {
	SideEffect
	Status FixStatus `json:"status"`
	Error  string    `json:"error,omitempty"`
}

// FixOptions are threaded into every Apply call.
type FixOptions struct {
	DryRun bool     `json:"dry_run"`
	Rules  []string `json:"rules,omitempty"`
}

// Selects reports whether the options include the rule.
func (o FixOptions) Selects(ruleID string) bool {
	if len(o.Rules) == 0 {
		return true
	}
	for _, name := range o.Rules {
		if MatchesRule(ruleID, name) {
			return true
		}
	}
	return false
}

// FixEntry is one line of the fix history.
type FixEntry struct {
	Timestamp    string    `json:"timestamp"`
	CommitHash   string    `json:"commit_hash,omitempty"`
	RuleID       string    `json:"rule_id"`
	ResourcePath string    `json:"resource_path"`
	Status       FixStatus `json:"status"`
	BackupPath   string    `json:"backup_path,omitempty"`
	Error        string    `json:"error,omitempty"`
}
