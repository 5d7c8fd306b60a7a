package domain

import (
	"fmt"
	"strings"
)

// Status is the outcome of a rule, or of the whole project.
type Status string

const (
	StatusPass    Status = "PASS"
	StatusWarning Status = "WARNING"
	StatusFail    Status = "FAIL"
)

func (s Status) rank() int {
	switch s {
	case StatusFail:
		return 2
	case StatusWarning:
		return 1
	default:
		return 0
	}
}

// Escalate returns the status after observing a finding of severity sev.
// It never de-escalates.
func (s Status) Escalate(sev Severity) Status {
	next := StatusWarning
	if sev == SeverityBlocking {
		next = StatusFail
	}
	return Worst(s, next)
}

// Worst returns the most severe of the given statuses (PASS when empty).
func Worst(statuses ...Status) Status {
	worst := StatusPass
	for _, s := range statuses {
		if s.rank() > worst.rank() {
			worst = s
		}
	}
	return worst
}

// StatusFor derives a status from a set of findings.
func StatusFor(findings []Finding) Status {
	s := StatusPass
	for _, f := range findings {
		s = s.Escalate(f.Severity)
	}
	return s
}

// RuleResult summarises one rule in a CheckReport.
type RuleResult struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Severity Severity `json:"severity"`
	Fixable  bool     `json:"fixable"`
	Status   Status   `json:"status"`
	Findings int      `json:"findings"`
}

// CheckReport is the deterministic aggregate of one engine run.
type CheckReport struct {
	Root       string               `json:"root"`
	CommitHash string               `json:"commit_hash,omitempty"`
	Resources  int                  `json:"resources"`
	ByKind     map[ResourceKind]int `json:"resources_by_kind,omitempty"`
	Overall    Status               `json:"overall"`
	Rules      []RuleResult         `json:"rules"`
	Findings   []Finding            `json:"findings"`
	Notices    []string             `json:"notices,omitempty"`
}

// KindBreakdown lists the resource count per kind in display order, e.g.
// "4 datasource, 3 pipe". Kinds with no resources are left out.
func (r *CheckReport) KindBreakdown() string {
	var parts []string
	for _, k := range ValidKinds {
		if n := r.ByKind[k]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, k))
		}
	}
	return strings.Join(parts, ", ")
}

// PerRule maps rule id to status.
func (r *CheckReport) PerRule() map[string]Status {
	m := make(map[string]Status, len(r.Rules))
	for _, rr := range r.Rules {
		m[rr.ID] = rr.Status
	}
	return m
}

// FindingsFor returns the findings of one rule, in report order.
func (r *CheckReport) FindingsFor(ruleID string) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.RuleID == ruleID {
			out = append(out, f)
		}
	}
	return out
}

// Fixable returns the fixable findings in report order.
func (r *CheckReport) Fixable() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Fixable {
			out = append(out, f)
		}
	}
	return out
}

// Summarize recomputes per-rule and overall statuses from the findings.
// rules fixes the order of RuleResults.
func (r *CheckReport) Summarize(rules []Rule) {
	r.Rules = make([]RuleResult, 0, len(rules))
	statuses := make([]Status, 0, len(rules))
	for _, rule := range rules {
		findings := r.FindingsFor(rule.ID)
		status := StatusFor(findings)
		r.Rules = append(r.Rules, RuleResult{
			ID:       rule.ID,
			Title:    rule.Title,
			Severity: rule.Severity,
			Fixable:  rule.Fixable,
			Status:   status,
			Findings: len(findings),
		})
		statuses = append(statuses, status)
	}
	r.Overall = Worst(statuses...)
}
