// Package rules holds the Classic-to-Forward compatibility rules and the fix
// builders attached to them. Rules are plain values; DefaultRules returns
// them in registration order, which is also report order.
package rules

import (
	"github.com/tinybirdco/forward-migration-checker/internal/domain"
)

const (
	IDVersionTag       = "VersionTag"
	IDSink             = "Sink"
	IDSharedDatasource = "SharedDatasource"
	IDDynamoDbImport   = "DynamoDbImport"
	IDEndpointType     = "EndpointType"
	IDIncludeFile      = "IncludeFile"
)

// DefaultRules returns the six shipped rules in registration order.
func DefaultRules() []domain.Rule {
	return []domain.Rule{
		VersionTag(),
		Sink(),
		SharedDatasource(),
		DynamoDbImport(),
		EndpointType(),
		IncludeFile(),
	}
}

// IDs returns the ids of the default rules in registration order.
func IDs() []string {
	all := DefaultRules()
	ids := make([]string, len(all))
	for i, r := range all {
		ids[i] = r.ID
	}
	return ids
}

// Enabled filters DefaultRules by the project's rules.disable list.
func Enabled(cfg domain.ProjectConfig) []domain.Rule {
	var out []domain.Rule
	for _, r := range DefaultRules() {
		if !cfg.IsRuleDisabled(r.ID) {
			out = append(out, r)
		}
	}
	return out
}

// Lookup finds a default rule by id or slug.
func Lookup(name string) (domain.Rule, bool) {
	for _, r := range DefaultRules() {
		if domain.MatchesRule(r.ID, name) {
			return r, true
		}
	}
	return domain.Rule{}, false
}

// Propose derives a fix for a finding. It returns false when the finding is
// not fixable or its rule has no fix builder.
func Propose(f domain.Finding, s domain.FixSettings) (*domain.FixProposal, bool) {
	if !f.Fixable || f.Degraded {
		return nil, false
	}
	r, ok := Lookup(f.RuleID)
	if !ok || r.Propose == nil {
		return nil, false
	}
	p := r.Propose(f, fillSettings(s))
	return p, p != nil
}

func fillSettings(s domain.FixSettings) domain.FixSettings {
	d := domain.DefaultFixSettings()
	if s.DefaultNode == "" {
		s.DefaultNode = d.DefaultNode
	}
	if s.IncludesBackup == "" {
		s.IncludesBackup = d.IncludesBackup
	}
	if s.VendorBackup == "" {
		s.VendorBackup = d.VendorBackup
	}
	if s.CommentPrefix == "" {
		s.CommentPrefix = d.CommentPrefix
	}
	return s
}
