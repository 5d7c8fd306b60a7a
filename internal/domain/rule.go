package domain

import (
	"strings"

	"github.com/fatih/camelcase"
)

// CheckFunc inspects one resource. It must not mutate it.
type CheckFunc func(res Resource) ([]Finding, error)

// ProjectCheckFunc inspects project-wide facts such as vendor directories.
type ProjectCheckFunc func(p *Project) ([]Finding, error)

// ProposeFunc derives a fix for one of the rule's own findings.
type ProposeFunc func(f Finding, s FixSettings) *FixProposal

// Rule is a stateless, named compatibility check. Rules are plain values in
// an ordered registry; the engine iterates them in registration order.
type Rule struct {
	ID           string
	Title        string
	Description  string
	AppliesTo    []ResourceKind
	Severity     Severity
	Fixable      bool
	Check        CheckFunc
	CheckProject ProjectCheckFunc
	Propose      ProposeFunc
}

// Applies reports whether the rule inspects resources of kind k.
func (r Rule) Applies(k ResourceKind) bool {
	for _, kind := range r.AppliesTo {
		if kind == k {
			return true
		}
	}
	return false
}

// Slug is the kebab-case form of the rule ID (DynamoDbImport -> dynamo-db-import).
func (r Rule) Slug() string { return RuleSlug(r.ID) }

// RuleSlug converts a CamelCase rule ID into its kebab-case form.
func RuleSlug(id string) string {
	words := camelcase.Split(id)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "-")
}

// MatchesRule reports whether name refers to the rule id, either verbatim
// (case-insensitive) or by slug.
func MatchesRule(id, name string) bool {
	name = strings.TrimSpace(name)
	return strings.EqualFold(id, name) || RuleSlug(id) == strings.ToLower(name)
}
