package rules

import "github.com/tinybirdco/forward-migration-checker/internal/domain"

// Info is the serialisable description of a rule.
type Info struct {
	ID          string          `json:"id"`
	Slug        string          `json:"slug"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Severity    domain.Severity `json:"severity"`
	Fixable     bool            `json:"fixable"`
	AppliesTo   []string        `json:"applies_to"`
	Enabled     bool            `json:"enabled"`
}

// Catalog describes every default rule, marking those cfg disables.
func Catalog(cfg domain.ProjectConfig) []Info {
	all := DefaultRules()
	out := make([]Info, 0, len(all))
	for _, r := range all {
		kinds := make([]string, 0, len(r.AppliesTo)+1)
		for _, k := range r.AppliesTo {
			kinds = append(kinds, string(k))
		}
		if r.CheckProject != nil {
			kinds = append(kinds, "project")
		}
		out = append(out, Info{
			ID:          r.ID,
			Slug:        r.Slug(),
			Title:       r.Title,
			Description: r.Description,
			Severity:    r.Severity,
			Fixable:     r.Fixable,
			AppliesTo:   kinds,
			Enabled:     !cfg.IsRuleDisabled(r.ID),
		})
	}
	return out
}
