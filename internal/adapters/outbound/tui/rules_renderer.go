package tui

import (
	"bytes"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/tinybirdco/forward-migration-checker/internal/domain"
)

// RenderRules prints the rule catalog. disabled marks rules turned off by the
// project config.
func RenderRules(rules []domain.Rule, disabled func(id string) bool) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Rule", "Slug", "Severity", "Fixable", "Applies to", "Enabled"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	for _, r := range rules {
		kinds := make([]string, 0, len(r.AppliesTo))
		for _, k := range r.AppliesTo {
			kinds = append(kinds, string(k))
		}
		if r.CheckProject != nil {
			kinds = append(kinds, "project")
		}
		enabled := "yes"
		if disabled != nil && disabled(r.ID) {
			enabled = "no"
		}
		table.Append([]string{r.ID, r.Slug(), string(r.Severity), yesNo(r.Fixable), strings.Join(kinds, ", "), enabled})
	}
	table.Render()
	return buf.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
