package tui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/tinybirdco/forward-migration-checker/internal/domain"
)

// RenderProposal shows a fix proposal and its diff before the user is asked
// to confirm it.
func RenderProposal(p *domain.FixProposal, diff string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s %s\n", ruleNameStyle.Render(p.Finding.RuleID), fileStyle.Render(p.Finding.ResourcePath))
	fmt.Fprintf(&b, "  %s\n", dimStyle.Render(p.Description))
	for _, se := range p.SideEffects {
		fmt.Fprintf(&b, "  %s %s\n", infoStyle.Render("+"), dimStyle.Render(se.Description))
	}
	if diff != "" {
		b.WriteString(RenderDiff(diff))
	}
	return b.String()
}

// RenderDiff colours a unified diff.
func RenderDiff(diff string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			b.WriteString("    " + faintStyle.Render(line))
		case strings.HasPrefix(line, "@@"):
			b.WriteString("    " + infoStyle.Render(line))
		case strings.HasPrefix(line, "+"):
			b.WriteString("    " + passStyle.Render(line))
		case strings.HasPrefix(line, "-"):
			b.WriteString("    " + failStyle.Render(line))
		default:
			b.WriteString("    " + dimStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderFixResults prints one table row per fix and per side effect, with a
// footer counting applied fixes.
func RenderFixResults(results []domain.FixResult) string {
	if len(results) == 0 {
		return "  " + dimStyle.Render("No fixable findings.") + "\n"
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Rule", "Resource", "Status", "Backup", "Lines"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT,
	})

	applied := 0
	for _, r := range results {
		if r.Status == domain.FixApplied {
			applied++
		}
		lines := ""
		if r.LinesChanged > 0 {
			lines = fmt.Sprintf("%d", r.LinesChanged)
		}
		table.Append([]string{r.RuleID, r.ResourcePath, statusText(r.Status, r.Error), r.BackupPath, lines})
		for _, se := range r.SideEffects {
			table.Append([]string{"", "↳ " + se.Source + " → " + se.Destination, statusText(se.Status, se.Error), "", ""})
		}
	}
	table.SetFooter([]string{"", "", fmt.Sprintf("%d/%d applied", applied, len(results)), "", ""})
	table.Render()
	return buf.String()
}

func statusText(s domain.FixStatus, errText string) string {
	if errText != "" {
		return fmt.Sprintf("%s: %s", s, errText)
	}
	return string(s)
}
