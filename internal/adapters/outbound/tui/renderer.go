package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tinybirdco/forward-migration-checker/internal/domain"
)

// ── Warm palette ──
var (
	accent = lipgloss.Color("#D97706") // amber
	fg     = lipgloss.Color("#E8E6E3") // warm light gray
	dim    = lipgloss.Color("#6B7280") // muted gray
	faint  = lipgloss.Color("#3F3F46") // very dim
	passC  = lipgloss.Color("#22C55E") // green
	failC  = lipgloss.Color("#EF4444") // red
	warnC  = lipgloss.Color("#F59E0B") // amber-yellow
	info   = lipgloss.Color("#8B949E") // soft blue-gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(passC)
	failStyle     = lipgloss.NewStyle().Foreground(failC)
	warnStyle     = lipgloss.NewStyle().Foreground(warnC)
	infoStyle     = lipgloss.NewStyle().Foreground(info)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	ruleNameStyle = lipgloss.NewStyle().Bold(true).Foreground(fg)
	hintStyle     = lipgloss.NewStyle().Foreground(dim).Italic(true)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderCheckReport renders a CheckReport as the per-rule status summary
// followed by every finding, grouped by rule.
func RenderCheckReport(report *domain.CheckReport) string {
	var b strings.Builder

	// ── Header ──
	title := headerStyle.Render("forward-check")
	subtitle := dimStyle.Render("Tinybird Classic → Forward compatibility")
	overall := statusStyle(report.Overall).Bold(true).Render(string(report.Overall))
	counts := fmt.Sprintf("%d resources  %d findings", report.Resources, len(report.Findings))
	if kinds := report.KindBreakdown(); kinds != "" {
		counts += "\n" + kinds
	}
	counts = dimStyle.Render(counts)

	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + overall + "\n" + counts))
	b.WriteString("\n\n")

	// ── Rules ──
	for _, rr := range report.Rules {
		renderRuleLine(&b, rr)
	}

	// ── Findings ──
	if len(report.Findings) > 0 {
		b.WriteString("\n  " + separatorLine + "\n")
		for _, rr := range report.Rules {
			findings := report.FindingsFor(rr.ID)
			if len(findings) == 0 {
				continue
			}
			fmt.Fprintf(&b, "\n  %s %s\n", ruleNameStyle.Render(rr.ID), dimStyle.Render(fmt.Sprintf("(%d)", len(findings))))
			for _, f := range findings {
				renderFinding(&b, f)
			}
		}
	}

	if len(report.Notices) > 0 {
		b.WriteString("\n")
		for _, n := range report.Notices {
			b.WriteString("  " + infoStyle.Render("note ") + dimStyle.Render(n) + "\n")
		}
	}

	// ── Footer ──
	b.WriteString("\n")
	if hasFixable(report) {
		b.WriteString("  " + hintStyle.Render("Run `forward-check fix` to apply the available fixes.") + "\n")
	} else if report.Overall == domain.StatusPass {
		b.WriteString("  " + passStyle.Render("Ready for Forward.") + "\n")
	}
	return b.String()
}

func renderRuleLine(b *strings.Builder, rr domain.RuleResult) {
	name := ruleNameStyle.Render(padRight(rr.ID, 20))
	status := statusStyle(rr.Status).Render(padRight(string(rr.Status), 8))

	detail := ""
	if rr.Findings > 0 {
		detail = dimStyle.Render(fmt.Sprintf("%d finding(s)", rr.Findings))
		if rr.Fixable {
			detail += "  " + faintStyle.Render("fixable")
		}
	}
	fmt.Fprintf(b, "  %s %s %s %s\n", statusIcon(rr.Status), name, status, detail)
}

func renderFinding(b *strings.Builder, f domain.Finding) {
	loc := f.ResourcePath
	if f.Locator.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, f.Locator.Line)
	}

	tag := severityTag(f.Severity)
	fmt.Fprintf(b, "    %s %s\n", tag, fileStyle.Render(loc))
	fmt.Fprintf(b, "          %s\n", dimStyle.Render(f.Message))
}

func severityTag(sev domain.Severity) string {
	switch sev {
	case domain.SeverityBlocking:
		return failStyle.Bold(true).Render("block")
	case domain.SeverityWarning:
		return warnStyle.Bold(true).Render("warn ")
	default:
		return infoStyle.Render("info ")
	}
}

func statusStyle(s domain.Status) lipgloss.Style {
	switch s {
	case domain.StatusFail:
		return failStyle
	case domain.StatusWarning:
		return warnStyle
	default:
		return passStyle
	}
}

func statusIcon(s domain.Status) string {
	switch s {
	case domain.StatusFail:
		return failStyle.Render("✗")
	case domain.StatusWarning:
		return warnStyle.Render("!")
	default:
		return passStyle.Render("✓")
	}
}

func hasFixable(report *domain.CheckReport) bool {
	return len(report.Fixable()) > 0
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
