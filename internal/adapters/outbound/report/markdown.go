// Package report renders a CheckReport as a markdown migration plan.
package report

import (
	"fmt"
	"strings"

	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/fsutil"
	"github.com/tinybirdco/forward-migration-checker/internal/domain"
	"github.com/tinybirdco/forward-migration-checker/internal/domain/rules"
)

// DefaultFileName is where the plan is written when no --output is given.
const DefaultFileName = "migration.md"

// Render builds the migration plan. fixes are the results of the fix run
// that preceded it, if any; only applied ones are listed.
func Render(report *domain.CheckReport, fixes []domain.FixResult) string {
	var b strings.Builder

	b.WriteString("# Tinybird Classic to Forward Migration Plan\n\n")
	writeSummary(&b, report)

	b.WriteString("## Check Results\n")
	for i, rr := range report.Rules {
		writeRuleSection(&b, i+1, rr, report.FindingsFor(rr.ID), fixes)
	}

	b.WriteString("\n## ⚠️ Important Warning\n\n")
	b.WriteString("**BI Connector Deprecation**: the BI Connector is not available in Tinybird Forward. ")
	b.WriteString("Integrations that rely on it must move to another connection method:\n")
	b.WriteString("- REST API endpoints\n- SQL API\n- Direct integrations with supported BI tools\n")

	writeMigrationPlan(&b, report)
	writeFixSummary(&b, fixes)
	writeBackups(&b, fixes)

	b.WriteString("\n---\n*Generated by forward-check*\n")
	return b.String()
}

// Write renders the plan and writes it atomically to path.
func Write(path string, report *domain.CheckReport, fixes []domain.FixResult) error {
	return fsutil.WriteFileAtomic(path, []byte(Render(report, fixes)))
}

func writeSummary(b *strings.Builder, report *domain.CheckReport) {
	b.WriteString("## Executive Summary\n\n")
	fmt.Fprintf(b, "**Overall status**: %s\n\n", report.Overall)
	if kinds := report.KindBreakdown(); kinds != "" {
		fmt.Fprintf(b, "- **Resources checked**: %d (%s)\n", report.Resources, kinds)
	} else {
		fmt.Fprintf(b, "- **Resources checked**: %d\n", report.Resources)
	}

	blocking, warnings := 0, 0
	for _, f := range report.Findings {
		if f.Severity == domain.SeverityBlocking {
			blocking++
		} else {
			warnings++
		}
	}
	fmt.Fprintf(b, "- **Blocking issues**: %d\n", blocking)
	fmt.Fprintf(b, "- **Warnings**: %d\n", warnings)
	fmt.Fprintf(b, "- **Auto-fixable**: %d\n", len(report.Fixable()))
	if report.CommitHash != "" {
		fmt.Fprintf(b, "- **Commit**: `%s`\n", report.CommitHash)
	}
	for _, n := range report.Notices {
		fmt.Fprintf(b, "\n> %s\n", n)
	}
	b.WriteString("\n")
}

func writeRuleSection(b *strings.Builder, n int, rr domain.RuleResult, findings []domain.Finding, fixes []domain.FixResult) {
	fmt.Fprintf(b, "\n### %d. %s (%s)\n", n, rr.Title, rr.ID)
	fmt.Fprintf(b, "**Status**: %s\n", rr.Status)
	if len(findings) == 0 {
		b.WriteString("- **Issues**: None\n")
	} else {
		b.WriteString("- **Issues**:\n")
		for _, f := range findings {
			fmt.Fprintf(b, "  - `%s` %s\n", location(f), f.Message)
		}
	}

	applied := appliedFor(rr.ID, fixes)
	if len(applied) > 0 {
		fmt.Fprintf(b, "- **🔧 Auto-Fixes Applied**: %d\n", len(applied))
		for _, r := range applied {
			fmt.Fprintf(b, "  - %s in `%s`\n", r.Description, r.ResourcePath)
		}
	}
}

func writeMigrationPlan(b *strings.Builder, report *domain.CheckReport) {
	b.WriteString("\n## Migration Plan\n\n")
	step := 0
	for _, rr := range report.Rules {
		if rr.Status == domain.StatusPass {
			continue
		}
		step++
		advice := rr.Title
		if r, ok := rules.Lookup(rr.ID); ok {
			advice = r.Description
		}
		how := "manual change"
		if rr.Fixable {
			how = "`forward-check fix --rule " + domain.RuleSlug(rr.ID) + "`"
		}
		fmt.Fprintf(b, "%d. **%s** (%d): %s Fix with %s.\n", step, rr.ID, rr.Findings, advice, how)
	}
	if step == 0 {
		b.WriteString("No changes are required. The project is ready for Forward.\n")
	}
}

func writeFixSummary(b *strings.Builder, fixes []domain.FixResult) {
	b.WriteString("\n## Auto-Fixes Summary\n\n")
	total := 0
	for _, r := range fixes {
		if r.Status != domain.FixApplied {
			continue
		}
		total++
		fmt.Fprintf(b, "- **%s** `%s`: %s\n", r.RuleID, r.ResourcePath, r.Description)
		for _, se := range r.SideEffects {
			if se.Status == domain.FixApplied {
				fmt.Fprintf(b, "  - moved `%s` to `%s`\n", se.Source, se.Destination)
			}
		}
	}
	if total == 0 {
		b.WriteString("No automatic fixes were applied during this run.\n")
		return
	}
	fmt.Fprintf(b, "\n**Total**: %d issues were automatically resolved.\n", total)
}

func writeBackups(b *strings.Builder, fixes []domain.FixResult) {
	b.WriteString("\n## Next Steps\n\n")
	b.WriteString("1. Review all identified issues above\n")
	b.WriteString("2. Apply the remaining manual changes\n")
	b.WriteString("3. Test the modified project in a development environment\n")
	b.WriteString("4. Contact Tinybird support for help with specific migration challenges\n")

	b.WriteString("\n## Backup Files\n\n")
	var restores []string
	for _, r := range fixes {
		if r.BackupPath != "" {
			restores = append(restores, fmt.Sprintf("cp %s %s", r.BackupPath, r.ResourcePath))
		}
	}
	if len(restores) == 0 {
		b.WriteString("Every modified file is backed up next to the original with the `.backup` suffix. To restore one:\n\n")
		restores = []string{"cp file.datasource.backup file.datasource"}
	} else {
		b.WriteString("The original content of every modified file was saved before the fix. To restore:\n\n")
	}
	b.WriteString("```bash\n")
	for _, r := range restores {
		b.WriteString(r + "\n")
	}
	b.WriteString("```\n")
}

func appliedFor(ruleID string, fixes []domain.FixResult) []domain.FixResult {
	var out []domain.FixResult
	for _, r := range fixes {
		if r.RuleID == ruleID && r.Status == domain.FixApplied {
			out = append(out, r)
		}
	}
	return out
}

func location(f domain.Finding) string {
	if f.Locator.Line > 0 {
		return fmt.Sprintf("%s:%d", f.ResourcePath, f.Locator.Line)
	}
	return f.ResourcePath
}
