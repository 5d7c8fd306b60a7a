package rules

import (
	"fmt"
	"path"

	"github.com/tinybirdco/forward-migration-checker/internal/domain"
)

// SharedDatasource flags SHARED_WITH declarations and, project-wide, every
// vendor directory holding datasources shared from other workspaces.
func SharedDatasource() domain.Rule {
	return domain.Rule{
		ID:           IDSharedDatasource,
		Title:        "Shared datasources",
		Description:  "Sharing datasources across workspaces (SHARED_WITH, vendor/) is not supported in Forward.",
		AppliesTo:    []domain.ResourceKind{domain.KindDatasource},
		Severity:     domain.SeverityBlocking,
		Fixable:      true,
		Check:        checkSharedWith,
		CheckProject: checkVendorDirs,
		Propose:      proposeShared,
	}
}

func checkSharedWith(res domain.Resource) ([]domain.Finding, error) {
	var out []domain.Finding
	for _, d := range res.View.Find("SHARED_WITH") {
		out = append(out, declFinding(res, d, "SHARED_WITH is not supported in Forward"))
	}
	return out, nil
}

func checkVendorDirs(p *domain.Project) ([]domain.Finding, error) {
	var out []domain.Finding
	for _, dir := range p.VendorDirs {
		out = append(out, domain.Finding{
			ResourcePath: dir,
			Scope:        domain.ScopeProject,
			Message:      fmt.Sprintf("vendor directory %s holds shared datasources, which Forward does not support", dir),
			Locator:      domain.Locator{Target: dir},
		})
	}
	return out, nil
}

func proposeShared(f domain.Finding, s domain.FixSettings) *domain.FixProposal {
	if f.Scope == domain.ScopeProject {
		return &domain.FixProposal{
			Finding:     f,
			Description: fmt.Sprintf("Move vendor directory %s to %s", f.ResourcePath, s.VendorBackup),
			SideEffects: []domain.SideEffect{{
				Kind:        domain.SideEffectRelocateVendor,
				Description: fmt.Sprintf("Move %s to %s", f.ResourcePath, path.Join(s.VendorBackup, f.ResourcePath)),
				Source:      f.ResourcePath,
				Destination: path.Join(s.VendorBackup, f.ResourcePath),
			}},
		}
	}
	return &domain.FixProposal{
		Finding:     f,
		Description: "Remove the SHARED_WITH declaration",
		Transform:   removeSharedWith,
	}
}

// removeSharedWith drops every SHARED_WITH declaration with its block. A
// blank line left doubled by the removal is collapsed.
func removeSharedWith(text string) string {
	v := domain.Parse(text)
	decls := v.Find("SHARED_WITH")
	if len(decls) == 0 {
		return text
	}
	return editLines(text, func(lines []string) []string {
		for i := len(decls) - 1; i >= 0; i-- {
			start, end := decls[i].Line-1, decls[i].EndLine()
			lines = append(lines[:start], lines[end:]...)
			switch {
			case start < len(lines) && isBlank(lines[start]) && (start == 0 || isBlank(lines[start-1])):
				lines = append(lines[:start], lines[start+1:]...)
			case start == len(lines) && start > 0 && isBlank(lines[start-1]):
				lines = lines[:start-1]
			}
		}
		return lines
	})
}
