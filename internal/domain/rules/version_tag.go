package rules

import (
	"fmt"

	"github.com/tinybirdco/forward-migration-checker/internal/domain"
)

// VersionTag flags explicit VERSION declarations. Forward manages
// versions through deployments, so the tag has no effect there.
func VersionTag() domain.Rule {
	return domain.Rule{
		ID:          IDVersionTag,
		Title:       "Version tags",
		Description: "VERSION declarations are ignored by Forward; versions are managed by deployments.",
		AppliesTo:   []domain.ResourceKind{domain.KindDatasource, domain.KindPipe},
		Severity:    domain.SeverityWarning,
		Check:       checkVersionTag,
	}
}

func checkVersionTag(res domain.Resource) ([]domain.Finding, error) {
	var out []domain.Finding
	for _, d := range res.View.Find("VERSION") {
		if d.FirstValue() == "" {
			continue
		}
		msg := fmt.Sprintf("VERSION %s declared; remove it and rely on Forward deployments", d.FirstValue())
		out = append(out, declFinding(res, d, msg))
	}
	return out, nil
}
