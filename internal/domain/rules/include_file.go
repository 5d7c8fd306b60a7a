package rules

import (
	"fmt"
	"path"
	"strings"

	"github.com/tinybirdco/forward-migration-checker/internal/domain"
)

// IncludeFile flags INCLUDE directives and the .incl fragments themselves.
// Forward does not resolve include files.
func IncludeFile() domain.Rule {
	return domain.Rule{
		ID:          IDIncludeFile,
		Title:       "Include files",
		Description: "INCLUDE directives and .incl fragments are not supported in Forward; inline their content.",
		AppliesTo:   []domain.ResourceKind{domain.KindDatasource, domain.KindPipe, domain.KindInclude},
		Severity:    domain.SeverityWarning,
		Fixable:     true,
		Check:       checkInclude,
		Propose:     proposeInclude,
	}
}

func checkInclude(res domain.Resource) ([]domain.Finding, error) {
	if res.Kind == domain.KindInclude {
		return []domain.Finding{{
			Scope:   domain.ScopeResource,
			Message: "include fragment; inline its content where it is used",
			Locator: domain.Locator{Target: res.Path},
		}}, nil
	}

	var out []domain.Finding
	for _, d := range res.View.Find("INCLUDE") {
		ref := d.FirstValue()
		if ref == "" {
			continue
		}
		f := declFinding(res, d, fmt.Sprintf("INCLUDE %q must be inlined", ref))
		f.Locator.Target = resolveInclude(res.Path, ref)
		out = append(out, f)
	}
	return out, nil
}

// resolveInclude turns an INCLUDE reference into a slash path relative to the
// project root. References that escape the root resolve to "".
func resolveInclude(from, ref string) string {
	ref = strings.ReplaceAll(ref, `\`, "/")
	if path.IsAbs(ref) {
		return ""
	}
	p := path.Clean(path.Join(path.Dir(from), ref))
	if p == ".." || strings.HasPrefix(p, "../") {
		return ""
	}
	return p
}

func relocateInclude(target string, s domain.FixSettings) domain.SideEffect {
	dst := path.Join(s.IncludesBackup, target)
	return domain.SideEffect{
		Kind:        domain.SideEffectRelocateInclude,
		Description: fmt.Sprintf("Move %s to %s", target, dst),
		Source:      target,
		Destination: dst,
	}
}

func proposeInclude(f domain.Finding, s domain.FixSettings) *domain.FixProposal {
	if f.ResourceKind == domain.KindInclude {
		return &domain.FixProposal{
			Finding:     f,
			Description: fmt.Sprintf("Move include fragment to %s", s.IncludesBackup),
			SideEffects: []domain.SideEffect{relocateInclude(f.ResourcePath, s)},
		}
	}

	loc := f.Locator
	p := &domain.FixProposal{
		Finding:     f,
		Description: "Comment out the INCLUDE directive",
		Transform: func(text string) string {
			v := domain.Parse(text)
			d, ok := locate(v, loc, s.CommentPrefix)
			if !ok || !d.Is("INCLUDE") {
				return text
			}
			return commentOut(text, s.CommentPrefix, []int{d.Line})
		},
	}
	if loc.Target != "" {
		p.SideEffects = []domain.SideEffect{relocateInclude(loc.Target, s)}
	}
	return p
}
