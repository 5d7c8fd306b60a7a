package rules

import (
	"sort"
	"strings"

	"github.com/tinybirdco/forward-migration-checker/internal/domain"
)

// Sink flags every `TYPE sink` declaration in a pipe. Sink pipes are not
// supported by Forward.
func Sink() domain.Rule {
	return domain.Rule{
		ID:          IDSink,
		Title:       "Sink pipes",
		Description: "Sink nodes and their EXPORT_* settings are not supported in Forward.",
		AppliesTo:   []domain.ResourceKind{domain.KindPipe},
		Severity:    domain.SeverityBlocking,
		Fixable:     true,
		Check:       checkSink,
		Propose:     proposeSink,
	}
}

func isSink(d domain.Declaration) bool {
	return d.Is("TYPE") && strings.EqualFold(d.FirstValue(), "sink")
}

func checkSink(res domain.Resource) ([]domain.Finding, error) {
	var out []domain.Finding
	for _, d := range res.View.Declarations {
		if !isSink(d) {
			continue
		}
		f := declFinding(res, d, "TYPE sink is not supported in Forward")
		f.Locator.Lines = sinkLines(res.View, d)
		f.Locator.EndLine = f.Locator.Lines[len(f.Locator.Lines)-1]
		out = append(out, f)
	}
	return out, nil
}

// sinkLines returns the TYPE sink line plus every EXPORT_* declaration (and
// its block) in the node that holds it, sorted. The node runs from the
// nearest NODE declaration above the TYPE line to the next NODE declaration.
func sinkLines(v domain.ParsedView, typeDecl domain.Declaration) []int {
	first, last := 1, len(v.Lines)
	for _, d := range v.Find("NODE") {
		if d.Line <= typeDecl.Line {
			first = d.Line
			continue
		}
		last = d.Line - 1
		break
	}

	lines := []int{typeDecl.Line}
	for _, d := range v.Declarations {
		if d.Line < first || d.Line > last || !strings.HasPrefix(d.Keyword, "EXPORT_") {
			continue
		}
		lines = append(lines, declLines(d)...)
	}
	sort.Ints(lines)
	return lines
}

func proposeSink(f domain.Finding, s domain.FixSettings) *domain.FixProposal {
	loc := f.Locator
	return &domain.FixProposal{
		Finding:     f,
		Description: "Comment out TYPE sink and its EXPORT_* settings",
		Transform: func(text string) string {
			v := domain.Parse(text)
			d, ok := locate(v, loc, s.CommentPrefix)
			if !ok || !isSink(d) {
				return text
			}
			return commentOut(text, s.CommentPrefix, sinkLines(v, d))
		},
	}
}
