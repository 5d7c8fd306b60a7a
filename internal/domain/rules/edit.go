package rules

import (
	"strings"

	"github.com/tinybirdco/forward-migration-checker/internal/domain"
)

// declFinding builds a resource-scoped finding located at declaration d.
func declFinding(res domain.Resource, d domain.Declaration, msg string) domain.Finding {
	line, _ := res.View.Line(d.Line)
	return domain.Finding{
		Scope:   domain.ScopeResource,
		Message: msg,
		Locator: domain.Locator{
			Line:    d.Line,
			EndLine: d.EndLine(),
			Lines:   declLines(d),
			Match:   strings.TrimSpace(line.Text),
		},
	}
}

// locate finds the declaration a fix targets in the current text. The
// recorded line wins when it still holds the matched text. If the file has
// shifted, the first live declaration with the same text is used, unless a
// commented-out copy shows the fix already ran.
func locate(v domain.ParsedView, loc domain.Locator, prefix string) (domain.Declaration, bool) {
	done := strings.TrimSpace(prefix + loc.Match)

	if l, ok := v.Line(loc.Line); ok {
		trimmed := strings.TrimSpace(l.Text)
		if trimmed == loc.Match {
			if d, ok := v.DeclarationAt(loc.Line); ok {
				return d, true
			}
		}
		if trimmed == done {
			return domain.Declaration{}, false
		}
	}

	for _, l := range v.Lines {
		if strings.TrimSpace(l.Text) == done {
			return domain.Declaration{}, false
		}
	}
	for _, d := range v.Declarations {
		l, _ := v.Line(d.Line)
		if strings.TrimSpace(l.Text) == loc.Match {
			return d, true
		}
	}
	return domain.Declaration{}, false
}

// editLines applies fn to the lines of text, keeping a trailing newline.
func editLines(text string, fn func(lines []string) []string) string {
	trailing := strings.HasSuffix(text, "\n")
	lines := fn(domain.SplitLines(text))
	out := strings.Join(lines, "\n")
	if trailing && len(lines) > 0 {
		out += "\n"
	}
	return out
}

// commentOut prefixes the given 1-based lines with prefix. A byte order mark
// stays at the start of the file.
func commentOut(text string, prefix string, numbers []int) string {
	if len(numbers) == 0 {
		return text
	}
	return editLines(text, func(lines []string) []string {
		for _, n := range numbers {
			if n < 1 || n > len(lines) {
				continue
			}
			if rest, ok := strings.CutPrefix(lines[n-1], domain.BOM); ok && n == 1 {
				lines[0] = domain.BOM + prefix + rest
				continue
			}
			lines[n-1] = prefix + lines[n-1]
		}
		return lines
	})
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// declLines returns the declaration line followed by its block lines.
func declLines(d domain.Declaration) []int {
	return append([]int{d.Line}, d.Block...)
}
