package domain

import (
	"regexp"
	"strings"
)

// Line is one physical line of a datafile.
type Line struct {
	Number  int    `json:"number"`
	Text    string `json:"text"`
	Comment bool   `json:"comment,omitempty"`
}

// Declaration is a non-indented `KEYWORD [value]` line. Keyword is upper-cased.
// A value starting with ">" opens a block; Block holds the line numbers of
// the indented lines that belong to it.
type Declaration struct {
	Keyword string `json:"keyword"`
	Value   string `json:"value,omitempty"`
	Line    int    `json:"line"`
	Block   []int  `json:"block,omitempty"`
}

// ParsedView is the minimal line/keyword view of a datafile that rules match on.
// Whole-line `#` comments are never declarations.
type ParsedView struct {
	Lines        []Line        `json:"lines"`
	Declarations []Declaration `json:"declarations"`
}

var keywordPattern = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)(.*)$`)

// BOM is the UTF-8 byte order mark some editors put at the start of a file.
const BOM = "\ufeff"

// Parse builds the ParsedView of raw datafile text.
func Parse(text string) ParsedView {
	var v ParsedView
	open := -1

	for i, raw := range SplitLines(text) {
		t := strings.TrimRight(raw, "\r")
		if i == 0 {
			t = strings.TrimPrefix(t, BOM)
		}
		trimmed := strings.TrimSpace(t)
		comment := strings.HasPrefix(trimmed, "#")
		v.Lines = append(v.Lines, Line{Number: i + 1, Text: t, Comment: comment})

		if trimmed == "" || comment {
			continue
		}
		if t[0] == ' ' || t[0] == '\t' {
			if open >= 0 {
				v.Declarations[open].Block = append(v.Declarations[open].Block, i+1)
			}
			continue
		}

		open = -1
		d, ok := parseDeclaration(t, i+1)
		if !ok {
			continue
		}
		v.Declarations = append(v.Declarations, d)
		if strings.HasPrefix(d.Value, ">") {
			open = len(v.Declarations) - 1
		}
	}
	return v
}

func parseDeclaration(text string, line int) (Declaration, bool) {
	m := keywordPattern.FindStringSubmatch(text)
	if m == nil {
		return Declaration{}, false
	}
	rest := m[2]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' && rest[0] != '>' {
		return Declaration{}, false
	}
	return Declaration{
		Keyword: strings.ToUpper(m[1]),
		Value:   strings.TrimSpace(rest),
		Line:    line,
	}, true
}

// SplitLines splits text on "\n". A trailing newline does not produce an
// extra empty line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// LineEnding returns "\r\n" when text uses CRLF line endings, "\n" otherwise.
func LineEnding(text string) string {
	if strings.Contains(text, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

// Find returns all declarations with the given keyword, in file order.
func (v ParsedView) Find(keyword string) []Declaration {
	var out []Declaration
	for _, d := range v.Declarations {
		if d.Is(keyword) {
			out = append(out, d)
		}
	}
	return out
}

// Has reports whether any declaration uses the keyword.
func (v ParsedView) Has(keyword string) bool {
	return len(v.Find(keyword)) > 0
}

// DeclarationAt returns the declaration that starts on line n.
func (v ParsedView) DeclarationAt(n int) (Declaration, bool) {
	for _, d := range v.Declarations {
		if d.Line == n {
			return d, true
		}
	}
	return Declaration{}, false
}

// Line returns line n (1-based).
func (v ParsedView) Line(n int) (Line, bool) {
	if n < 1 || n > len(v.Lines) {
		return Line{}, false
	}
	return v.Lines[n-1], true
}

// Is reports whether the declaration uses keyword, case-insensitively.
func (d Declaration) Is(keyword string) bool {
	return strings.EqualFold(d.Keyword, keyword)
}

// FirstValue returns the first whitespace-separated token of the value with
// surrounding quotes removed.
func (d Declaration) FirstValue() string {
	fields := strings.Fields(strings.TrimPrefix(d.Value, ">"))
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], `"'`)
}

// EndLine is the last line that belongs to the declaration, block included.
func (d Declaration) EndLine() int {
	if len(d.Block) == 0 {
		return d.Line
	}
	return d.Block[len(d.Block)-1]
}
