package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// prompter asks y/n questions, re-asking on anything else. End of input
// counts as "no".
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

func (p *prompter) Confirm(question string) bool {
	for {
		fmt.Fprintf(p.out, "%s (y/n): ", question)
		line, err := p.in.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
		if err != nil {
			fmt.Fprintln(p.out)
			return false
		}
		fmt.Fprintln(p.out, "Please enter 'y' for yes or 'n' for no.")
	}
}

// interactive reports whether prompts are shown to a person: in is a
// terminal, or a reader wired by the caller rather than a file. Piped or
// redirected stdin still answers prompts but gets no fix previews.
func interactive(in io.Reader) bool {
	f, ok := in.(*os.File)
	if !ok {
		return true
	}
	return term.IsTerminal(int(f.Fd()))
}
