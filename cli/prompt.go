package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type prompter struct {
	in   *bufio.Reader
	out  io.Writer
	term *os.File
}

func newPrompter(cmd *cobra.Command) *prompter {
	p := &prompter{
		in:  bufio.NewReader(cmd.InOrStdin()),
		out: cmd.ErrOrStderr(),
	}
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.term = f
	}
	return p
}

func (p *prompter) line(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	s, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || s == "") {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(s), nil
}

// secret reads without echo when attached to a terminal.
func (p *prompter) secret(label string) (string, error) {
	if p.term == nil {
		return p.line(label)
	}
	fmt.Fprintf(p.out, "%s: ", label)
	b, err := term.ReadPassword(int(p.term.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
	return string(b), nil
}

// fill prompts for value only when the flag left it empty.
func (p *prompter) fill(value *string, label string, hidden bool) error {
	if *value != "" {
		return nil
	}
	var (
		s   string
		err error
	)
	if hidden {
		s, err = p.secret(label)
	} else {
		s, err = p.line(label)
	}
	if err != nil {
		return err
	}
	if s == "" {
		return fmt.Errorf("%s is required", strings.ToLower(label))
	}
	*value = s
	return nil
}
