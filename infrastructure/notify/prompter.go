package notify

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// CliPrompter asks the operator on a terminal whether the guest may show
// notifications.
type CliPrompter struct {
	in  io.Reader
	out io.Writer
}

// NewCliPrompter creates a new CliPrompter.
func NewCliPrompter(in io.Reader, out io.Writer) *CliPrompter {
	return &CliPrompter{in: in, out: out}
}

// IsInteractive checks if the input is a terminal.
func (p *CliPrompter) IsInteractive() bool {
	if f, ok := p.in.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// PromptForPermission asks once. remember is true when the answer should
// stick for the rest of the session.
func (p *CliPrompter) PromptForPermission(origin string) (granted bool, remember bool, err error) {
	_, _ = fmt.Fprintf(p.out, "%s wants to show notifications\n", origin)
	_, _ = fmt.Fprintf(p.out, "Allow? [y/n/always/never]: ")

	scanner := bufio.NewScanner(p.in)
	if scanner.Scan() {
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "y", "yes":
			return true, false, nil
		case "a", "always":
			return true, true, nil
		case "never":
			return false, true, nil
		default:
			return false, false, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, false, err
	}
	return false, false, io.EOF
}
