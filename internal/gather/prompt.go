// ABOUTME: Terminal prompter implementation for interactive credential gathering
// ABOUTME: Uses a masked read for secret parameters so passwords are never echoed

package gather

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-secure-stdlib/password"
)

// TerminalPrompter reads parameter values from a terminal. Secret parameters
// are read without echo.
type TerminalPrompter struct {
	in  *os.File
	out io.Writer
}

// NewTerminalPrompter creates a prompter on stdin/stderr. Prompts go to
// stderr so gathered output can be piped cleanly.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{in: os.Stdin, out: os.Stderr}
}

// Prompt reads a line after printing "label: ".
func (p *TerminalPrompter) Prompt(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	reader := bufio.NewReader(p.in)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// PromptSecret reads a value with terminal echo disabled.
func (p *TerminalPrompter) PromptSecret(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	value, err := password.Read(p.in)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return value, nil
}
