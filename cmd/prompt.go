package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// prompter reads one line of answer per question.
type prompter struct {
	sc  *bufio.Scanner
	out io.Writer
}

func newPrompter(cmd *cobra.Command) *prompter {
	return &prompter{sc: bufio.NewScanner(cmd.InOrStdin()), out: cmd.OutOrStdout()}
}

// ask prints prompt and returns the trimmed reply. ok is false once input
// is closed.
func (p *prompter) ask(prompt string) (reply string, ok bool) {
	fmt.Fprint(p.out, prompt)
	if !p.sc.Scan() {
		fmt.Fprintln(p.out, "\n(input closed)")
		return "", false
	}
	return strings.TrimSpace(p.sc.Text()), true
}
