package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var errAborted = errors.New("aborted")

// prompter asks y/N questions on stderr and reads answers from the command's stdin. One reader
// is shared across questions so buffered input is not lost between them.
type prompter struct {
	cmd *cobra.Command
	in  *bufio.Reader
}

func newPrompter(cmd *cobra.Command) *prompter {
	return &prompter{cmd: cmd, in: bufio.NewReader(cmd.InOrStdin())}
}

// confirm returns errAborted unless the answer is y or yes. EOF counts as no.
func (p *prompter) confirm(question string) error {
	fmt.Fprintf(p.cmd.ErrOrStderr(), "%s [y/N] ", question)
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return nil
	}
	return errAborted
}
