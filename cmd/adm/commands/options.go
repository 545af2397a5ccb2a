package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	contextutils "feedbackboard/internal/utils"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Options carries the global flags and the streams shared by all commands
type Options struct {
	BoardID string
	Yes     bool
	Locale  contextutils.Locale

	In  io.Reader
	Out io.Writer
	// IsTerminal reports whether In is interactive; prompts are only shown when it is
	IsTerminal func() bool
}

// NewOptions returns options bound to the process's standard streams
func NewOptions(locale contextutils.Locale) *Options {
	return &Options{
		Locale: locale,
		In:     os.Stdin,
		Out:    os.Stdout,
		IsTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

// AddFlags registers --board and --yes on cmd and its children
func (o *Options) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&o.BoardID, "board", "", "board id (browser session id); empty selects the shared board")
	cmd.PersistentFlags().BoolVarP(&o.Yes, "yes", "y", false, "answer yes to confirmation prompts")
}

// confirm asks prompt on a terminal. Without --yes and without a terminal the answer is no.
func (o *Options) confirm(prompt string) (bool, error) {
	if o.Yes {
		return true, nil
	}
	if o.IsTerminal == nil || !o.IsTerminal() {
		return false, nil
	}

	fmt.Fprintf(o.Out, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(o.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, contextutils.WrapError(err, "failed to read confirmation")
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "ya":
		return true, nil
	default:
		return false, nil
	}
}

func (o *Options) text(key contextutils.UIText) string {
	return contextutils.Text(o.Locale, key)
}

func (o *Options) printf(format string, args ...interface{}) {
	fmt.Fprintf(o.Out, format, args...)
}
