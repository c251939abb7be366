package ui

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"
)

// Spinner shows activity during long computations. It is a no-op when
// stdout is not a terminal or quiet mode is on.
type Spinner struct {
	s *spinner.Spinner
}

// IsTerminal reports whether stdout is attached to a terminal
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// StartSpinner starts a spinner with suffix msg
func StartSpinner(msg string) *Spinner {
	if IsQuietMode() || !IsTerminal() {
		return &Spinner{}
	}

	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(os.Stdout))
	s.Suffix = " " + msg
	s.Start()
	return &Spinner{s: s}
}

// Stop stops the spinner and prints final in its place
func (sp *Spinner) Stop(final string) {
	if sp.s == nil {
		return
	}
	sp.s.FinalMSG = final + "\n"
	sp.s.Stop()
}
