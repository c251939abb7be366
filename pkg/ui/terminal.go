package ui

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/fatih/color"
)

// ASCIILogo is printed when the command starts
const ASCIILogo = `
    ╔═══════════════════════════════════════════════════════════╗
    ║   ___     _ _               ___             _             ║
    ║  | __|__ | | |_____ __ __  | _ \__ _ _ _  | |__           ║
    ║  | _/ _ \| | / _ \ V  V /  |   / _' | ' \ | / /           ║
    ║  |_|\___/|_|_\___/\_/\_/   |_|_\__,_|_||_||_\_\           ║
    ║          FOLLOWER GRAPH CRAWLER - PAGERANK v1.0           ║
    ╚═══════════════════════════════════════════════════════════╝
`

// Color functions for terminal output
var (
	Cyan    = color.New(color.FgCyan).SprintFunc()
	Yellow  = color.New(color.FgYellow).SprintFunc()
	Red     = color.New(color.FgRed).SprintFunc()
	Green   = color.New(color.FgGreen).SprintFunc()
	Magenta = color.New(color.FgMagenta).SprintFunc()
	Dim     = color.New(color.Faint).SprintFunc()
)

var (
	quiet     atomic.Bool
	output    io.Writer = color.Output
	errOutput io.Writer = color.Error
)

// SetQuietMode suppresses everything but errors
func SetQuietMode(enabled bool) {
	quiet.Store(enabled)
}

func IsQuietMode() bool {
	return quiet.Load()
}

// SetNoColor disables ANSI colors
func SetNoColor(disabled bool) {
	color.NoColor = disabled
}

// SetOutput redirects status and error output, nil restores stdout and stderr
func SetOutput(w io.Writer) {
	if w == nil {
		output, errOutput = color.Output, color.Error
		return
	}
	output, errOutput = w, w
}

// PrintLogo prints the ASCII logo with color
func PrintLogo() {
	if IsQuietMode() {
		return
	}
	fmt.Fprint(output, Cyan(ASCIILogo))
}

// PrintError prints an error message in red, always to stderr
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(errOutput, Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(errOutput, Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	if IsQuietMode() {
		return
	}
	fmt.Fprintln(output, Green(msg))
}

// PrintInfo prints a label and value
func PrintInfo(label string, value string) {
	if IsQuietMode() {
		return
	}
	fmt.Fprintf(output, "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if IsQuietMode() {
		return
	}
	if len(args) > 0 {
		fmt.Fprintln(output, Yellow(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(output, Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	if IsQuietMode() {
		return
	}
	fmt.Fprintln(output, Magenta(msg))
}
