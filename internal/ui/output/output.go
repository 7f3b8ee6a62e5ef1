// Package output selects the colour profile of the termenv outputs shared by the logger and the
// build display.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ColorMode selects whether an output is coloured.
type ColorMode int

const (
	// ColorAuto colours terminals and CI logs.
	ColorAuto ColorMode = iota
	// ColorAlways forces ANSI colours.
	ColorAlways
	// ColorNever disables colours.
	ColorNever
)

// ResolveColorMode maps the --color flag to a mode.
// userFlag should be one of: "auto", "always", "never", or empty.
func ResolveColorMode(userFlag string) ColorMode {
	switch userFlag {
	case "always":
		return ColorAlways
	case "never":
		return ColorNever
	default:
		return ColorAuto
	}
}

// isCI reports whether the CI environment variable is set to a truthy value.
func isCI() bool {
	ci := os.Getenv("CI")
	return ci == "true" || ci == "1"
}

// Profile returns the colour profile for writing to w.
// In auto mode terminals get their detected profile, CI logs get ANSI and anything else is plain.
// NO_COLOR always wins in auto mode.
func Profile(mode ColorMode, w io.Writer) termenv.Profile {
	switch mode {
	case ColorNever:
		return termenv.Ascii
	case ColorAlways:
		return termenv.ANSI
	}

	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return termenv.EnvColorProfile()
	}
	if isCI() {
		return termenv.ANSI
	}
	return termenv.Ascii
}

// New creates a termenv.Output for w using the profile of mode. A nil w writes to stderr.
func New(w io.Writer, mode ColorMode) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}
	return termenv.NewOutput(w, termenv.WithProfile(Profile(mode, w)), termenv.WithTTY(true))
}
