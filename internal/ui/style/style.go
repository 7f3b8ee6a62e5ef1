// Package style holds the palette and status symbols shared by the logger and the build display.
package style

import "github.com/charmbracelet/lipgloss"

// Log level colours.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Node outcome symbols.
const (
	// Check marks a node that ran successfully.
	Check = "✓"
	// Cross marks a failed node.
	Cross = "✗"
	// Warning marks a node broken by its dependencies.
	Warning = "!"
	// Tilde marks a node restored from a cache.
	Tilde = "~"
	// Dot prefixes debug log lines.
	Dot = "●"
)
