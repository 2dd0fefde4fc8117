// Package style holds the few terminal styles wpstrap uses. A
// container entrypoint mostly writes structured logs; styling is
// limited to the fatal-error path a human sees when running the image
// interactively.
package style

import "github.com/charmbracelet/lipgloss"

var (
	// Error renders fatal errors in bold red.
	Error = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "124", Dark: "196"})

	// Warning renders diagnostics in yellow.
	Warning = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "130", Dark: "214"})
)
