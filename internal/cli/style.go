package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	success = lipgloss.Color("#22C55E")
	danger  = lipgloss.Color("#EF4444")
	warning = lipgloss.Color("#F59E0B")
	dim     = lipgloss.Color("#6B7280")
)

var (
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	titleStyle    = lipgloss.NewStyle().Bold(true)
	separatorLine = dimStyle.Render(strings.Repeat("─", 60))
)

// renderBatchSummary formats the one-line batch outcome, colored by how much
// of the batch succeeded.
func renderBatchSummary(label string, succeeded, attempted int, seconds float64) string {
	line := fmt.Sprintf("%s: %d/%d succeeded in %.1fs", label, succeeded, attempted, seconds)
	switch {
	case succeeded == attempted:
		return passStyle.Render(line)
	case succeeded == 0:
		return failStyle.Render(line)
	default:
		return warnStyle.Render(line)
	}
}
