// Package style holds the lipgloss styles shared by terminate's subcommands.
package style

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/hostops/terminate/internal/ui"
)

var (
	// Warning marks conditions an operator should look at, such as a held run lock.
	Warning = lipgloss.NewStyle().Foreground(ui.ColorWarn).Bold(true)

	// Error marks command failures.
	Error = lipgloss.NewStyle().Foreground(ui.ColorFail).Bold(true)

	// Dim is for paths, timestamps and placeholders.
	Dim = lipgloss.NewStyle().Foreground(ui.ColorMuted)

	// Bold is the table header style.
	Bold = lipgloss.NewStyle().Bold(true)

	ErrorPrefix   = Error.Render(ui.IconFail)
	WarningPrefix = Warning.Render(ui.IconWarn + " Warning:")
)

// PrintWarning writes one prefixed warning line to w.
func PrintWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", WarningPrefix, fmt.Sprintf(format, args...))
}
