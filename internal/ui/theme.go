// Package ui holds the terminal styles shared by docsctl commands.
// lipgloss drops the colours automatically when output is not a terminal.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// maxRowWidth bounds a status row so long resolved paths do not wrap.
const maxRowWidth = 100

// Color palette.
var (
	colorPrimary = lipgloss.Color("#7C3AED") // Purple
	colorSuccess = lipgloss.Color("#10B981") // Green
	colorDanger  = lipgloss.Color("#EF4444") // Red
	colorMuted   = lipgloss.Color("#6B7280") // Gray
	colorWarning = lipgloss.Color("#F59E0B") // Amber
)

var (
	stepStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	dangerStyle = lipgloss.NewStyle().
			Foreground(colorDanger)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Width(12)
)

// Step renders a workflow step heading: "==> Building site".
func Step(title string) string {
	return stepStyle.Render("==> " + title)
}

// Success renders a completion line.
func Success(msg string) string {
	return successStyle.Render(msg)
}

// Warning renders a non-fatal problem.
func Warning(msg string) string {
	return warningStyle.Render("warning: " + msg)
}

// Muted renders secondary text.
func Muted(msg string) string {
	return mutedStyle.Render(msg)
}

// Check renders one status row: label, a present/missing mark, and detail.
func Check(label string, ok bool, detail string) string {
	mark := successStyle.Render("ok")
	if !ok {
		mark = dangerStyle.Render("missing")
	}
	if detail == "" {
		return fmt.Sprintf("%s %s", labelStyle.Render(label), mark)
	}
	return clampWidth(fmt.Sprintf("%s %s  %s", labelStyle.Render(label), mark, mutedStyle.Render(detail)), maxRowWidth)
}

// clampWidth truncates line to at most maxWidth visible cells, keeping
// ANSI styling intact.
func clampWidth(line string, maxWidth int) string {
	if lipgloss.Width(line) <= maxWidth {
		return line
	}
	return ansi.Truncate(line, maxWidth, "...")
}
