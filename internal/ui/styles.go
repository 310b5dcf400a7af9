package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func init() {
	if !ShouldUseColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	} else {
		lipgloss.SetColorProfile(termenv.TrueColor)
	}
}

// Ayu theme color palette
var (
	ColorMuted = lipgloss.AdaptiveColor{
		Light: "#828c99",
		Dark:  "#6c7680",
	}
	ColorAccent = lipgloss.AdaptiveColor{
		Light: "#399ee6",
		Dark:  "#59c2ff",
	}
	ColorSuccess = lipgloss.AdaptiveColor{
		Light: "#86b300",
		Dark:  "#aad94c",
	}
	ColorWarn = lipgloss.AdaptiveColor{
		Light: "#f2ae49",
		Dark:  "#ffb454",
	}
	ColorDeprecated = lipgloss.AdaptiveColor{
		Light: "#f07171",
		Dark:  "#f26d78",
	}
	ColorSubTask = lipgloss.AdaptiveColor{
		Light: "#4cbf99",
		Dark:  "#95e6cb",
	}
)

// Styles
var (
	MutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	AccentStyle = lipgloss.NewStyle().Foreground(ColorAccent)
	BoldStyle   = lipgloss.NewStyle().Bold(true)

	SuccessStyle    = lipgloss.NewStyle().Foreground(ColorSuccess)
	WarnStyle       = lipgloss.NewStyle().Foreground(ColorWarn)
	DeprecatedStyle = lipgloss.NewStyle().Foreground(ColorDeprecated).Strikethrough(true)
	SubTaskStyle    = lipgloss.NewStyle().Foreground(ColorSubTask)
	DryRunStyle     = lipgloss.NewStyle().Foreground(ColorWarn).Bold(true)
)

// Tree and status glyphs.
const (
	IconTicket     = "○"
	IconSubTask    = "◦"
	IconDeprecated = "✗"
	IconCreated    = "✓"
	IconLink       = "↔"
	TreeBranch     = "├── "
	TreeLast       = "└── "
	TreePipe       = "│   "
	TreeSpace      = "    "
)

// RenderStatus renders a tracker status. Deprecated templates stand out
// because they are never cloned.
func RenderStatus(status string) string {
	switch {
	case strings.EqualFold(status, "Deprecated"):
		return DeprecatedStyle.Render(status)
	case strings.EqualFold(status, "Closed"), strings.EqualFold(status, "Done"):
		return MutedStyle.Render(status)
	case strings.EqualFold(status, "In Progress"):
		return WarnStyle.Render(status)
	default:
		return status
	}
}

// RenderStatusIcon returns the glyph shown before a ticket key.
func RenderStatusIcon(status string) string {
	if strings.EqualFold(status, "Deprecated") {
		return DeprecatedStyle.Render(IconDeprecated)
	}
	return IconTicket
}

// RenderType renders an issue type.
func RenderType(issueType string) string {
	if issueType == "Sub-task" {
		return SubTaskStyle.Render(issueType)
	}
	return issueType
}

// RenderID renders a ticket key.
func RenderID(id string) string {
	return BoldStyle.Render(id)
}

// RenderMuted renders text in muted gray.
func RenderMuted(s string) string {
	return MutedStyle.Render(s)
}

// RenderBold renders text in bold.
func RenderBold(s string) string {
	return BoldStyle.Render(s)
}

// RenderAccent renders text with accent color.
func RenderAccent(s string) string {
	return AccentStyle.Render(s)
}

// RenderSuccess renders text in the success color.
func RenderSuccess(s string) string {
	return SuccessStyle.Render(s)
}

// RenderWarn renders text in the warning color.
func RenderWarn(s string) string {
	return WarnStyle.Render(s)
}

// RenderDryRun renders the banner shown when nothing is written.
func RenderDryRun(s string) string {
	return DryRunStyle.Render(s)
}
