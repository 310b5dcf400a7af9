package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const maxReadableWidth = 100

// RenderMarkdown renders a ticket description with glamour. Descriptions
// written in JIRA wiki markup render mostly as plain paragraphs. The input
// is returned unchanged when color is off or rendering fails.
func RenderMarkdown(markdown string) string {
	if strings.TrimSpace(markdown) == "" || !ShouldUseColor() {
		return markdown
	}

	wrapWidth := min(Width(80), maxReadableWidth)
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return markdown
	}

	rendered, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return rendered
}
