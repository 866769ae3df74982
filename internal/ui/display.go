package ui

import (
	"os"

	"github.com/charmbracelet/x/term"
)

// DefaultTermWidth is the fallback terminal width when detection fails.
const DefaultTermWidth = 100

// DisplayContext holds the detected output settings for stdout.
type DisplayContext struct {
	TermWidth int
	IsTTY     bool
}

// NewDisplayContext detects whether stdout is a terminal and how wide it is.
func NewDisplayContext() *DisplayContext {
	fd := os.Stdout.Fd()
	isTTY := term.IsTerminal(fd)

	width := DefaultTermWidth
	if isTTY {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			width = w
		}
	}
	return &DisplayContext{TermWidth: width, IsTTY: isTTY}
}

// Markdown returns content rendered for the terminal, or unchanged when
// stdout is not a terminal or rendering fails.
func (d *DisplayContext) Markdown(content string) string {
	if !d.IsTTY {
		return content
	}
	rendered, err := RenderMarkdown(content, d.TermWidth-MarkdownRenderMargin)
	if err != nil {
		return content
	}
	return rendered
}
