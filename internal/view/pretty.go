package view

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// PrettyWidth is the wrap width of terminal previews.
const PrettyWidth = 100

// RenderMarkdown writes markdown styled for the terminal. Without color
// the markdown is written as is.
func (r *Renderer) RenderMarkdown(markdown string) error {
	if r.noColor {
		r.RenderText(markdown)
		return nil
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(PrettyWidth),
	)
	if err != nil {
		return fmt.Errorf("failed to create terminal renderer: %w", err)
	}
	out, err := tr.Render(markdown)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	fmt.Fprint(r.writer, out)
	return nil
}
