package markup

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// ExportOptions configures the HTML to markdown conversion.
type ExportOptions struct {
	// KeepHeaderLinks keeps the ¶ anchors next to headlines.
	KeepHeaderLinks bool
}

var headerLinkRe = regexp.MustCompile(`<a href="[^"]*" class="headerlink">¶</a>`)

// HTMLToMarkdown converts rendered markup to Markdown.
func HTMLToMarkdown(html string) (string, error) {
	return HTMLToMarkdownWithOptions(html, ExportOptions{})
}

// HTMLToMarkdownWithOptions converts rendered markup to Markdown with
// configurable options.
func HTMLToMarkdownWithOptions(html string, opts ExportOptions) (string, error) {
	if html == "" {
		return "", nil
	}
	if !opts.KeepHeaderLinks {
		html = headerLinkRe.ReplaceAllString(html, "")
	}

	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(markdown), nil
}
