package page

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wikimark/internal/cmd/cmdutil"
	"github.com/open-cli-collective/wikimark/internal/view"
	"github.com/open-cli-collective/wikimark/pkg/markup"
	"github.com/open-cli-collective/wikimark/pkg/pages"
)

type viewOptions struct {
	cmdutil.Globals
	raw         bool
	web         bool
	html        bool
	contentOnly bool
}

// pageJSON is the -o json form of a page.
type pageJSON struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Source string `json:"source"`
	HTML   string `json:"html"`
}

// browse opens a URL. Replaced in tests.
var browse = openBrowser

// NewCmdView creates the page view command.
func NewCmdView() *cobra.Command {
	opts := &viewOptions{}

	cmd := &cobra.Command{
		Use:   "view <page>",
		Short: "View a page",
		Long: `Render a page from the page source and show it as Markdown.

The page is rendered as if it was requested from the wiki, so Include
macros are resolved and a page cannot include itself.`,
		Example: `  # View a page
  wikimark page view Start

  # Show the markup
  wikimark page view Start --raw

  # Open the page on the wiki
  wikimark page view "Foo/Bar Baz" --web`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completePages,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Globals = cmdutil.GlobalsFrom(cmd)
			return runView(cmd.Context(), args[0], opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Show the wiki markup instead of rendering it")
	cmd.Flags().BoolVarP(&opts.web, "web", "w", false, "Open the page on the wiki instead of displaying it")
	cmd.Flags().BoolVar(&opts.html, "html", false, "Show rendered HTML instead of Markdown")
	cmd.Flags().BoolVar(&opts.contentOnly, "content-only", false, "Output only the page content, without the header")

	return cmd
}

func runView(ctx context.Context, name string, opts *viewOptions, out, errOut io.Writer) error {
	if err := view.ValidateFormat(opts.Output); err != nil {
		return err
	}
	if opts.contentOnly && view.Format(opts.Output) == view.FormatJSON {
		return fmt.Errorf("--content-only is incompatible with --output json")
	}
	if opts.contentOnly && opts.web {
		return fmt.Errorf("--content-only is incompatible with --web")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := cmdutil.LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	url := cfg.Links(nil).PageURL(markup.NormalizePageName(name), "")
	if opts.web {
		if cfg.BaseURL == "" {
			return fmt.Errorf("--web needs base_url in config")
		}
		return browse(url)
	}

	l, err := cmdutil.NewLogger(cfg, opts.Verbose, errOut)
	if err != nil {
		return err
	}
	m, store := cmdutil.NewMachine(cfg, l, cmdutil.MachineOptions{})
	if store == nil {
		return errors.New("no page source configured: set pages_dir or pages_url (run 'wikimark init')")
	}

	source, err := store.Page(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to get page: %w", err)
	}

	var html string
	if !opts.raw {
		html, err = renderPage(ctx, m, store, cfg.Application, name, source)
		if err != nil {
			return err
		}
	}

	renderer := view.NewRenderer(view.Format(opts.Output), opts.NoColor)
	renderer.SetWriter(out)

	if view.Format(opts.Output) == view.FormatJSON {
		return renderer.RenderJSON(pageJSON{
			Name:   markup.NormalizePageName(name),
			URL:    url,
			Source: source,
			HTML:   html,
		})
	}

	if !opts.contentOnly {
		renderer.RenderKeyValue("Page", markup.NormalizePageName(name))
		if cfg.BaseURL != "" {
			renderer.RenderKeyValue("URL", url)
		}
		fmt.Fprintln(out)
	}

	switch {
	case opts.raw:
		renderer.RenderText(source)
	case opts.html:
		renderer.RenderText(html)
	default:
		md, err := markup.HTMLToMarkdown(html)
		if err != nil {
			// Fall back to HTML if conversion fails
			fmt.Fprintln(out, "(Failed to convert to markdown, showing HTML)")
			fmt.Fprintln(out)
			renderer.RenderText(html)
			return nil
		}
		if md == "" {
			renderer.RenderText("(No content)")
			return nil
		}
		renderer.RenderText(md)
	}
	return nil
}

// renderPage renders source as page name, so the page is on the inclusion
// path from the start.
func renderPage(ctx context.Context, m *markup.Machine, store markup.PageStore, application, name, source string) (string, error) {
	rc := markup.NewRenderContext(ctx, application)
	rc.Pages = store
	leave, _ := rc.Enter(name)
	defer leave()

	doc, err := m.Parse(source)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", name, err)
	}
	html, err := m.Render(doc, rc, markup.FormatHTML)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return html, nil
}

// completePages offers the pages of the page directory.
func completePages(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg, err := cmdutil.LoadConfig(cmdutil.GlobalsFrom(cmd).ConfigPath)
	if err != nil || cfg.PagesDir == "" {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	list, err := pages.NewDirStore(cfg.PagesDir).List(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var names []string
	for _, p := range list {
		if strings.HasPrefix(p.Name, toComplete) {
			names = append(names, p.Name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform")
	}

	return cmd.Start()
}
