// Package render provides the render command.
package render

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wikimark/internal/cache"
	"github.com/open-cli-collective/wikimark/internal/cmd/cmdutil"
	"github.com/open-cli-collective/wikimark/internal/config"
	"github.com/open-cli-collective/wikimark/internal/logger"
	"github.com/open-cli-collective/wikimark/internal/version"
	"github.com/open-cli-collective/wikimark/internal/view"
	"github.com/open-cli-collective/wikimark/pkg/markup"
	"github.com/open-cli-collective/wikimark/pkg/pages"
)

// FormatMarkdown renders HTML and converts it.
const FormatMarkdown = "markdown"

type renderOptions struct {
	cmdutil.Globals
	file        string
	format      string
	application string
	pretty      bool
	simplified  bool
	strict      bool
	raw         bool
	useCache    bool
	compiled    bool
}

// NewCmdRender creates the render command.
func NewCmdRender() *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render wiki markup",
		Long: `Render wiki markup as HTML, plain text or Markdown.

The input is read from the given file, or from stdin when no file or "-"
is given. Dynamic macros such as Include and Date are evaluated on every
render; use --cache to keep the compiled form between runs.`,
		Example: `  # Render a page to HTML
  wikimark render Start.wiki

  # Preview as Markdown in the terminal
  wikimark render Start.wiki --format markdown --pretty

  # Render compiled instructions
  wikimark compile Start.wiki -o start.wmc && wikimark render --compiled start.wmc`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Globals = cmdutil.GlobalsFrom(cmd)
			if len(args) > 0 {
				opts.file = args[0]
			}
			return runRender(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: html, text, markdown (default from config)")
	cmd.Flags().StringVar(&opts.application, "app", "", "application the page belongs to (default from config)")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "style Markdown output for the terminal")
	cmd.Flags().BoolVar(&opts.simplified, "simplified", false, "leave out dynamic macros")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail on parse errors instead of rendering them")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "skip paragraphs, smileys, footnotes and sections")
	cmd.Flags().BoolVar(&opts.useCache, "cache", false, "reuse compiled output from the cache directory")
	cmd.Flags().BoolVar(&opts.compiled, "compiled", false, "the input is compiled instructions")

	return cmd
}

func runRender(ctx context.Context, opts *renderOptions, in io.Reader, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := cmdutil.LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	l, err := cmdutil.NewLogger(cfg, opts.Verbose, errOut)
	if err != nil {
		return err
	}

	format := opts.format
	if format == "" && !opts.compiled {
		format = cfg.Format
	}
	if format != "" && !slices.Contains(config.Formats, format) {
		return fmt.Errorf("invalid format %q: use one of %s", format, strings.Join(config.Formats, ", "))
	}
	if opts.pretty && format != FormatMarkdown {
		return fmt.Errorf("--pretty requires --format markdown")
	}
	application := opts.application
	if application == "" {
		application = cfg.Application
	}

	name, text, err := cmdutil.ReadInput(opts.file, in)
	if err != nil {
		return err
	}

	machineFormat := format
	if format == FormatMarkdown {
		machineFormat = markup.FormatHTML
	}

	m, store := cmdutil.NewMachine(cfg, l, cmdutil.MachineOptions{Raw: opts.raw, Strict: opts.strict})
	start := time.Now()

	var src markup.Source
	switch {
	case opts.compiled:
		src = markup.Compiled(text)
	case opts.useCache:
		src, err = cached(ctx, m, store, cfg, l, opts, text, machineFormat)
	default:
		src, err = m.Parse(text)
	}
	if err != nil {
		return err
	}

	rc := markup.NewRenderContext(ctx, application)
	rc.Simplified = opts.simplified
	rc.Pages = store
	rc.Logger = l.Logger

	html, err := m.Render(src, rc, machineFormat)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	l.Rendered(name, machineFormat, len(html), time.Since(start))

	renderer := view.NewRenderer(view.FormatPlain, opts.NoColor)
	renderer.SetWriter(out)
	if format != FormatMarkdown {
		fmt.Fprint(out, html)
		if !strings.HasSuffix(html, "\n") {
			fmt.Fprintln(out)
		}
		return nil
	}

	md, err := markup.HTMLToMarkdown(html)
	if err != nil {
		return fmt.Errorf("failed to convert to markdown: %w", err)
	}
	if opts.pretty {
		return renderer.RenderMarkdown(md)
	}
	renderer.RenderText(md)
	return nil
}

// cached returns the compiled form of text, compiling and storing it on a
// miss. Cache failures are logged and rendering goes on without it.
func cached(ctx context.Context, m *markup.Machine, store markup.PageStore, cfg *config.Config, l *logger.Logger, opts *renderOptions, text, format string) (markup.Source, error) {
	if format == "" {
		format = markup.FormatHTML
	}
	// Links to missing pages are styled at compile time, so the set of
	// existing pages is part of the key.
	var names []string
	if ds, ok := store.(*pages.DirStore); ok {
		list, err := ds.List(ctx)
		if err != nil {
			l.CacheError("list pages", err)
			return m.Parse(text)
		}
		for _, p := range list {
			names = append(names, p.Name)
		}
	}
	dir := cfg.CacheDir
	if dir == "" {
		dir = config.DefaultCacheDir()
	}
	c := cache.New(dir)
	key, err := cache.Key{
		Source:    text,
		Format:    format,
		Raw:       opts.raw,
		Strict:    opts.strict,
		Smileys:   cfg.Smileys,
		InterWiki: cfg.InterWiki,
		Shortcuts: cfg.Shortcuts,
		BaseURL:   cfg.BaseURL,
		Domain:    cfg.BaseDomain,
		Pages:     names,
		Version:   version.Version,
	}.Hash()
	if err != nil {
		return nil, err
	}

	if compiled, ok, err := c.Get(key); err != nil {
		l.CacheError("get", err)
	} else if ok {
		l.CacheHit(key)
		return compiled, nil
	}

	doc, err := m.Parse(text)
	if err != nil {
		return nil, err
	}
	compiled, err := m.Compile(doc, format)
	if err != nil {
		return nil, err
	}
	if err := c.Put(key, compiled); err != nil {
		l.CacheError("put", err)
	}
	return compiled, nil
}
