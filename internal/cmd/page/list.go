package page

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wikimark/internal/cmd/cmdutil"
	"github.com/open-cli-collective/wikimark/internal/view"
	"github.com/open-cli-collective/wikimark/pkg/pages"
)

type listOptions struct {
	cmdutil.Globals
	limit int
}

// NewCmdList creates the page list command.
func NewCmdList() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List pages in the page directory",
		Long: `List the pages below the configured pages_dir. Page servers cannot be
listed.`,
		Example: `  # List pages
  wikimark page list

  # List with limit
  wikimark page list -l 50

  # Output as JSON
  wikimark page list -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Globals = cmdutil.GlobalsFrom(cmd)
			return runList(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "l", 25, "Maximum number of pages to show")

	return cmd
}

func runList(ctx context.Context, opts *listOptions, out io.Writer) error {
	if err := view.ValidateFormat(opts.Output); err != nil {
		return err
	}
	if opts.limit < 0 {
		return fmt.Errorf("invalid limit: %d (must be >= 0)", opts.limit)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := cmdutil.LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	if cfg.PagesDir == "" {
		return fmt.Errorf("listing pages needs pages_dir: set it in config or WIKIMARK_PAGES_DIR")
	}

	result, err := pages.NewDirStore(cfg.PagesDir).List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pages: %w", err)
	}
	hasMore := false
	if opts.limit > 0 && len(result) > opts.limit {
		result, hasMore = result[:opts.limit], true
	}

	renderer := view.NewRenderer(view.Format(opts.Output), opts.NoColor)
	renderer.SetWriter(out)

	if view.Format(opts.Output) == view.FormatJSON {
		return renderer.RenderJSON(result)
	}
	if len(result) == 0 {
		renderer.RenderText(fmt.Sprintf("No pages found in %s.", cfg.PagesDir))
		return nil
	}

	headers := []string{"NAME", "SIZE", "MODIFIED"}
	rows := make([][]string, 0, len(result))
	for _, p := range result {
		rows = append(rows, []string{
			view.Truncate(p.Name, 60),
			humanize.Bytes(uint64(p.Size)),
			humanize.Time(p.ModTime),
		})
	}
	renderer.RenderTable(headers, rows)

	if hasMore {
		fmt.Fprintf(out, "\n(showing first %d pages, use --limit to see more)\n", len(result))
	}
	return nil
}
