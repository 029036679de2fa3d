package configcmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wikimark/internal/cmd/cmdutil"
	"github.com/open-cli-collective/wikimark/internal/config"
	"github.com/open-cli-collective/wikimark/internal/view"
	"github.com/open-cli-collective/wikimark/pkg/markup"
	"github.com/open-cli-collective/wikimark/pkg/pages"
)

// NewCmdTest creates the config test command.
func NewCmdTest() *cobra.Command {
	var page string

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test the configured page source",
		Long: `Check that the page directory or page server used by the Include macro
can be reached with the current configuration.`,
		Example: `  # Test the page source
  wikimark config test

  # Look for a specific page
  wikimark config test --page Startseite`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noColor, _ := cmd.Flags().GetBool("no-color")
			cfg, err := cmdutil.LoadConfig(configPath(cmd))
			if err != nil {
				return err
			}
			return runTest(cmd.Context(), cfg, page, noColor, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&page, "page", "Start", "page to look up")

	return cmd
}

func runTest(ctx context.Context, cfg *config.Config, page string, noColor bool, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	r := view.NewRenderer(view.FormatTable, noColor)
	r.SetWriter(out)

	switch {
	case cfg.PagesDir != "":
		fmt.Fprintf(out, "Testing page directory %s...\n", cfg.PagesDir)
		info, err := os.Stat(cfg.PagesDir)
		if err != nil || !info.IsDir() {
			r.Error("Page directory not found")
			return fmt.Errorf("page directory %s is not accessible", cfg.PagesDir)
		}
	case cfg.PagesURL != "":
		fmt.Fprintf(out, "Testing page server %s...\n", cfg.PagesURL)
	default:
		r.Error("No page source configured")
		fmt.Fprintln(out, "\nSet pages_dir or pages_url with: wikimark init")
		return errors.New("no page source configured")
	}

	_, err := cmdutil.PageStore(cfg).Page(ctx, page)
	var statusErr *pages.StatusError
	switch {
	case err == nil:
		r.Success("Page source reachable")
		r.Success(fmt.Sprintf("Found page %q", page))
	case errors.Is(err, markup.ErrPageNotFound):
		r.Success("Page source reachable")
		r.Warning(fmt.Sprintf("Page %q does not exist", page))
	case errors.As(err, &statusErr) && (statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden):
		r.Error(fmt.Sprintf("Access denied: %d", statusErr.StatusCode))
		fmt.Fprintln(out, "\nCheck your token with: wikimark config show")
		return fmt.Errorf("access denied")
	default:
		r.Error(fmt.Sprintf("Request failed: %v", err))
		return fmt.Errorf("page source test failed: %w", err)
	}
	return nil
}
