// Package init provides the init command for wikimark.
package init

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wikimark/internal/config"
	"github.com/open-cli-collective/wikimark/pkg/markup"
	"github.com/open-cli-collective/wikimark/pkg/pages"
)

// checkPage is fetched to check that a page server answers.
const checkPage = "Start"

type initOptions struct {
	baseURL  string
	pagesDir string
	pagesURL string
	noVerify bool
}

// NewCmdInit creates the init command.
func NewCmdInit() *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize wikimark configuration",
		Long: `Initialize wikimark with the settings of your wiki.

This command will guide you through setting the application, output format,
base URL for links and the source of pages for the Include macro. The
configuration will be saved to ~/.config/wikimark/config.yml.

Pages can come from a local directory of markup files or from a wiki
server that returns raw markup. A server URL may contain PAGE, which is
replaced with the page name.`,
		Example: `  # Interactive setup
  wikimark init

  # Pre-populate the page directory
  wikimark init --pages-dir ./wiki`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			if path == "" {
				path = config.DefaultConfigPath()
			}
			return runInit(cmd.Context(), opts, path, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.baseURL, "url", "", "base URL of the wiki (e.g., https://wiki.example.org)")
	cmd.Flags().StringVar(&opts.pagesDir, "pages-dir", "", "directory holding pages for the Include macro")
	cmd.Flags().StringVar(&opts.pagesURL, "pages-url", "", "server URL pages are fetched from")
	cmd.Flags().BoolVar(&opts.noVerify, "no-verify", false, "Skip page source verification")

	return cmd
}

func runInit(ctx context.Context, opts *initOptions, configPath string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		err := huh.NewConfirm().
			Title("Configuration already exists").
			Description(fmt.Sprintf("Overwrite %s?", configPath)).
			Value(&overwrite).
			Run()
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Fprintln(out, "Initialization cancelled.")
			return nil
		}
	}

	cfg := config.Default()
	cfg.BaseURL = opts.baseURL
	cfg.PagesDir = opts.pagesDir
	cfg.PagesURL = opts.pagesURL

	if err := newForm(cfg).Run(); err != nil {
		return err
	}

	cfg.NormalizeURL()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if !opts.noVerify && (cfg.PagesDir != "" || cfg.PagesURL != "") {
		fmt.Fprint(out, "Verifying page source... ")
		if err := verifyConnection(ctx, cfg); err != nil {
			fmt.Fprintln(out, "failed!")
			return fmt.Errorf("page source verification failed: %w", err)
		}
		fmt.Fprintln(out, "success!")
	}

	if err := cfg.Save(configPath); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nConfiguration saved to %s\n", configPath)
	fmt.Fprintln(out, "\nYou're all set! Try running:")
	fmt.Fprintln(out, "  wikimark render Start.wiki")
	fmt.Fprintln(out, "  wikimark render Start.wiki --format markdown --pretty")

	return nil
}

func newForm(cfg *config.Config) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Application").
				Description("Context pages are rendered in; macros are limited to some").
				Options(huh.NewOptions("wiki", "ikhaya", "forum", "pastebin")...).
				Value(&cfg.Application),

			huh.NewSelect[string]().
				Title("Default format").
				Options(huh.NewOptions(config.Formats...)...).
				Value(&cfg.Format),

			huh.NewInput().
				Title("Base URL (optional)").
				Description("Internal links are resolved against this URL").
				Placeholder("https://wiki.example.org").
				Value(&cfg.BaseURL).
				Validate(validateURL),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Pages directory (optional)").
				Description("Directory of markup files used by the Include macro").
				Placeholder("./wiki").
				Value(&cfg.PagesDir),

			huh.NewInput().
				Title("Pages URL (optional)").
				Description("Server returning raw markup; PAGE is replaced with the page name").
				Placeholder("https://wiki.example.org/PAGE?action=export&format=raw").
				Value(&cfg.PagesURL).
				Validate(validateURL),

			huh.NewInput().
				Title("Pages token (optional)").
				Description("Bearer token sent to the pages server").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.PagesToken),

			huh.NewSelect[string]().
				Title("Log level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&cfg.LogLevel),
		),
	)
}

func validateURL(s string) error {
	if s == "" {
		return nil
	}
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return fmt.Errorf("URL must start with http:// or https://")
	}
	return nil
}

// verifyConnection checks that the configured page source can be read. A
// server that answers 404 for the check page is reachable.
func verifyConnection(ctx context.Context, cfg *config.Config) error {
	if cfg.PagesDir != "" {
		info, err := os.Stat(cfg.PagesDir)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", cfg.PagesDir)
		}
		return nil
	}

	_, err := pages.NewHTTPStore(cfg.PagesURL, cfg.PagesToken).Page(ctx, checkPage)
	if err == nil || errors.Is(err, markup.ErrPageNotFound) {
		return nil
	}

	var statusErr *pages.StatusError
	if !errors.As(err, &statusErr) {
		return err
	}
	switch statusErr.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("authentication failed - check your pages token")
	case http.StatusForbidden:
		return fmt.Errorf("access denied - check your permissions")
	}
	return fmt.Errorf("unexpected status code: %d", statusErr.StatusCode)
}
