package configcmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wikimark/internal/config"
)

// NewCmdShow creates the config show command.
func NewCmdShow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long:  `Display the current wikimark configuration with source indicators.`,
		Example: `  # Show current config
  wikimark config show`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noColor, _ := cmd.Flags().GetBool("no-color")
			return runShow(configPath(cmd), noColor, cmd.OutOrStdout())
		},
	}

	return cmd
}

func runShow(path string, noColor bool, out io.Writer) error {
	if noColor {
		color.NoColor = true
	}

	// Load file config (may not exist)
	fileCfg, fileErr := config.Load(path)
	if fileErr != nil {
		fileCfg = config.Default()
	}

	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	printField := func(label, value, fileValue, envVar string) {
		_, _ = bold.Fprintf(out, "%-13s", label+":")
		if value == "" {
			_, _ = dim.Fprintln(out, "-")
			return
		}

		display := value
		if strings.Contains(strings.ToLower(label), "token") {
			display = maskToken(value)
		}
		fmt.Fprint(out, display)

		source := "config"
		switch {
		case envVar != "" && os.Getenv(envVar) != "" && os.Getenv(envVar) == value:
			source = envVar
		case fileErr != nil || fileValue != value:
			source = "default"
		}
		_, _ = dim.Fprintf(out, "  (source: %s)\n", source)
	}

	printField("Application", cfg.Application, fileCfg.Application, "WIKIMARK_APPLICATION")
	printField("Format", cfg.Format, fileCfg.Format, "WIKIMARK_FORMAT")
	printField("Base URL", cfg.BaseURL, strings.TrimSuffix(fileCfg.BaseURL, "/"), "WIKIMARK_BASE_URL")
	printField("Base domain", cfg.BaseDomain, fileCfg.BaseDomain, "WIKIMARK_BASE_DOMAIN")
	printField("Log level", cfg.LogLevel, fileCfg.LogLevel, "WIKIMARK_LOG_LEVEL")
	printField("Pages dir", cfg.PagesDir, fileCfg.PagesDir, "WIKIMARK_PAGES_DIR")
	printField("Pages URL", cfg.PagesURL, fileCfg.PagesURL, "WIKIMARK_PAGES_URL")
	printField("Pages token", cfg.PagesToken, fileCfg.PagesToken, "WIKIMARK_PAGES_TOKEN")
	printField("Cache dir", cfg.CacheDir, fileCfg.CacheDir, "WIKIMARK_CACHE_DIR")

	if len(cfg.Smileys) > 0 {
		codes := make([]string, len(cfg.Smileys))
		for i, s := range cfg.Smileys {
			codes[i] = s.Code
		}
		printField("Smileys", strings.Join(codes, " "), "", "")
	}
	printMap(out, bold, "Interwiki", cfg.InterWiki)
	printMap(out, bold, "Shortcuts", cfg.Shortcuts)

	fmt.Fprintln(out)
	_, _ = dim.Fprintf(out, "Config file: %s\n", path)
	if fileErr != nil {
		_, _ = dim.Fprintln(out, "(file not found)")
	}

	return nil
}

func printMap(out io.Writer, bold *color.Color, label string, m map[string]string) {
	if len(m) == 0 {
		return
	}
	_, _ = bold.Fprintf(out, "%s:\n", label)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "  %-11s %s\n", k, m[k])
	}
}

// maskToken keeps the first and last four characters of long tokens.
func maskToken(value string) string {
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}
