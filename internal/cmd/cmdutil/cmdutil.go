// Package cmdutil holds the setup shared by the wikimark commands.
package cmdutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wikimark/internal/config"
	"github.com/open-cli-collective/wikimark/internal/logger"
	"github.com/open-cli-collective/wikimark/pkg/markup"
	"github.com/open-cli-collective/wikimark/pkg/pages"
)

// Globals are the persistent flags of the root command.
type Globals struct {
	ConfigPath string
	Output     string
	NoColor    bool
	Verbose    bool
}

// GlobalsFrom reads the persistent flags of cmd.
func GlobalsFrom(cmd *cobra.Command) Globals {
	var g Globals
	g.ConfigPath, _ = cmd.Flags().GetString("config")
	g.Output, _ = cmd.Flags().GetString("output")
	g.NoColor, _ = cmd.Flags().GetBool("no-color")
	g.Verbose, _ = cmd.Flags().GetBool("verbose")
	return g
}

// LoadConfig loads and validates the configuration at path, or at the
// default path when path is empty.
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w (run 'wikimark init' to configure)", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w (run 'wikimark init' to configure)", err)
	}
	return cfg, nil
}

// NewLogger builds the logger for cfg writing to w. verbose forces debug
// level.
func NewLogger(cfg *config.Config, verbose bool, w io.Writer) (*logger.Logger, error) {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = log.DebugLevel
	}
	return logger.NewWithLevel(w, level), nil
}

// ReadInput returns the contents of path and a name for it. An empty path
// or "-" reads stdin.
func ReadInput(path string, stdin io.Reader) (name, text string, err error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return "stdin", string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read file: %w", err)
	}
	return filepath.Base(path), string(data), nil
}

// MachineOptions are the per-command switches that shape parsing.
type MachineOptions struct {
	// Raw skips the transformer pipeline.
	Raw    bool
	Strict bool
}

// PageStore returns the store configured for page inclusion, or nil.
func PageStore(cfg *config.Config) markup.PageStore {
	switch {
	case cfg.PagesDir != "":
		return pages.NewDirStore(cfg.PagesDir)
	case cfg.PagesURL != "":
		return pages.NewHTTPStore(cfg.PagesURL, cfg.PagesToken)
	}
	return nil
}

// NewMachine builds the machine described by cfg and opts, together with
// the page store it includes from.
func NewMachine(cfg *config.Config, l *logger.Logger, opts MachineOptions) (*markup.Machine, markup.PageStore) {
	store := PageStore(cfg)

	// Only a directory can answer existence cheaply; otherwise every page
	// counts as existing.
	exists := func(string) bool { return true }
	if dir, ok := store.(*pages.DirStore); ok {
		exists = dir.Exists
	}

	var transformers []markup.Transformer
	switch {
	case opts.Raw:
		transformers = []markup.Transformer{}
	case len(cfg.Smileys) > 0:
		transformers = markup.TransformersWithSmileys(cfg.Smileys)
	}

	m := markup.NewMachine(markup.MachineOptions{
		Links:        cfg.Links(exists),
		Logger:       l.Logger,
		Transformers: transformers,
		Strict:       opts.Strict,
	})
	return m, store
}
