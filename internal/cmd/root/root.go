// Package root provides the root command for the wikimark CLI.
package root

import (
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wikimark/internal/cmd/compile"
	"github.com/open-cli-collective/wikimark/internal/cmd/completion"
	"github.com/open-cli-collective/wikimark/internal/cmd/configcmd"
	initcmd "github.com/open-cli-collective/wikimark/internal/cmd/init"
	"github.com/open-cli-collective/wikimark/internal/cmd/inspect"
	"github.com/open-cli-collective/wikimark/internal/cmd/page"
	"github.com/open-cli-collective/wikimark/internal/cmd/render"
	"github.com/open-cli-collective/wikimark/internal/config"
	"github.com/open-cli-collective/wikimark/internal/version"
	"github.com/open-cli-collective/wikimark/internal/view"
)

// NewCmdRoot creates the root command for wikimark.
func NewCmdRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wikimark",
		Short: "Render and inspect wiki markup",
		Long: `wikimark parses, compiles and renders wiki markup.

It renders pages to HTML, plain text or Markdown, compiles them into
instruction sets that render without parsing, and shows the tokens and
node trees the parser produces.

Get started by running: wikimark init`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}

	// Global flags
	cmd.PersistentFlags().StringP("config", "c", "", "config file (default: ~/.config/wikimark/config.yml)")
	cmd.PersistentFlags().StringP("output", "o", "table", "output format: table, json, plain")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "log at debug level")
	completion.Values(cmd, "output", view.ValidFormats()...)

	cmd.SetVersionTemplate(version.String() + "\n")

	renderCmd := render.NewCmdRender()
	completion.Files(renderCmd)
	completion.Values(renderCmd, "format", config.Formats...)

	compileCmd := compile.NewCmdCompile()
	completion.Files(compileCmd)
	completion.Values(compileCmd, "format", config.Formats[:2]...)

	cmd.AddCommand(initcmd.NewCmdInit())
	cmd.AddCommand(renderCmd)
	cmd.AddCommand(compileCmd)
	for _, c := range []*cobra.Command{inspect.NewCmdTokens(), inspect.NewCmdTree(), inspect.NewCmdEscape()} {
		completion.Files(c)
		cmd.AddCommand(c)
	}
	cmd.AddCommand(page.NewCmdPage())
	cmd.AddCommand(configcmd.NewCmdConfig())
	cmd.AddCommand(completion.NewCmdCompletion())

	return cmd
}
