// Package completion provides shell completion for wikimark.
package completion

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type shell struct {
	name    string
	install string
	gen     func(root *cobra.Command, w io.Writer) error
}

var shells = []shell{
	{
		name: "bash",
		install: `  source <(wikimark completion bash)
  wikimark completion bash > /etc/bash_completion.d/wikimark`,
		gen: func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
	},
	{
		name: "zsh",
		install: `  source <(wikimark completion zsh)
  wikimark completion zsh > "${fpath[1]}/_wikimark"`,
		gen: func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	},
	{
		name: "fish",
		install: `  wikimark completion fish | source
  wikimark completion fish > ~/.config/fish/completions/wikimark.fish`,
		gen: func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	},
	{
		name: "powershell",
		install: `  wikimark completion powershell | Out-String | Invoke-Expression
  wikimark completion powershell >> $PROFILE`,
		gen: func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) },
	},
}

// NewCmdCompletion creates the completion command with one subcommand per
// supported shell.
func NewCmdCompletion() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for wikimark.

Besides commands and flags, the scripts complete markup files and the
values of --format and --output.`,
	}

	for _, s := range shells {
		cmd.AddCommand(newShellCmd(s))
	}
	return cmd
}

func newShellCmd(s shell) *cobra.Command {
	return &cobra.Command{
		Use:   s.name,
		Short: fmt.Sprintf("Generate %s completion script", s.name),
		Long: fmt.Sprintf(`Generate %s completion script for wikimark.

Load it in the current session with the first line below, or install it
for every new session with the second:

%s`, s.name, s.install),
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.gen(cmd.Root(), cmd.OutOrStdout())
		},
	}
}
