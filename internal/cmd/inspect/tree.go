package inspect

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wikimark/internal/cmd/cmdutil"
)

type treeOptions struct {
	inspectOptions
	raw    bool
	strict bool
}

// NewCmdTree creates the tree command.
func NewCmdTree() *cobra.Command {
	opts := &treeOptions{}

	cmd := &cobra.Command{
		Use:   "tree [file]",
		Short: "Show the document tree of wiki markup",
		Long: `Parse wiki markup and print the resulting document tree.

With --raw the tree is shown as the parser built it, before paragraphs,
smileys, footnotes and sections are added.`,
		Example: `  # Show the tree
  wikimark tree Start.wiki

  # As parsed, without transformations
  wikimark tree Start.wiki --raw`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Globals = cmdutil.GlobalsFrom(cmd)
			if len(args) > 0 {
				opts.file = args[0]
			}
			return runTree(opts, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVar(&opts.raw, "raw", false, "skip paragraphs, smileys, footnotes and sections")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail on parse errors")

	return cmd
}

func runTree(opts *treeOptions, in io.Reader, out, errOut io.Writer) error {
	cfg, err := cmdutil.LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	l, err := cmdutil.NewLogger(cfg, opts.Verbose, errOut)
	if err != nil {
		return err
	}
	name, text, err := cmdutil.ReadInput(opts.file, in)
	if err != nil {
		return err
	}

	m, _ := cmdutil.NewMachine(cfg, l, cmdutil.MachineOptions{Raw: opts.raw, Strict: opts.strict})
	doc, err := m.Parse(text)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	opts.renderer(out).RenderTree(doc)
	return nil
}
