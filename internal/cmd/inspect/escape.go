package inspect

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wikimark/internal/cmd/cmdutil"
	"github.com/open-cli-collective/wikimark/pkg/markup"
)

// NewCmdEscape creates the escape command.
func NewCmdEscape() *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "escape [file]",
		Short: "Escape text so it renders literally",
		Long: `Put a backslash in front of every markup construct in the input, so
that rendering the result shows the text exactly as written.`,
		Example: `  echo "'''not bold'''" | wikimark escape`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Globals = cmdutil.GlobalsFrom(cmd)
			if len(args) > 0 {
				opts.file = args[0]
			}
			return runEscape(opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	return cmd
}

func runEscape(opts *inspectOptions, in io.Reader, out io.Writer) error {
	_, text, err := cmdutil.ReadInput(opts.file, in)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, markup.Escape(text))
	return err
}
