package inspect

import (
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wikimark/internal/cmd/cmdutil"
	"github.com/open-cli-collective/wikimark/internal/view"
	"github.com/open-cli-collective/wikimark/pkg/markup"
)

// valueWidth caps token values in table output.
const valueWidth = 60

// NewCmdTokens creates the tokens command.
func NewCmdTokens() *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Show the token stream of wiki markup",
		Example: `  # List tokens
  wikimark tokens Start.wiki

  # Machine readable
  echo "''hi''" | wikimark tokens -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Globals = cmdutil.GlobalsFrom(cmd)
			if len(args) > 0 {
				opts.file = args[0]
			}
			return runTokens(opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	return cmd
}

func runTokens(opts *inspectOptions, in io.Reader, out io.Writer) error {
	if err := view.ValidateFormat(opts.Output); err != nil {
		return err
	}
	_, text, err := cmdutil.ReadInput(opts.file, in)
	if err != nil {
		return err
	}

	var tokens []markup.Token
	for tok := range markup.Tokenize(text) {
		tokens = append(tokens, tok)
	}

	r := opts.renderer(out)
	if view.Format(opts.Output) == view.FormatJSON {
		return r.RenderJSON(tokens)
	}

	rows := make([][]string, 0, len(tokens))
	for i, tok := range tokens {
		value := strconv.Quote(tok.Value)
		if view.Format(opts.Output) != view.FormatPlain {
			value = view.Truncate(value, valueWidth)
		}
		if len(tok.Parts) > 0 {
			value += " [" + strings.Join(tok.Parts, " | ") + "]"
		}
		rows = append(rows, []string{strconv.Itoa(i), string(tok.Type), value})
	}
	r.RenderTable([]string{"#", "TYPE", "VALUE"}, rows)
	return nil
}
