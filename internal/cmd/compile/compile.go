// Package compile provides the compile command.
package compile

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/wikimark/internal/cmd/cmdutil"
	"github.com/open-cli-collective/wikimark/internal/view"
	"github.com/open-cli-collective/wikimark/pkg/markup"
)

type compileOptions struct {
	cmdutil.Globals
	file   string
	out    string
	format string
	raw    bool
	strict bool
}

// NewCmdCompile creates the compile command.
func NewCmdCompile() *cobra.Command {
	opts := &compileOptions{}

	cmd := &cobra.Command{
		Use:   "compile [file]",
		Short: "Compile wiki markup into instructions",
		Long: `Compile wiki markup into an instruction set that renders without parsing.

Pages without dynamic macros compile to static output. Pages with them
compile to a hybrid form that evaluates the macros on every render.`,
		Example: `  # Compile a page
  wikimark compile Start.wiki -o start.wmc

  # Compile for plain text output
  wikimark compile Start.wiki --format text -o start.txt.wmc`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Globals = cmdutil.GlobalsFrom(cmd)
			if len(args) > 0 {
				opts.file = args[0]
			}
			return runCompile(opts, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.out, "out", "", "write the instructions to a file instead of stdout")
	cmd.Flags().StringVarP(&opts.format, "format", "f", markup.FormatHTML, "output format: html, text")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "skip paragraphs, smileys, footnotes and sections")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail on parse errors")

	return cmd
}

func runCompile(opts *compileOptions, in io.Reader, out, errOut io.Writer) error {
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
	compiled, err := m.Compile(doc, opts.format)
	if err != nil {
		return fmt.Errorf("failed to compile %s: %w", name, err)
	}
	l.Compiled(name, compiled.IsStatic(), len(compiled))

	if opts.out == "" {
		_, err := out.Write(compiled)
		return err
	}
	if err := os.WriteFile(opts.out, compiled, 0644); err != nil {
		return fmt.Errorf("failed to write instructions: %w", err)
	}

	kind := "hybrid"
	if compiled.IsStatic() {
		kind = "static"
	}
	r := view.NewRenderer(view.FormatTable, opts.NoColor)
	r.SetWriter(out)
	r.Success(fmt.Sprintf("Compiled %s to %s (%s, %s from %s)",
		name, opts.out, kind,
		humanize.Bytes(uint64(len(compiled))),
		humanize.Bytes(uint64(len(text)))))
	return nil
}
