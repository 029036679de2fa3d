package completion

import (
	"github.com/spf13/cobra"
)

// MarkupExtensions are offered when completing input files.
var MarkupExtensions = []string{"wiki", "txt", "wmc"}

// Files completes the positional file argument of cmd with markup files.
func Files(cmd *cobra.Command) {
	cmd.ValidArgsFunction = func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return MarkupExtensions, cobra.ShellCompDirectiveFilterFileExt
	}
}

// Values completes flag with a fixed set of values. Unknown flags are
// ignored.
func Values(cmd *cobra.Command, flag string, values ...string) {
	_ = cmd.RegisterFlagCompletionFunc(flag, cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp))
}
