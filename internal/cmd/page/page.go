// Package page provides commands for the pages of the configured page
// source.
package page

import (
	"github.com/spf13/cobra"
)

// NewCmdPage creates the page command.
func NewCmdPage() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "page",
		Aliases: []string{"pages"},
		Short:   "Browse pages of the page source",
		Long: `Commands for listing and viewing the pages that Include macros read
from, as configured by pages_dir or pages_url.`,
	}

	cmd.AddCommand(NewCmdList())
	cmd.AddCommand(NewCmdView())

	return cmd
}
