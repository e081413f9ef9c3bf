// Package cli wires the boardimage commands: serve, render and check.
package cli

import (
	"github.com/spf13/cobra"
)

var version = "dev"

// SetVersion sets the string printed by --version. main injects it from
// ldflags.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// NewRootCommand builds the command tree. Running the binary without a
// subcommand starts the HTTP server.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "boardimage",
		Short:         "Render chess positions as SVG or PNG board images",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newCheckCmd())
	return root
}
