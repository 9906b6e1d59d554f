// Package cli implements the lexlsh command line tool.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the lexlsh command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lexlsh",
		Short: "Fingerprint dense vectors as text tokens",
		Long: `lexlsh turns dense numeric vectors into a small set of discrete tokens
(truncate, position tag, shingle, MinHash) so that an ordinary inverted index
can find approximate nearest neighbours.`,
		SilenceUsage: true,
	}
	root.AddCommand(newEncodeCmd(), newVersionCmd())
	return root
}

// Execute runs the root command with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}
