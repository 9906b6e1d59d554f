package cli

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/lexlsh/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("lexlsh version %s\n", version.String())
		},
	}
}
