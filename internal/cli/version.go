package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the tool version, overridden at build time via
// -ldflags "-X github.com/ldaputil/ldifdiff/internal/cli.Version=...".
var Version = "dev"

// NewVersionCommand creates the version subcommand.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the ldifdiff version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ldifdiff %s\n", Version)
		},
	}
}
