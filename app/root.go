// Package app assembles the tap-authority command tree. The core packages
// stay pure; all console output and logging live here.
package app

import (
	"github.com/spf13/cobra"

	"github.com/trac-network/tap-authority/cmd/version"
)

// RootCmd creates the tap-authority root command.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tap-authority",
		Short:         "Issue signed TAP protocol ops",
		Long:          "tap-authority builds cryptographically signed TAP protocol messages (authority declarations, token mints, DMT mints and provenance verifications) ready for publication on the ledger.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		keygenCmd(),
		privilegeAuthCmd(),
		tokenMintCmd(),
		dmtMintCmd(),
		provenanceCmd(),
		version.NewVersionCmd(),
	)
	return cmd
}
