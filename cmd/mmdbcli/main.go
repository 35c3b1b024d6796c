// Command mmdbcli inspects MaxMind DB files from the command line: looking
// up an address, printing metadata, verifying structural integrity, and
// dumping every assigned network.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mmdbcli",
		Short:         "Inspect MaxMind DB files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newLookupCmd())
	root.AddCommand(newMetadataCmd())
	root.AddCommand(newVerifyCmd())
	root.AddCommand(newDumpCmd())
	return root
}
