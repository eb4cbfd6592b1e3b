package cmd

import (
	"fmt"

	"github.com/Layr-Labs/abi-tool/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the version of abitool",
		Run: func(cmd *cobra.Command, args []string) {
			v := version.GetVersion()
			commit := version.GetCommit()

			fmt.Fprintf(cmd.OutOrStdout(), "AbiToolVersion: %s\nCommit: %s\n", v, commit)
		},
	}
}
