package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/apihelper/version"
)

func newVersionCmd() *cobra.Command {
	noop := func(*cobra.Command, []string) error { return nil }
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// version works without a config file.
		PersistentPreRunE:  noop,
		PersistentPostRunE: noop,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version.GetVersionInfo().String())
			return nil
		},
	}
}
