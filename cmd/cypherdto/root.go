package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cypherdto",
		Short: "Cypher schema compiler tooling",
		Long: color.CyanString(`cypherdto compiles record descriptors into Cypher schemas.

Use it to inspect the statements a descriptor file produces and to check
the connection settings of an application.`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newRenderCommand())
	rootCmd.AddCommand(newPingCommand())
	return rootCmd
}
