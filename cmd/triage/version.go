package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the release tag, overridable at build time with -ldflags.
var Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of triage",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("triage version %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
