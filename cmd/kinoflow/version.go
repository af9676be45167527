package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kinoflow/kinoflow"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of kinoflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("kinoflow version %s\n", kinoflow.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
