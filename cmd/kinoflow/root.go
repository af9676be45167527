package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kinoflow",
	Short: "Kinoflow is an interactive video conversation engine",
	Long:  `Kinoflow lets you build branching video conversations and play them back: steps hold media plus an answer mechanism, logic rules route each answer to the next step.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("data-dir", "", "Directory holding graph and session documents (overrides config)")
}
