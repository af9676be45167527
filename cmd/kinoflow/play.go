package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kinoflow/kinoflow/internal/cli"
)

// playCmd represents the play command
var playCmd = &cobra.Command{
	Use:   "play <graph.json>",
	Short: "Play a conversation interactively in the terminal",
	Long:  `Walks through the conversation graph on stdin/stdout, presenting each step and routing your answers through the logic rules.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		noBanner, _ := cmd.Flags().GetBool("no-banner")

		err := cli.RunPlayback(cli.PlayOptions{
			GraphPath: args[0],
			Debug:     debug,
			NoBanner:  noBanner,
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().Bool("debug", false, "Log rule resolution while playing")
	playCmd.Flags().Bool("no-banner", false, "Suppress the startup banner")
}
