package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kinoflow/kinoflow/internal/validator"
	"github.com/kinoflow/kinoflow/pkg/adapters/file"
)

var validateCmd = &cobra.Command{
	Use:   "validate <graph.json>",
	Short: "Check a graph for consistency",
	Long:  `Reports incomplete rules, dead rule targets and steps unreachable from the start node.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		g, err := file.LoadPath(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		issues := validator.Validate(g)
		for _, issue := range issues {
			fmt.Printf("%s: [%s] %s\n", issue.Severity, issue.NodeID, issue.Message)
		}
		if validator.HasErrors(issues) {
			os.Exit(1)
		}
		if len(issues) == 0 {
			fmt.Println("Graph is valid! ✅")
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
