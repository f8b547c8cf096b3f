package main

import (
	"fmt"
	"os"

	"github.com/pawcare/pawcare-api/cmd/configure/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "pawcare-configure",
		Short: "Operator tool for the PawCare API",
		Long:  "Inspect prompts, send test messages, and manage stored settings",
	}

	rootCmd.AddCommand(commands.NewPromptCmd())
	rootCmd.AddCommand(commands.NewChatCmd())
	rootCmd.AddCommand(commands.NewRatelimitCmd())
	rootCmd.AddCommand(commands.NewHistoryCmd())
	rootCmd.AddCommand(commands.NewTestCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
