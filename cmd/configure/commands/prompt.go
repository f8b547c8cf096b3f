package commands

import (
	"fmt"

	"github.com/pawcare/pawcare-api/internal/services/summary"
	"github.com/spf13/cobra"
)

// NewPromptCmd prints the system instruction the server would send for a context
func NewPromptCmd() *cobra.Command {
	var (
		contextFile string
		message     string
	)

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the system instruction for a context file",
		Long:  "Build the system instruction from a JSON or YAML context file without calling a model.",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContext(contextFile)
			if err != nil {
				return err
			}

			instruction, err := summary.NewBuilder().BuildSystemInstruction(c)
			if err != nil {
				return fmt.Errorf("build system instruction: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, instruction)
			if message != "" {
				fmt.Fprintf(out, "\nUser message:\n%s\n", message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&contextFile, "context", "", "Path to a JSON or YAML context file")
	cmd.Flags().StringVar(&message, "message", "", "User message to show after the instruction")

	return cmd
}
