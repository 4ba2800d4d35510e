package cmd

import (
	"fmt"
	"os"

	"github.com/arcanaland/epidemic/internal/seed"
	"github.com/spf13/cobra"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a seed file",
	Long: `Validate checks that a seed file can be used to start a game.
It verifies the TOML structure, card names and card colors.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seedPath := args[0]

		if _, err := os.Stat(seedPath); os.IsNotExist(err) {
			return fmt.Errorf("seed file not found: %s", seedPath)
		}

		v := seed.NewValidator(seedPath)
		results, err := v.Validate()
		if err != nil {
			return fmt.Errorf("validation error: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Validation Results:")
		fmt.Fprintln(out, "-------------------")

		if len(results.Errors) == 0 {
			fmt.Fprintf(out, "✅ Seed '%s' is valid.\n", seedPath)
		} else {
			fmt.Fprintf(out, "❌ Seed '%s' has %d validation errors:\n", seedPath, len(results.Errors))
			for i, err := range results.Errors {
				fmt.Fprintf(out, "%d. %s\n", i+1, err)
			}
			return fmt.Errorf("validation failed")
		}

		if len(results.Warnings) > 0 {
			fmt.Fprintln(out, "\nWarnings:")
			for i, warn := range results.Warnings {
				fmt.Fprintf(out, "%d. %s\n", i+1, warn)
			}
		}

		return nil
	},
}
