package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/arcanaland/epidemic/internal/config"
	"github.com/arcanaland/epidemic/internal/seed"
	"github.com/spf13/cobra"
)

// seedCmd represents the seed command group
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Manage the card lists used to start a game",
	Long:  `Commands for managing seed files in your seed library.`,
}

// seedListCmd represents the seed ls command
var seedListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List available seeds in your seed library",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		libraryPath := config.GetSeedLibraryPath()

		defaultSeed, err := config.GetDefaultSeed()
		if err != nil {
			return fmt.Errorf("error getting default seed: %w", err)
		}

		printSeed := func(name, title string, cards int) {
			marker := " "
			suffix := ""
			if name == defaultSeed {
				marker = "*"
				suffix = " [DEFAULT]"
			}
			fmt.Fprintf(out, "%s %s (%s, %d cards)%s\n", marker, name, title, cards, suffix)
		}

		builtin := seed.Builtin()
		if _, err := os.Stat(libraryPath); os.IsNotExist(err) {
			printSeed(seed.BuiltinName, builtin.Name+", built in", len(builtin.Cards))
			fmt.Fprintf(out, "Seed library at %s does not exist.\n", libraryPath)
			fmt.Fprintln(out, "Run 'epidemic seed init' to create it.")
			return nil
		}

		entries, err := os.ReadDir(libraryPath)
		if err != nil {
			return fmt.Errorf("error reading seed library: %w", err)
		}

		// A library file named after the built-in seed replaces it
		if !slices.ContainsFunc(entries, func(e os.DirEntry) bool { return e.Name() == seed.BuiltinName+".toml" }) {
			printSeed(seed.BuiltinName, builtin.Name+", built in", len(builtin.Cards))
		}

		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != ".toml" {
				continue
			}
			s, err := seed.Load(filepath.Join(libraryPath, entry.Name()))
			if err != nil {
				// Not a valid seed, skip
				continue
			}
			printSeed(strings.TrimSuffix(entry.Name(), ".toml"), s.Name, len(s.Cards))
		}
		return nil
	},
}

// seedSetDefaultCmd represents the seed set-default command
var seedSetDefaultCmd = &cobra.Command{
	Use:   "set-default [seed_name]",
	Short: "Set the seed used by new games",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seedName := args[0]

		if seedName != seed.BuiltinName {
			seedPath, err := config.GetSeedPath(seedName)
			if err != nil {
				return err
			}
			if _, err := seed.Load(seedPath); err != nil {
				return fmt.Errorf("not a valid seed: %w", err)
			}
		}

		if err := config.SetDefaultSeed(seedName); err != nil {
			return fmt.Errorf("error setting default seed: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Default seed set to: %s\n", seedName)
		return nil
	},
}

// seedInitCmd represents the seed init command
var seedInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the seed library",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		libraryPath := config.GetSeedLibraryPath()

		if err := os.MkdirAll(libraryPath, 0755); err != nil {
			return fmt.Errorf("error creating seed library: %w", err)
		}

		// Write the built-in deck as a starting point for custom seeds
		examplePath := filepath.Join(libraryPath, seed.BuiltinName+".toml")
		if _, err := os.Stat(examplePath); os.IsNotExist(err) {
			if err := seed.Write(examplePath, seed.Builtin()); err != nil {
				return err
			}
		}

		fmt.Fprintln(out, "Seed library initialized at:", libraryPath)
		fmt.Fprintln(out, "You can now add seeds by copying TOML files to this directory.")

		if _, err := config.LoadConfig(); err != nil {
			return fmt.Errorf("error initializing config: %w", err)
		}
		fmt.Fprintln(out, "Config file initialized at:", config.GetConfigFilePath())
		return nil
	},
}

func init() {
	RootCmd.AddCommand(seedCmd)
	seedCmd.AddCommand(seedListCmd)
	seedCmd.AddCommand(seedSetDefaultCmd)
	seedCmd.AddCommand(seedInitCmd)
}

// loadSeed resolves a seed name to its cards. The built-in seed is used when
// the name is the built-in one and no library file overrides it.
func loadSeed(name string) (*seed.Seed, error) {
	if name == "" {
		name = seed.BuiltinName
	}
	path, err := config.GetSeedPath(name)
	if err != nil {
		if name == seed.BuiltinName {
			return seed.Builtin(), nil
		}
		return nil, err
	}
	return seed.Load(path)
}
