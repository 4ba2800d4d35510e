package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/arcanaland/epidemic/internal/config"
	"github.com/arcanaland/epidemic/internal/deckset"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Track the infection deck of a game",
	Long: `Play starts a new game from a seed and reads tracker commands from stdin.

The draw deck starts with every card of the seed, sorted by name. Move cards
to the discard or excluded piles as they are drawn, and back to the draw deck
when they return to it. Type 'help' for the list of commands.

Examples:
  epidemic play
  epidemic play --seed ./europe.toml --pool-size 8`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("pool-size") {
			cfg.PoolSize, _ = cmd.Flags().GetInt("pool-size")
		}
		if destFlag, _ := cmd.Flags().GetString("destination"); destFlag != "" {
			cfg.DefaultDestination = destFlag
		}
		seedName, _ := cmd.Flags().GetString("seed")
		if seedName == "" {
			seedName = cfg.DefaultSeed
		}

		dest, err := deckset.ParseKey(cfg.DefaultDestination)
		if err != nil {
			return fmt.Errorf("default destination: %w", err)
		}

		s, err := loadSeed(seedName)
		if err != nil {
			return fmt.Errorf("error loading seed: %w", err)
		}

		logger := newLogger(cfg, cmd.ErrOrStderr())
		set := deckset.New(deckset.Options{PoolSize: cfg.PoolSize, Logger: logger})

		out := cmd.OutOrStdout()
		pterm.Info.WithWriter(out).Printfln("Seed: %s (%d cards), moves go to %s by default", s.Name, len(s.Cards), dest)

		sess := newSession(set, s.Cards, dest, out, terminalWidth(), logger)
		sess.exec("new")
		sess.exec("show")
		return sess.run(cmd.InOrStdin())
	},
}

func init() {
	RootCmd.AddCommand(playCmd)

	playCmd.Flags().StringP("seed", "s", "", "Seed name from your seed library or a path to a seed file")
	playCmd.Flags().IntP("pool-size", "k", config.DefaultPoolSize, "Number of pool selector positions")
	playCmd.Flags().StringP("destination", "d", "", "Pile used when a move names none (draw, discard, exclude)")
}
