package cmd

import (
	"io"
	"log/slog"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/arcanaland/epidemic/internal/config"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "epidemic",
	Short: "Infection deck tracker for Pandemic-style board games",
	Long: `Epidemic tracks the infection deck of a card-elimination board game.
It keeps the draw pile sorted, follows cards into the discard and excluded piles,
and shows which cards can sit at each of the top positions of the draw pile.`,
	SilenceUsage: true,
}

func init() {
	RootCmd.AddCommand(validateCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

// newLogger builds the slog logger used by the tracker, printing through pterm
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level, err := cfg.SlogLevel()

	plogger := pterm.DefaultLogger.WithWriter(w).WithLevel(ptermLevel(level))
	logger := slog.New(pterm.NewSlogHandler(plogger))
	if err != nil {
		logger.Warn("falling back to info logging", "error", err)
	}
	return logger
}

func ptermLevel(level slog.Level) pterm.LogLevel {
	switch {
	case level <= slog.LevelDebug:
		return pterm.LogLevelDebug
	case level <= slog.LevelInfo:
		return pterm.LogLevelInfo
	case level <= slog.LevelWarn:
		return pterm.LogLevelWarn
	default:
		return pterm.LogLevelError
	}
}
