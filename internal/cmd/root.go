package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/deckshade/deckshade/internal/config"
)

// NewRootCmd creates the root command
func NewRootCmd(cfg *config.Config, log *zerolog.Logger, version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "deckshade",
		Short:        "ReShade companion for Steam Deck and Linux",
		Long:         `Detects the game executable and graphics API inside a Steam install and patches ReShade in, the way it would be done by hand but without the guesswork.`,
		SilenceUsage: true,
	}

	// Add subcommands
	cmd.AddCommand(NewDetectCmd(cfg, log))
	cmd.AddCommand(NewGamesCmd(cfg, log))
	cmd.AddCommand(NewInstallCmd(cfg, log))
	cmd.AddCommand(NewUninstallCmd(cfg, log))
	cmd.AddCommand(NewListCmd(cfg, log))
	cmd.AddCommand(NewDoctorCmd(cfg, log))
	cmd.AddCommand(NewCompletionCmd(cfg, log))
	cmd.AddCommand(NewVersionCmd(version))

	return cmd
}
