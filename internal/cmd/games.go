package cmd

import (
	"fmt"
	"os"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/deckshade/deckshade/internal/config"
	"github.com/deckshade/deckshade/internal/steam"
	"github.com/deckshade/deckshade/internal/ui"
)

// NewGamesCmd creates the games command
func NewGamesCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var (
		jsonOutput bool
		filterName string
	)

	cmd := &cobra.Command{
		Use:   "games",
		Short: "List installed Steam games",
		Long:  `List every game installed across all Steam libraries, with its app ID and install directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("resolve home directory: %w", err)
			}

			root, err := steam.FindRoot(home, cfg.Paths.SteamRoot)
			if err != nil {
				ui.PrintError("%v", err)
				return err
			}

			games, err := steam.NewLibrary(root, log).Games()
			if err != nil {
				ui.PrintError("failed to list games: %v", err)
				return err
			}

			if filterName != "" {
				filtered := games[:0]
				for _, g := range games {
					if fuzzy.MatchNormalizedFold(filterName, g.Name) {
						filtered = append(filtered, g)
					}
				}
				games = filtered
			}

			if jsonOutput {
				return printJSON(cmd, games)
			}

			if len(games) == 0 {
				if filterName != "" {
					ui.PrintWarning("No games matching %q", filterName)
				} else {
					ui.PrintInfo("No games installed")
				}
				return nil
			}

			ui.PrintHeader(fmt.Sprintf("Installed Games (%d)", len(games)))

			table := tablewriter.NewTable(cmd.OutOrStdout(),
				tablewriter.WithHeader([]string{"App ID", "Name", "Install Dir"}),
				tablewriter.WithAlignment(tw.MakeAlign(3, tw.AlignLeft)),
				tablewriter.WithSymbols(tw.NewSymbols(tw.StyleNone)),
			)
			for _, g := range games {
				table.Append([]string{g.AppID, g.Name, g.InstallDir})
			}
			table.Render()

			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	cmd.Flags().StringVar(&filterName, "filter", "", "fuzzy filter by game name")

	return cmd
}
