package cmd

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/deckshade/deckshade/internal/config"
	"github.com/deckshade/deckshade/internal/db"
	"github.com/deckshade/deckshade/internal/ui"
)

// NewListCmd creates the list command
func NewListCmd(cfg *config.Config, _ *zerolog.Logger) *cobra.Command {
	var (
		jsonOutput bool
		filterName string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List games patched with ReShade",
		Long:  `List every recorded ReShade install with its executable, architecture, and graphics API.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.New(cmd.Context(), cfg.Paths.DBFile)
			if err != nil {
				ui.PrintError("failed to open database: %v", err)
				return fmt.Errorf("open database: %w", err)
			}
			defer database.Close()

			patches, err := database.List(cmd.Context())
			if err != nil {
				ui.PrintError("failed to list patches: %v", err)
				return fmt.Errorf("list patches: %w", err)
			}

			if filterName != "" {
				filtered := patches[:0]
				for _, p := range patches {
					if strings.Contains(strings.ToLower(p.Name), strings.ToLower(filterName)) {
						filtered = append(filtered, p)
					}
				}
				patches = filtered
			}

			if jsonOutput {
				return printJSON(cmd, patches)
			}

			if len(patches) == 0 {
				if filterName != "" {
					ui.PrintWarning("No patched games matching %q", filterName)
				} else {
					ui.PrintInfo("No games patched yet")
				}
				return nil
			}

			ui.PrintHeader(fmt.Sprintf("Patched Games (%d)", len(patches)))

			table := tablewriter.NewTable(cmd.OutOrStdout(),
				tablewriter.WithHeader([]string{"App ID", "Name", "Arch", "API", "Installed"}),
				tablewriter.WithAlignment(tw.MakeAlign(5, tw.AlignLeft)),
				tablewriter.WithSymbols(tw.NewSymbols(tw.StyleNone)),
			)

			for _, p := range patches {
				appID := p.AppID
				if appID == "" {
					appID = "-"
				}
				table.Append([]string{
					appID,
					p.Name,
					fmt.Sprintf("%d-bit", p.Architecture),
					ui.ColorizeAPI(p.API),
					p.InstallDate.Format("2006-01-02"),
				})
			}

			table.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	cmd.Flags().StringVar(&filterName, "name", "", "filter by game name (partial match)")

	return cmd
}
