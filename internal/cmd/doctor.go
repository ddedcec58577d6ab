package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/deckshade/deckshade/internal/config"
	"github.com/deckshade/deckshade/internal/db"
	"github.com/deckshade/deckshade/internal/steam"
	"github.com/deckshade/deckshade/internal/ui"
)

// NewDoctorCmd creates the doctor command
func NewDoctorCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the environment and data integrity",
		Long:  `Check the Steam installation, the ReShade runtime files, directories, and the patch database for problems.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ui.PrintHeader("System Diagnostics")

			var issues []string
			var warnings []string

			// 1. Steam installation
			ui.PrintSubheader("Steam")
			home, err := os.UserHomeDir()
			if err != nil {
				ui.PrintError("home directory: NOT RESOLVABLE")
				issues = append(issues, fmt.Sprintf("Cannot resolve home directory: %v", err))
			} else {
				root, err := steam.FindRoot(home, cfg.Paths.SteamRoot)
				if err != nil {
					ui.PrintError("Steam root: NOT FOUND")
					issues = append(issues, "Steam installation not found")
				} else {
					ui.PrintSuccess("Steam root: %s", root)

					games, err := steam.NewLibrary(root, log).Games()
					if err != nil {
						ui.PrintWarning("Cannot list games: %v", err)
						warnings = append(warnings, "Cannot list installed games")
					} else {
						ui.PrintInfo("Installed games: %d", len(games))
					}
				}
			}

			// 2. ReShade runtime files
			ui.PrintSubheader("ReShade Runtime")
			runtimes := []struct {
				name     string
				required bool
			}{
				{"ReShade64.dll", true},
				{"ReShade32.dll", true},
				{"ReShade64_Addon.dll", false},
				{"ReShade32_Addon.dll", false},
				{"d3dcompiler_47.dll", false},
			}
			for _, rt := range runtimes {
				path := filepath.Join(cfg.Paths.ReshadeDir, rt.name)
				if _, err := os.Stat(path); err == nil {
					ui.PrintSuccess("%s: found", rt.name)
				} else if rt.required {
					ui.PrintError("%s: NOT FOUND", rt.name)
					issues = append(issues, fmt.Sprintf("Missing ReShade runtime: %s", rt.name))
				} else {
					ui.PrintWarning("%s: not found (optional)", rt.name)
					warnings = append(warnings, fmt.Sprintf("Optional runtime missing: %s", rt.name))
				}
			}

			// 3. Directory structure
			ui.PrintSubheader("Directory Structure")
			dirs := []struct {
				path string
				name string
			}{
				{cfg.Paths.DataDir, "Data directory"},
				{filepath.Dir(cfg.Paths.DBFile), "Database directory"},
				{filepath.Dir(cfg.Paths.LogFile), "Log directory"},
			}
			for _, dir := range dirs {
				if info, err := os.Stat(dir.path); err == nil && info.IsDir() {
					ui.PrintSuccess("%s: %s", dir.name, dir.path)
				} else {
					ui.PrintWarning("%s: missing (%s), will be created on first use", dir.name, dir.path)
					warnings = append(warnings, fmt.Sprintf("Directory missing: %s", dir.path))
				}
			}

			// 4. Database and stale records
			ui.PrintSubheader("Database")
			database, err := db.New(cmd.Context(), cfg.Paths.DBFile)
			if err != nil {
				ui.PrintError("Database: NOT ACCESSIBLE")
				issues = append(issues, fmt.Sprintf("Cannot open database: %v", err))
			} else {
				ui.PrintSuccess("Database: accessible (%s)", cfg.Paths.DBFile)
				defer database.Close()

				patches, err := database.List(cmd.Context())
				if err != nil {
					ui.PrintWarning("Cannot list patches: %v", err)
					warnings = append(warnings, "Cannot list patch records")
				} else {
					ui.PrintInfo("Patched games: %d", len(patches))

					for _, p := range patches {
						if _, err := os.Stat(p.GameDir); err != nil {
							ui.PrintWarning("%s: game directory vanished (%s)", p.Name, p.GameDir)
							warnings = append(warnings, fmt.Sprintf("Stale record: %s", p.Name))
						} else if verbose {
							ui.PrintSuccess("%s: intact", p.Name)
						}
					}
				}
			}

			// Summary
			ui.PrintSubheader("Summary")
			switch {
			case len(issues) > 0:
				ui.PrintError("%d issue(s) found", len(issues))
				ui.PrintList(issues)
				return fmt.Errorf("%d issues found", len(issues))
			case len(warnings) > 0:
				ui.PrintWarning("%d warning(s), nothing blocking", len(warnings))
				ui.PrintList(warnings)
			default:
				ui.PrintSuccess("Everything looks good")
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show per-game check results")

	return cmd
}
