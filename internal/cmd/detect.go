package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/deckshade/deckshade/internal/config"
	"github.com/deckshade/deckshade/internal/detect"
	"github.com/deckshade/deckshade/internal/detect/logresolve"
	"github.com/deckshade/deckshade/internal/detect/scan"
	"github.com/deckshade/deckshade/internal/reshade"
	"github.com/deckshade/deckshade/internal/steam"
	"github.com/deckshade/deckshade/internal/ui"
)

// NewDetectCmd creates the detect command
func NewDetectCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var (
		jsonOutput bool
		noLogs     bool
		showAll    bool
	)

	cmd := &cobra.Command{
		Use:   "detect [game|directory]",
		Short: "Detect a game's executable and graphics API",
		Long:  `Detect which executable a game actually runs and which graphics API it uses, without changing anything. Accepts a Steam app ID, a game name, or a directory path.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := resolveTarget(cfg, log, args[0])
			if err != nil {
				ui.PrintError("%v", err)
				return err
			}

			var sources []logresolve.Source
			closeSources := func() {}
			if !noLogs {
				sources, closeSources = openLogSources(t)
			}
			defer closeSources()

			var spinner *ui.ProgressBar
			if !jsonOutput {
				spinner = ui.NewIndeterminateProgressBar(fmt.Sprintf("Scanning %s", t.DisplayName))
			}

			engine := detect.NewEngine(scan.DefaultWeights(), log)
			res, err := engine.Detect(cmd.Context(), newDetectRequest(t, sources))

			if spinner != nil {
				spinner.Clear()
				spinner.Finish()
			}

			switch {
			case errors.Is(err, detect.ErrInvalidTarget):
				ui.PrintError("%v", err)
				return err
			case errors.Is(err, detect.ErrInsufficientEvidence):
				if jsonOutput {
					return printJSON(cmd, res)
				}
				ui.PrintError("no executable candidate found in %s", t.InstallDir)
				printLinuxVerdict(res.Linux)
				return err
			case err != nil:
				ui.PrintError("%v", err)
				return err
			}

			if jsonOutput {
				return printJSON(cmd, res)
			}

			printDetection(cmd, t, res, showAll)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	cmd.Flags().BoolVar(&noLogs, "no-logs", false, "skip the runtime log pass, use heuristics only")
	cmd.Flags().BoolVarP(&showAll, "all", "a", false, "show every candidate, not just the top ten")

	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printDetection renders the human-readable detection report.
func printDetection(cmd *cobra.Command, t *target, res *detect.Result, showAll bool) {
	ui.PrintHeader(fmt.Sprintf("Detection: %s", t.DisplayName))

	if res.Recommended != nil {
		ui.PrintKeyValue("Executable", res.Recommended.RelPath)
		source := "directory heuristics"
		if res.LogResolved {
			source = "confirmed by runtime log"
		} else if res.FallbackUsed {
			source = "size fallback, low confidence"
		}
		ui.PrintKeyValue("Source", source)
		ui.PrintKeyValue("Architecture", fmt.Sprintf("%d-bit", res.Class.Arch))
		ui.PrintKeyValue("Graphics API", ui.ColorizeAPI(string(res.Class.API)))
		if len(res.Class.Evidence) > 0 {
			ui.PrintKeyValue("Evidence", res.Class.Evidence[0])
		}

		override := reshade.OverrideName(res.Class.API)
		ui.PrintKeyValue("DLL override", override)
		ui.PrintKeyValue("Launch options", reshade.LaunchOptionsHint(override))

		if t.Game != nil {
			prefix := steam.CompatDataDir(t.Game.LibraryPath, t.AppID)
			if _, err := os.Stat(prefix); err == nil {
				ui.PrintKeyValue("Proton prefix", prefix)
			}
		}
	} else {
		ui.PrintWarning("No executable recommended for this install")
	}

	printLinuxVerdict(res.Linux)

	if len(res.Candidates) > 1 || res.Recommended == nil {
		limit := 10
		if showAll || len(res.Candidates) < limit {
			limit = len(res.Candidates)
		}
		fmt.Println()
		printCandidateTable(cmd, res.Candidates[:limit])
		if limit < len(res.Candidates) {
			ui.PrintInfo("%d more candidates, use --all to see them", len(res.Candidates)-limit)
		}
	}
}

func printLinuxVerdict(v scan.LinuxVerdict) {
	if !v.IsLinuxBuild {
		return
	}

	fmt.Println()
	ui.PrintWarning("This looks like a native Linux build (confidence: %s)", ui.ColorizeConfidence(string(v.Confidence)))
	ui.PrintList(v.Reasons)
	ui.PrintInfo("ReShade's Windows DLL injection does not work on native builds; consider vkBasalt instead")
}

func printCandidateTable(cmd *cobra.Command, candidates []scan.Candidate) {
	table := tablewriter.NewTable(cmd.OutOrStdout(),
		tablewriter.WithHeader([]string{"Score", "Executable", "Size", "Source"}),
		tablewriter.WithAlignment(tw.MakeAlign(4, tw.AlignLeft)),
		tablewriter.WithSymbols(tw.NewSymbols(tw.StyleNone)),
	)

	for _, c := range candidates {
		table.Append([]string{
			fmt.Sprintf("%d", c.Score),
			c.RelPath,
			formatSize(c.Size),
			string(c.Source),
		})
	}

	table.Render()
}

// formatSize renders a byte count the way humans read game installs.
func formatSize(size int64) string {
	switch {
	case size >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(size)/(1<<30))
	case size >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}
