package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/deckshade/deckshade/internal/config"
	"github.com/deckshade/deckshade/internal/db"
	"github.com/deckshade/deckshade/internal/detect"
	"github.com/deckshade/deckshade/internal/detect/classify"
	"github.com/deckshade/deckshade/internal/detect/scan"
	"github.com/deckshade/deckshade/internal/helpers"
	"github.com/deckshade/deckshade/internal/reshade"
	"github.com/deckshade/deckshade/internal/security"
	"github.com/deckshade/deckshade/internal/ui"
)

// NewInstallCmd creates the install command
func NewInstallCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var (
		choose       bool
		force        bool
		yes          bool
		dllOverride  string
		addonSupport bool
		mergeShaders bool
	)

	cmd := &cobra.Command{
		Use:   "install [game|directory]",
		Short: "Install ReShade into a game",
		Long:  `Detect a game's executable and graphics API, then place the matching ReShade runtime next to it. Accepts a Steam app ID, a game name, or a directory path.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := resolveTarget(cfg, log, args[0])
			if err != nil {
				ui.PrintError("%v", err)
				return err
			}

			log.Info().
				Str("target", t.InstallDir).
				Str("app_id", t.AppID).
				Msg("starting install")

			sources, closeSources := openLogSources(t)
			defer closeSources()

			spinner := ui.NewIndeterminateProgressBar(fmt.Sprintf("Detecting %s", t.DisplayName))
			engine := detect.NewEngine(scan.DefaultWeights(), log)
			res, err := engine.Detect(cmd.Context(), newDetectRequest(t, sources))
			spinner.Clear()
			spinner.Finish()

			if err != nil && !errors.Is(err, detect.ErrInsufficientEvidence) {
				ui.PrintError("%v", err)
				return err
			}
			if errors.Is(err, detect.ErrInsufficientEvidence) {
				ui.PrintError("no Windows executable found in %s", t.InstallDir)
				printLinuxVerdict(res.Linux)
				return err
			}

			// A confident Linux verdict blocks the install unless forced.
			if res.Recommended == nil {
				printLinuxVerdict(res.Linux)
				if !force {
					ui.PrintError("refusing to patch a native Linux build, use --force to override")
					return fmt.Errorf("native linux build: %s", t.InstallDir)
				}
				ui.PrintWarning("Proceeding anyway (--force)")
			}

			candidate, cls, err := pickCandidate(res, choose)
			if err != nil {
				return err
			}

			opts := reshade.Options{
				DLLOverride: dllOverride,
				// The AutoHDR addon only loads in the addon-enabled runtime.
				AddonSupport: addonSupport || cfg.Install.AutoHDR,
				MergeShaders: mergeShaders,
				ShaderSet:    cfg.Install.ShaderSet,
			}

			installer := reshade.NewInstaller(afero.NewOsFs(), log, cfg.Paths.ReshadeDir)
			exeDir := filepath.Dir(candidate.Path)

			plan, err := installer.Plan(exeDir, cls, opts)
			if err != nil {
				ui.PrintError("%v", err)
				return err
			}

			printPlan(t, candidate, cls, plan)

			if !yes {
				ok, err := ui.ConfirmPrompt(fmt.Sprintf("Install ReShade for %s", t.DisplayName))
				if err != nil || !ok {
					ui.PrintInfo("Aborted")
					return err
				}
			}

			receipt, err := installer.Apply(plan, cls, opts, t.AppID, t.DisplayName)
			if err != nil {
				ui.PrintError("%v", err)
				return err
			}

			if err := recordPatch(cmd, cfg, t, candidate, cls, plan, receipt); err != nil {
				ui.PrintWarning("install succeeded but recording it failed: %v", err)
			}

			ui.PrintSuccess("ReShade installed into %s", exeDir)
			fmt.Println()
			ui.PrintInfo("Set the game's Steam launch options to:")
			fmt.Printf("  %s\n", plan.LaunchOptions)
			ui.PrintInfo("Press Home in-game to open the ReShade overlay")

			return nil
		},
	}

	cmd.Flags().BoolVar(&choose, "choose", false, "pick the executable from the candidate list")
	cmd.Flags().BoolVar(&force, "force", false, "patch even when the install looks like a native Linux build")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	cmd.Flags().StringVar(&dllOverride, "dll-override", "", "force the proxy DLL name (d3d8, d3d9, dxgi, opengl32)")
	cmd.Flags().BoolVar(&addonSupport, "addon", cfg.Install.AddonSupport, "use the addon-enabled ReShade runtime")
	cmd.Flags().BoolVar(&mergeShaders, "merge-shaders", cfg.Install.MergeShaders, "point ReShade at the shared shader collection")

	return cmd
}

// pickCandidate selects the executable to patch: the recommendation by
// default, or an interactive choice over the whole ranked list.
func pickCandidate(res *detect.Result, choose bool) (*scan.Candidate, classify.Classification, error) {
	if !choose {
		candidate := res.Recommended
		if candidate == nil {
			// Forced install on a Linux-looking tree: best Windows exe wins.
			candidate = &res.Candidates[0]
			return candidate, classify.File(candidate.Path), nil
		}
		return candidate, res.Class, nil
	}

	options := make([]ui.SelectOption, len(res.Candidates))
	for i, c := range res.Candidates {
		options[i] = ui.SelectOption{
			Label:  c.RelPath,
			Detail: fmt.Sprintf("score %d, %s", c.Score, formatSize(c.Size)),
			Value:  c.Path,
		}
	}

	index, _, err := ui.SelectPromptDetailed("Select the game executable", options)
	if err != nil {
		return nil, classify.Classification{}, err
	}

	candidate := &res.Candidates[index]
	if res.Recommended != nil && candidate.Path == res.Recommended.Path {
		return candidate, res.Class, nil
	}
	return candidate, classify.File(candidate.Path), nil
}

func printPlan(t *target, candidate *scan.Candidate, cls classify.Classification, plan *reshade.Plan) {
	ui.PrintHeader(fmt.Sprintf("Install Plan: %s", t.DisplayName))
	ui.PrintKeyValue("Executable", candidate.RelPath)
	ui.PrintKeyValue("Architecture", fmt.Sprintf("%d-bit", cls.Arch))
	ui.PrintKeyValue("Graphics API", ui.ColorizeAPI(string(cls.API)))
	ui.PrintKeyValue("Proxy DLL", plan.ProxyDLL)
	ui.PrintKeyValue("Runtime", plan.RuntimeSource)
	fmt.Println()
}

// recordPatch writes the patch record so list and uninstall can find it.
func recordPatch(cmd *cobra.Command, cfg *config.Config, t *target, candidate *scan.Candidate, cls classify.Classification, plan *reshade.Plan, receipt *reshade.Receipt) error {
	database, err := db.New(cmd.Context(), cfg.Paths.DBFile)
	if err != nil {
		return err
	}
	defer database.Close()

	appID := t.AppID
	if appID != "" && security.ValidateAppID(appID) != nil {
		appID = ""
	}

	patchID := appID
	if patchID == "" {
		patchID = helpers.NormalizeGameName(t.DisplayName)
	}

	return database.Create(cmd.Context(), &db.Patch{
		PatchID:      patchID,
		AppID:        appID,
		Name:         t.DisplayName,
		GameDir:      plan.ExeDir,
		ExePath:      candidate.Path,
		Architecture: int(cls.Arch),
		API:          string(cls.API),
		DLLOverride:  plan.Override,
		InstallDate:  receipt.InstalledAt,
		Metadata: map[string]interface{}{
			"launch_options": plan.LaunchOptions,
			"files":          receipt.Files,
		},
	})
}
