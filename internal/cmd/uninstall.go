package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/deckshade/deckshade/internal/config"
	"github.com/deckshade/deckshade/internal/db"
	"github.com/deckshade/deckshade/internal/reshade"
	"github.com/deckshade/deckshade/internal/ui"
)

// NewUninstallCmd creates the uninstall command
func NewUninstallCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "uninstall [game|directory]",
		Short: "Remove a ReShade install",
		Long:  `Remove the files a previous install created and forget the patch record. Accepts a Steam app ID, a game name, or a directory path.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.New(cmd.Context(), cfg.Paths.DBFile)
			if err != nil {
				ui.PrintError("failed to open database: %v", err)
				return err
			}
			defer database.Close()

			patch, err := findPatch(cmd.Context(), cfg, log, database, args[0])
			if err != nil {
				ui.PrintError("%v", err)
				return err
			}

			ui.PrintKeyValue("Game", patch.Name)
			ui.PrintKeyValue("Directory", patch.GameDir)
			ui.PrintKeyValue("DLL override", patch.DLLOverride)

			if !yes {
				ok, err := ui.ConfirmDangerousAction("remove ReShade from", patch.Name)
				if err != nil || !ok {
					ui.PrintInfo("Aborted")
					return err
				}
			}

			installer := reshade.NewInstaller(afero.NewOsFs(), log, cfg.Paths.ReshadeDir)
			if _, err := installer.Revert(patch.GameDir); err != nil {
				if !errors.Is(err, reshade.ErrNotInstalled) {
					ui.PrintError("%v", err)
					return err
				}
				// Files already gone; still drop the stale record.
				ui.PrintWarning("install files were already removed")
			}

			if err := database.Delete(cmd.Context(), patch.PatchID); err != nil {
				ui.PrintError("failed to delete patch record: %v", err)
				return err
			}

			ui.PrintSuccess("ReShade removed from %s", patch.Name)
			ui.PrintInfo("Remember to clear the game's Steam launch options")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

// findPatch locates the patch record for an argument: patch ID, Steam app
// ID, game directory, or installed game name, in that order.
func findPatch(ctx context.Context, cfg *config.Config, log *zerolog.Logger, database *db.DB, arg string) (*db.Patch, error) {
	if patch, err := database.Get(ctx, arg); err == nil {
		return patch, nil
	}
	if patch, err := database.FindByAppID(ctx, arg); err == nil {
		return patch, nil
	}
	if patch, err := database.FindByGameDir(ctx, arg); err == nil {
		return patch, nil
	}

	// Maybe the argument is a game name or install directory; resolve it
	// through Steam and retry by app ID and executable directory.
	t, err := resolveTarget(cfg, log, arg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", db.ErrNotFound, arg)
	}
	if t.AppID != "" {
		if patch, err := database.FindByAppID(ctx, t.AppID); err == nil {
			return patch, nil
		}
	}

	// The recorded game_dir is the executable's directory, which may sit
	// below the install root.
	patches, err := database.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range patches {
		if patches[i].GameDir == t.InstallDir ||
			strings.HasPrefix(patches[i].GameDir, t.InstallDir+string(filepath.Separator)) {
			return &patches[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %s", db.ErrNotFound, arg)
}
