package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/deckshade/deckshade/internal/config"
	"github.com/deckshade/deckshade/internal/detect"
	"github.com/deckshade/deckshade/internal/detect/logresolve"
	"github.com/deckshade/deckshade/internal/steam"
)

// target is a resolved detection subject: either an installed Steam game
// or a plain directory the user pointed at.
type target struct {
	InstallDir  string
	DisplayName string
	AppID       string
	Game        *steam.Game
}

// resolveTarget turns the command argument into a target. An existing
// directory is taken as-is; anything else is looked up in the Steam
// libraries by app ID or name.
func resolveTarget(cfg *config.Config, log *zerolog.Logger, arg string) (*target, error) {
	if info, err := os.Stat(arg); err == nil && info.IsDir() {
		abs, err := filepath.Abs(arg)
		if err != nil {
			abs = arg
		}
		return &target{
			InstallDir:  abs,
			DisplayName: filepath.Base(abs),
		}, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	root, err := steam.FindRoot(home, cfg.Paths.SteamRoot)
	if err != nil {
		return nil, err
	}

	game, err := steam.NewLibrary(root, log).Find(arg)
	if err != nil {
		return nil, err
	}

	return &target{
		InstallDir:  game.InstallDir,
		DisplayName: game.Name,
		AppID:       game.AppID,
		Game:        game,
	}, nil
}

// openLogSources opens the Proton log candidates for a target. Missing
// logs are normal; only readable files become sources. The caller must
// close the returned closers.
func openLogSources(t *target) ([]logresolve.Source, func()) {
	if t.AppID == "" {
		return nil, func() {}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, func() {}
	}

	var sources []logresolve.Source
	var files []*os.File
	for _, path := range steam.ProtonLogCandidates(home, t.AppID) {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		files = append(files, f)
		sources = append(sources, logresolve.Source{Name: filepath.Base(path), Reader: f})
	}

	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}
	return sources, closeAll
}

// newDetectRequest assembles the engine request for a target.
func newDetectRequest(t *target, sources []logresolve.Source) detect.Request {
	return detect.Request{
		InstallDir:  t.InstallDir,
		DisplayName: t.DisplayName,
		AppID:       t.AppID,
		LogSources:  sources,
	}
}
