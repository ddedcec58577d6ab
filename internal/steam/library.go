package steam

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/andygrunwald/vdf"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog"
)

// ErrGameNotFound means no installed game matched the query.
var ErrGameNotFound = errors.New("game not found in any steam library")

// Game is one installed title.
type Game struct {
	AppID       string `json:"app_id"`
	Name        string `json:"name"`
	InstallDir  string `json:"install_dir"`
	LibraryPath string `json:"library_path"`
}

// nonGamePrefixes filter tooling entries Steam installs alongside games.
var nonGamePrefixes = []string{
	"Proton",
	"Steam Linux Runtime",
	"Steamworks Common Redistributables",
}

// Library reads game metadata from a Steam root.
type Library struct {
	root string
	log  *zerolog.Logger
}

// NewLibrary creates a Library for the given Steam root.
func NewLibrary(root string, logger *zerolog.Logger) *Library {
	return &Library{root: root, log: logger}
}

// Folders returns every library path registered in libraryfolders.vdf,
// including the root itself. Unreadable or vanished libraries are skipped.
func (l *Library) Folders() ([]string, error) {
	appsDir, err := SteamAppsDir(l.root)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{l.root: true}
	folders := []string{l.root}

	f, err := os.Open(filepath.Join(appsDir, "libraryfolders.vdf"))
	if err != nil {
		// A single-library install may predate the manifest.
		l.debug().Err(err).Msg("no libraryfolders.vdf, using root only")
		return folders, nil
	}
	defer f.Close()

	m, err := vdf.NewParser(f).Parse()
	if err != nil {
		return nil, fmt.Errorf("parse libraryfolders.vdf: %w", err)
	}
	m = normalizeKeys(m)

	lfs, ok := m["libraryfolders"].(map[string]any)
	if !ok {
		return folders, nil
	}

	for _, v := range lfs {
		entry, ok := v.(map[string]any)
		if !ok {
			continue
		}
		path, ok := entry["path"].(string)
		if !ok || seen[path] {
			continue
		}
		if _, err := SteamAppsDir(path); err != nil {
			l.debug().Str("library", path).Msg("skipping unreadable library")
			continue
		}
		seen[path] = true
		folders = append(folders, path)
	}

	sort.Strings(folders[1:])
	return folders, nil
}

// Games lists every installed game across all libraries, sorted by name.
// Runtime and tooling entries are filtered out.
func (l *Library) Games() ([]Game, error) {
	folders, err := l.Folders()
	if err != nil {
		return nil, err
	}

	var games []Game
	for _, folder := range folders {
		appsDir, err := SteamAppsDir(folder)
		if err != nil {
			continue
		}

		manifests, err := filepath.Glob(filepath.Join(appsDir, "appmanifest_*.acf"))
		if err != nil {
			continue
		}

		for _, manifest := range manifests {
			game, err := l.readManifest(manifest, folder)
			if err != nil {
				l.debug().Err(err).Str("manifest", manifest).Msg("skipping unreadable manifest")
				continue
			}
			if isNonGame(game.Name) {
				continue
			}
			games = append(games, game)
		}
	}

	sort.Slice(games, func(i, j int) bool {
		if games[i].Name != games[j].Name {
			return games[i].Name < games[j].Name
		}
		return games[i].AppID < games[j].AppID
	})
	return games, nil
}

// Find matches a query against installed games: an exact app ID first, then
// an exact name match, then a fuzzy name match. A fuzzy query matching
// several games returns the best ranked one.
func (l *Library) Find(query string) (*Game, error) {
	games, err := l.Games()
	if err != nil {
		return nil, err
	}

	for i := range games {
		if games[i].AppID == query {
			return &games[i], nil
		}
	}
	for i := range games {
		if strings.EqualFold(games[i].Name, query) {
			return &games[i], nil
		}
	}

	best := -1
	bestRank := -1
	for i := range games {
		rank := fuzzy.RankMatchNormalizedFold(query, games[i].Name)
		if rank < 0 {
			continue
		}
		if best == -1 || rank < bestRank {
			best = i
			bestRank = rank
		}
	}
	if best >= 0 {
		return &games[best], nil
	}

	return nil, fmt.Errorf("%w: %q", ErrGameNotFound, query)
}

// readManifest parses one appmanifest_*.acf file.
func (l *Library) readManifest(path, folder string) (Game, error) {
	f, err := os.Open(path)
	if err != nil {
		return Game{}, err
	}
	defer f.Close()

	m, err := vdf.NewParser(f).Parse()
	if err != nil {
		return Game{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	m = normalizeKeys(m)

	state, ok := m["appstate"].(map[string]any)
	if !ok {
		return Game{}, fmt.Errorf("%s: no AppState block", filepath.Base(path))
	}

	appID, _ := state["appid"].(string)
	name, _ := state["name"].(string)
	installDir, _ := state["installdir"].(string)
	if appID == "" || installDir == "" {
		return Game{}, fmt.Errorf("%s: incomplete AppState", filepath.Base(path))
	}

	appsDir, err := SteamAppsDir(folder)
	if err != nil {
		return Game{}, err
	}

	return Game{
		AppID:       appID,
		Name:        name,
		InstallDir:  filepath.Join(appsDir, "common", installDir),
		LibraryPath: folder,
	}, nil
}

func (l *Library) debug() *zerolog.Event {
	if l.log == nil {
		nop := zerolog.Nop()
		return nop.Debug()
	}
	return l.log.Debug()
}

func isNonGame(name string) bool {
	for _, prefix := range nonGamePrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// normalizeKeys lowercases map keys recursively. VDF files are
// case-insensitive and Steam is not consistent about casing.
func normalizeKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			v = normalizeKeys(sub)
		}
		out[strings.ToLower(k)] = v
	}
	return out
}
