// Package steam locates the local Steam installation and reads its library
// metadata: which games are installed, where, and under which app ID.
package steam

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrRootNotFound means no Steam installation was found in any of the
// usual locations.
var ErrRootNotFound = errors.New("steam installation not found")

// rootCandidates are the usual install locations relative to HOME, in
// probe order. The flatpak path comes last; native installs are more
// common on the Deck.
var rootCandidates = []string{
	".steam/steam",
	".local/share/Steam",
	".steam/root",
	".var/app/com.valvesoftware.Steam/.local/share/Steam",
}

// FindRoot locates the Steam root directory. An explicit override wins but
// must be valid; otherwise the standard locations under home are probed. A
// valid root contains a steamapps directory.
func FindRoot(home, override string) (string, error) {
	if override != "" {
		if _, err := SteamAppsDir(override); err != nil {
			return "", fmt.Errorf("configured steam root %s: %w", override, err)
		}
		return override, nil
	}

	for _, rel := range rootCandidates {
		root := filepath.Join(home, rel)
		if _, err := SteamAppsDir(root); err == nil {
			return root, nil
		}
	}

	return "", ErrRootNotFound
}

// SteamAppsDir returns the steamapps directory under a library path.
// Steam has used both capitalizations over the years.
func SteamAppsDir(library string) (string, error) {
	for _, name := range []string{"steamapps", "SteamApps"} {
		dir := filepath.Join(library, name)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
	}
	return "", fmt.Errorf("no steamapps directory under %s", library)
}

// CompatDataDir returns the Proton prefix directory for an app. The
// directory exists only after the game ran under Proton at least once.
func CompatDataDir(library, appID string) string {
	return filepath.Join(library, "steamapps", "compatdata", appID)
}

// ProtonLogCandidates lists where Proton may have written a launch log for
// an app, most useful first. Logging is opt-in (PROTON_LOG=1), so all of
// these may be absent.
func ProtonLogCandidates(home, appID string) []string {
	return []string{
		filepath.Join(home, "steam-"+appID+".log"),
	}
}
