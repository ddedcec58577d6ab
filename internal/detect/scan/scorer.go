package scan

import (
	"path"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// utilityPatterns match executables that ship with nearly every game but are
// never the game itself. A candidate matching any of these is excluded
// outright rather than scored.
var utilityPatterns = []string{
	"unins", "installer", "install", "setup",
	"update", "updater", "patcher",
	"crash", "report", "minidump",
	"redist", "vcredist", "vc_redist", "dxsetup", "dxwebsetup",
	"directx", "dotnet", "oalinst",
	"launcher", "bootstrap",
	"easyanticheat", "battleye", "anticheat",
	"ue4prereq", "ueprereq", "prerequisite",
	"touchup", "activation", "register",
	"benchmark", "config", "settings",
	"helper", "cleanup", "repair",
}

// mainKeywords suggest the primary game binary.
var mainKeywords = []string{"game", "main", "client", "app"}

// shippingMarkers are release-build tokens used by common engines
// (Unreal's -Win64-Shipping above all).
var shippingMarkers = []string{"shipping", "retail"}

// win64Markers are 64-bit tokens in executable names.
var win64Markers = []string{"win64", "x64", "64bit", "_64"}

// IsUtilityName reports whether a filename matches a known non-game utility
// pattern (installer, crash reporter, redistributable helper and so on).
func IsUtilityName(name string) bool {
	stem := strings.ToLower(strings.TrimSuffix(name, path.Ext(name)))
	for _, p := range utilityPatterns {
		if strings.Contains(stem, p) {
			return true
		}
	}
	return false
}

// Score is the pure ranking function: a candidate's score depends only on
// its filename, size, and path relative to the install root. nameVariants
// are normalized forms of the game's display name (may be nil).
func Score(name, relPath string, size int64, nameVariants []string, w Weights) int {
	score := 0
	lower := strings.ToLower(name)
	stem := strings.TrimSuffix(lower, path.Ext(lower))

	// Size thresholds: the main binary is almost always the big one.
	switch {
	case size > w.HugeBytes:
		score += w.SizeHuge
	case size > w.LargeBytes:
		score += w.SizeLarge
	case size > w.MediumBytes:
		score += w.SizeMedium
	}
	if size < w.TinyBytes {
		score += w.SizeTiny
	}

	// Path shape.
	dirs := splitDirs(relPath)
	depth := len(dirs)
	switch {
	case underPlatformBinaries(dirs):
		score += w.PlatformBinDir
	case underBinDir(dirs):
		score += w.BinDir
	case depth == 0:
		score += w.RootDir
	}

	// Filename markers.
	for _, kw := range mainKeywords {
		if strings.Contains(stem, kw) {
			score += w.MainKeyword
			break
		}
	}
	for _, m := range shippingMarkers {
		if strings.Contains(stem, m) {
			score += w.ShippingMarker
			break
		}
	}
	for _, m := range win64Markers {
		if strings.Contains(stem, m) {
			score += w.Win64Marker
			break
		}
	}

	// Display-name affinity.
	compact := strings.ReplaceAll(strings.ReplaceAll(stem, "-", ""), "_", "")
	for _, variant := range nameVariants {
		if len(variant) < 3 {
			continue
		}
		flat := strings.ReplaceAll(variant, "-", "")
		if fuzzy.MatchNormalizedFold(flat, compact) || fuzzy.MatchNormalizedFold(compact, flat) {
			score += w.NameAffinity
			break
		}
	}

	// Deeply nested binaries are almost always engine tools.
	if depth > w.DepthGrace {
		score -= depth * w.DepthPenaltyPer
	}

	return score
}

// splitDirs returns the directory components of a slash-separated relative
// path, excluding the filename itself.
func splitDirs(relPath string) []string {
	relPath = strings.ReplaceAll(relPath, "\\", "/")
	dir := path.Dir(relPath)
	if dir == "." || dir == "/" {
		return nil
	}
	return strings.Split(strings.ToLower(dir), "/")
}

// underPlatformBinaries matches Binaries/<platform>-style layouts (Unreal
// and friends).
func underPlatformBinaries(dirs []string) bool {
	for i, d := range dirs {
		if d == "binaries" && i < len(dirs)-1 {
			return true
		}
	}
	return false
}

func underBinDir(dirs []string) bool {
	for _, d := range dirs {
		if d == "bin" || d == "binaries" {
			return true
		}
	}
	return false
}
