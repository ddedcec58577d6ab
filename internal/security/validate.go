// Package security holds the path and identifier checks run before the
// tool writes into a game directory.
package security

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// validAppIDRegex matches Steam application IDs, which are plain decimal
// numbers.
var validAppIDRegex = regexp.MustCompile(`^[0-9]+$`)

// sensitivePrefixes are system paths no install should ever target.
var sensitivePrefixes = []string{
	"/etc", "/bin", "/sbin", "/usr/bin", "/usr/sbin",
	"/boot", "/sys", "/proc", "/dev", "/lib", "/lib64",
}

// ValidateAppID checks that id looks like a Steam application ID.
func ValidateAppID(id string) error {
	if id == "" {
		return fmt.Errorf("app id cannot be empty")
	}
	if len(id) > 16 {
		return fmt.Errorf("app id too long: %s", id)
	}
	if !validAppIDRegex.MatchString(id) {
		return fmt.Errorf("invalid app id: %s", id)
	}
	return nil
}

// ValidateGameDir rejects directories the installer must never write
// into. Game installs live under the user's home or a mounted library,
// never under system paths.
func ValidateGameDir(path string) error {
	if path == "" {
		return fmt.Errorf("game directory cannot be empty")
	}
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("game directory contains null byte")
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("game directory must be absolute, got: %s", path)
	}

	clean := filepath.Clean(path)
	for _, prefix := range sensitivePrefixes {
		if clean == prefix || strings.HasPrefix(clean, prefix+"/") {
			return fmt.Errorf("game directory points into a system path: %s", clean)
		}
	}
	return nil
}

// IsPathWithinDirectory checks if a target path is within a given base
// directory. Both paths must be absolute.
func IsPathWithinDirectory(targetPath, basePath string) (bool, error) {
	if !filepath.IsAbs(targetPath) {
		return false, fmt.Errorf("target path must be absolute, got relative path: %s", targetPath)
	}
	if !filepath.IsAbs(basePath) {
		return false, fmt.Errorf("base path must be absolute, got relative path: %s", basePath)
	}

	rel, err := filepath.Rel(filepath.Clean(basePath), filepath.Clean(targetPath))
	if err != nil {
		return false, fmt.Errorf("failed to compute relative path: %w", err)
	}

	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false, nil
	}
	return true, nil
}
