package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAppID(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateAppID("570"))
	assert.NoError(t, ValidateAppID("292030"))

	assert.Error(t, ValidateAppID(""))
	assert.Error(t, ValidateAppID("dota2"))
	assert.Error(t, ValidateAppID("570; rm -rf /"))
	assert.Error(t, ValidateAppID("12345678901234567"))
}

func TestValidateGameDir(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateGameDir("/home/deck/.local/share/Steam/steamapps/common/Game"))
	assert.NoError(t, ValidateGameDir("/run/media/mmcblk0p1/steamapps/common/Game"))

	assert.Error(t, ValidateGameDir(""))
	assert.Error(t, ValidateGameDir("steamapps/common/Game"))
	assert.Error(t, ValidateGameDir("/etc/systemd"))
	assert.Error(t, ValidateGameDir("/usr/bin"))
	assert.Error(t, ValidateGameDir("/home/deck/game\x00"))
}

func TestIsPathWithinDirectory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target string
		base   string
		want   bool
	}{
		{"direct child", "/games/skyrim/Game.exe", "/games/skyrim", true},
		{"nested child", "/games/skyrim/Binaries/Win64/Game.exe", "/games/skyrim", true},
		{"base itself", "/games/skyrim", "/games/skyrim", true},
		{"sibling", "/games/other/Game.exe", "/games/skyrim", false},
		{"parent", "/games", "/games/skyrim", false},
		{"traversal", "/games/skyrim/../other/Game.exe", "/games/skyrim", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsPathWithinDirectory(tt.target, tt.base)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsPathWithinDirectoryRejectsRelative(t *testing.T) {
	t.Parallel()

	_, err := IsPathWithinDirectory("skyrim/Game.exe", "/games/skyrim")
	assert.Error(t, err)

	_, err = IsPathWithinDirectory("/games/skyrim/Game.exe", "skyrim")
	assert.Error(t, err)
}
