package logresolve

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver() *Resolver {
	logger := zerolog.New(io.Discard)
	return NewResolver(&logger)
}

func sources(texts ...string) []Source {
	srcs := make([]Source, len(texts))
	for i, txt := range texts {
		srcs[i] = Source{Name: "log", Reader: strings.NewReader(txt)}
	}
	return srcs
}

func TestResolveLaunchCommand(t *testing.T) {
	t.Parallel()

	exe := filepath.Join(t.TempDir(), "Game.exe")
	require.NoError(t, os.WriteFile(exe, []byte("MZ"), 0o755))

	log := "SteamGameId=1091500\n" +
		"1091500: Launch command: \"" + exe + "\" -fullscreen\n"

	res, err := newTestResolver().Resolve("1091500", sources(log))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, exe, res.Path)
	assert.Equal(t, "launch-command", res.Pattern)
}

func TestResolveProcessRegistered(t *testing.T) {
	t.Parallel()

	exe := filepath.Join(t.TempDir(), "Game.exe")
	require.NoError(t, os.WriteFile(exe, []byte("MZ"), 0o755))

	log := "app 1091500: process 4242 registered: \"" + exe + "\"\n"

	res, err := newTestResolver().Resolve("1091500", sources(log))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "process-registered", res.Pattern)
}

func TestResolveWindowsDriveMapping(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	exe := filepath.Join(dir, "Game.exe")
	require.NoError(t, os.WriteFile(exe, []byte("MZ"), 0o755))

	winPath := "Z:" + strings.ReplaceAll(exe, "/", `\`)
	log := "570: Launch command: \"" + winPath + "\"\n"

	res, err := newTestResolver().Resolve("570", sources(log))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, exe, res.Path)
}

func TestResolveRejectsStalePath(t *testing.T) {
	t.Parallel()

	log := "570: Launch command: \"/game/deleted/Game.exe\"\n"

	res, err := newTestResolver().Resolve("570", sources(log))
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestResolvePrefersMostRecentMatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	oldExe := filepath.Join(dir, "Old.exe")
	newExe := filepath.Join(dir, "New.exe")
	require.NoError(t, os.WriteFile(oldExe, []byte("MZ"), 0o755))
	require.NoError(t, os.WriteFile(newExe, []byte("MZ"), 0o755))

	log := "570: Launch command: \"" + oldExe + "\"\n" +
		"570: Launch command: \"" + newExe + "\"\n"

	res, err := newTestResolver().Resolve("570", sources(log))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, newExe, res.Path)
}

func TestResolveFallsBackToEarlierExistingMatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	exe := filepath.Join(dir, "Game.exe")
	require.NoError(t, os.WriteFile(exe, []byte("MZ"), 0o755))

	log := "570: Launch command: \"" + exe + "\"\n" +
		"570: Launch command: \"/gone/Game.exe\"\n"

	res, err := newTestResolver().Resolve("570", sources(log))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, exe, res.Path)
}

func TestResolveRequiresRuntimeID(t *testing.T) {
	t.Parallel()

	exe := filepath.Join(t.TempDir(), "Game.exe")
	require.NoError(t, os.WriteFile(exe, []byte("MZ"), 0o755))

	log := "440: Launch command: \"" + exe + "\"\n"

	// A line for a different title must not resolve.
	res, err := newTestResolver().Resolve("570", sources(log))
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestResolveSourceOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := filepath.Join(dir, "First.exe")
	second := filepath.Join(dir, "Second.exe")
	require.NoError(t, os.WriteFile(first, []byte("MZ"), 0o755))
	require.NoError(t, os.WriteFile(second, []byte("MZ"), 0o755))

	res, err := newTestResolver().Resolve("570", sources(
		"570: Launch command: \""+first+"\"\n",
		"570: Launch command: \""+second+"\"\n",
	))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, first, res.Path)
}

func TestResolveNoSources(t *testing.T) {
	t.Parallel()

	res, err := newTestResolver().Resolve("570", nil)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestResolveDropsForeignDriveLetters(t *testing.T) {
	t.Parallel()

	// C: paths live inside the Wine prefix and cannot be checked on the
	// host filesystem.
	log := "570: Launch command: \"C:\\Program Files\\Game\\Game.exe\"\n"

	res, err := newTestResolver().Resolve("570", sources(log))
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestWindowsToPOSIX(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/games/Foo/Foo.exe", windowsToPOSIX(`Z:\games\Foo\Foo.exe`))
	assert.Equal(t, "/games/Foo/Foo.exe", windowsToPOSIX("/games/Foo/Foo.exe"))
	assert.Equal(t, "", windowsToPOSIX(`C:\Games\Foo.exe`))
	assert.Equal(t, "", windowsToPOSIX("relative/Foo.exe"))
	assert.Equal(t, "", windowsToPOSIX(""))
}
