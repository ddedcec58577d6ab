package cmd

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckshade/deckshade/internal/config"
)

func TestResolveTargetDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logger := zerolog.New(io.Discard)

	target, err := resolveTarget(&config.Config{}, &logger, dir)
	require.NoError(t, err)

	assert.Equal(t, dir, target.InstallDir)
	assert.Equal(t, filepath.Base(dir), target.DisplayName)
	assert.Empty(t, target.AppID)
	assert.Nil(t, target.Game)
}

func TestResolveTargetUnknownGame(t *testing.T) {
	t.Parallel()

	logger := zerolog.New(io.Discard)
	cfg := &config.Config{}
	cfg.Paths.SteamRoot = filepath.Join(t.TempDir(), "missing-steam")

	_, err := resolveTarget(cfg, &logger, "No Such Game")
	assert.Error(t, err)
}

func TestOpenLogSourcesWithoutAppID(t *testing.T) {
	t.Parallel()

	sources, closeAll := openLogSources(&target{})
	defer closeAll()
	assert.Empty(t, sources)
}
