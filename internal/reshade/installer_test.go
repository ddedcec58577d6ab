package reshade

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckshade/deckshade/internal/detect/classify"
	"github.com/deckshade/deckshade/internal/fsops"
)

const testReshadeDir = "/data/reshade"

func newTestInstaller(t *testing.T) (*Installer, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(testReshadeDir, 0o755))
	for _, name := range []string{"ReShade32.dll", "ReShade64.dll", "ReShade64_Addon.dll", "d3dcompiler_47.dll"} {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(testReshadeDir, name), []byte(name), 0o644))
	}
	logger := zerolog.New(io.Discard)
	return NewInstaller(fs, &logger, testReshadeDir), fs
}

func cls64DXGI() classify.Classification {
	return classify.Classification{Arch: classify.Arch64, API: classify.APIDXGI}
}

func newGameDir(t *testing.T, fs afero.Fs) string {
	t.Helper()
	dir := "/games/example/Binaries/Win64"
	require.NoError(t, fs.MkdirAll(dir, 0o755))
	return dir
}

func TestPlanDefaults(t *testing.T) {
	t.Parallel()

	in, fs := newTestInstaller(t)
	dir := newGameDir(t, fs)

	plan, err := in.Plan(dir, cls64DXGI(), Options{})
	require.NoError(t, err)

	assert.Equal(t, "dxgi", plan.Override)
	assert.Equal(t, filepath.Join(testReshadeDir, "ReShade64.dll"), plan.RuntimeSource)
	assert.Equal(t, filepath.Join(dir, "dxgi.dll"), plan.ProxyDLL)
	assert.True(t, plan.CopyCompiler)
	assert.True(t, plan.WriteINI)
	assert.Contains(t, plan.LaunchOptions, `dxgi=n,b`)
}

func TestPlan32BitD3D9(t *testing.T) {
	t.Parallel()

	in, fs := newTestInstaller(t)
	dir := newGameDir(t, fs)

	cls := classify.Classification{Arch: classify.Arch32, API: classify.APID3D9}
	plan, err := in.Plan(dir, cls, Options{})
	require.NoError(t, err)

	assert.Equal(t, "d3d9", plan.Override)
	assert.Equal(t, filepath.Join(testReshadeDir, "ReShade32.dll"), plan.RuntimeSource)
}

func TestPlanExplicitOverride(t *testing.T) {
	t.Parallel()

	in, fs := newTestInstaller(t)
	dir := newGameDir(t, fs)

	plan, err := in.Plan(dir, cls64DXGI(), Options{DLLOverride: "d3d9"})
	require.NoError(t, err)
	assert.Equal(t, "d3d9", plan.Override)
}

func TestPlanAddonRuntime(t *testing.T) {
	t.Parallel()

	in, fs := newTestInstaller(t)
	dir := newGameDir(t, fs)

	plan, err := in.Plan(dir, cls64DXGI(), Options{AddonSupport: true})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(testReshadeDir, "ReShade64_Addon.dll"), plan.RuntimeSource)
}

func TestPlanRuntimeMissing(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	logger := zerolog.New(io.Discard)
	in := NewInstaller(fs, &logger, "/empty")
	dir := newGameDir(t, fs)

	_, err := in.Plan(dir, cls64DXGI(), Options{})
	assert.ErrorIs(t, err, ErrRuntimeMissing)
}

func TestPlanProxyConflict(t *testing.T) {
	t.Parallel()

	in, fs := newTestInstaller(t)
	dir := newGameDir(t, fs)
	// The game ships its own dxgi.dll.
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, "dxgi.dll"), []byte("theirs"), 0o644))

	_, err := in.Plan(dir, cls64DXGI(), Options{})
	assert.ErrorIs(t, err, ErrProxyConflict)
}

func TestApplyAndRevert(t *testing.T) {
	t.Parallel()

	in, fs := newTestInstaller(t)
	dir := newGameDir(t, fs)

	plan, err := in.Plan(dir, cls64DXGI(), Options{})
	require.NoError(t, err)

	receipt, err := in.Apply(plan, cls64DXGI(), Options{}, "570", "Dota 2")
	require.NoError(t, err)

	assert.True(t, fsops.Exists(fs, filepath.Join(dir, "dxgi.dll")))
	assert.True(t, fsops.Exists(fs, filepath.Join(dir, "d3dcompiler_47.dll")))
	assert.True(t, fsops.Exists(fs, filepath.Join(dir, "ReShade.ini")))
	assert.Equal(t, "570", receipt.AppID)
	assert.Equal(t, 64, receipt.Arch)
	assert.Len(t, receipt.Files, 3)

	stored, ok := in.Installed(dir)
	require.True(t, ok)
	assert.Equal(t, "dxgi", stored.Override)

	_, err = in.Revert(dir)
	require.NoError(t, err)
	assert.False(t, fsops.Exists(fs, filepath.Join(dir, "dxgi.dll")))
	assert.False(t, fsops.Exists(fs, filepath.Join(dir, "ReShade.ini")))
	_, ok = in.Installed(dir)
	assert.False(t, ok)
}

func TestApplyTwiceFails(t *testing.T) {
	t.Parallel()

	in, fs := newTestInstaller(t)
	dir := newGameDir(t, fs)

	plan, err := in.Plan(dir, cls64DXGI(), Options{})
	require.NoError(t, err)
	_, err = in.Apply(plan, cls64DXGI(), Options{}, "", "")
	require.NoError(t, err)

	_, err = in.Apply(plan, cls64DXGI(), Options{}, "", "")
	assert.ErrorIs(t, err, ErrAlreadyInstalled)
}

func TestApplyKeepsExistingINI(t *testing.T) {
	t.Parallel()

	in, fs := newTestInstaller(t)
	dir := newGameDir(t, fs)
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, "ReShade.ini"), []byte("[GENERAL]\nuser=1\n"), 0o644))

	plan, err := in.Plan(dir, cls64DXGI(), Options{})
	require.NoError(t, err)
	assert.False(t, plan.WriteINI)

	_, err = in.Apply(plan, cls64DXGI(), Options{}, "", "")
	require.NoError(t, err)

	content, err := afero.ReadFile(fs, filepath.Join(dir, "ReShade.ini"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "user=1")

	// Revert must not delete the user's own ini.
	_, err = in.Revert(dir)
	require.NoError(t, err)
	assert.True(t, fsops.Exists(fs, filepath.Join(dir, "ReShade.ini")))
}

func TestApplyMergedShadersINI(t *testing.T) {
	t.Parallel()

	in, fs := newTestInstaller(t)
	dir := newGameDir(t, fs)

	plan, err := in.Plan(dir, cls64DXGI(), Options{MergeShaders: true})
	require.NoError(t, err)
	_, err = in.Apply(plan, cls64DXGI(), Options{MergeShaders: true}, "", "")
	require.NoError(t, err)

	content, err := afero.ReadFile(fs, filepath.Join(dir, "ReShade.ini"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "ReShade_shaders")
	assert.Contains(t, string(content), "Merged")
}

func TestApplyShaderSetINI(t *testing.T) {
	t.Parallel()

	in, fs := newTestInstaller(t)
	dir := newGameDir(t, fs)
	opts := Options{MergeShaders: true, ShaderSet: "Performance"}

	plan, err := in.Plan(dir, cls64DXGI(), opts)
	require.NoError(t, err)
	_, err = in.Apply(plan, cls64DXGI(), opts, "", "")
	require.NoError(t, err)

	content, err := afero.ReadFile(fs, filepath.Join(dir, "ReShade.ini"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "Performance")
	assert.NotContains(t, string(content), "Merged")
}

func TestApplyRejectsSystemDir(t *testing.T) {
	t.Parallel()

	in, _ := newTestInstaller(t)
	cls := classify.Classification{Arch: classify.Arch64, API: classify.APIDXGI}

	plan := &Plan{ExeDir: "/usr/bin", Override: "dxgi", ProxyDLL: "/usr/bin/dxgi.dll"}
	_, err := in.Apply(plan, cls, Options{}, "", "")
	assert.Error(t, err)
}

func TestRevertWithoutInstall(t *testing.T) {
	t.Parallel()

	in, fs := newTestInstaller(t)
	dir := newGameDir(t, fs)

	_, err := in.Revert(dir)
	assert.ErrorIs(t, err, ErrNotInstalled)
}

func TestOverrideNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "d3d8", OverrideName(classify.APID3D8))
	assert.Equal(t, "d3d9", OverrideName(classify.APID3D9))
	assert.Equal(t, "dxgi", OverrideName(classify.APIDXGI))
	assert.Equal(t, "opengl32", OverrideName(classify.APIOpenGL))
	assert.Equal(t, "dxgi", OverrideName(classify.API("unknown")))
}

func TestRuntimeDLL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ReShade64.dll", RuntimeDLL(classify.Arch64, false))
	assert.Equal(t, "ReShade32.dll", RuntimeDLL(classify.Arch32, false))
	assert.Equal(t, "ReShade64_Addon.dll", RuntimeDLL(classify.Arch64, true))
}
