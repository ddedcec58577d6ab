package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUtilityName(t *testing.T) {
	t.Parallel()

	utilities := []string{
		"UnityCrashHandler64.exe",
		"vcredist_x64.exe",
		"vc_redist.x86.exe",
		"dxsetup.exe",
		"unins000.exe",
		"Setup.exe",
		"GameUpdater.exe",
		"CrashReportClient.exe",
		"EasyAntiCheat_Setup.exe",
		"Launcher.exe",
	}
	for _, name := range utilities {
		assert.True(t, IsUtilityName(name), name)
	}

	games := []string{
		"Witcher3.exe",
		"Game-Win64-Shipping.exe",
		"eldenring.exe",
		"hl2.exe",
	}
	for _, name := range games {
		assert.False(t, IsUtilityName(name), name)
	}
}

func TestScoreSizeThresholds(t *testing.T) {
	t.Parallel()

	w := DefaultWeights()
	huge := Score("a.exe", "a.exe", 60<<20, nil, w)
	large := Score("a.exe", "a.exe", 30<<20, nil, w)
	medium := Score("a.exe", "a.exe", 10<<20, nil, w)
	tiny := Score("a.exe", "a.exe", 100<<10, nil, w)

	assert.Greater(t, huge, large)
	assert.Greater(t, large, medium)
	assert.Greater(t, medium, tiny)
	assert.Equal(t, w.SizeHuge-w.SizeLarge, huge-large)
	assert.Equal(t, w.SizeTiny-w.SizeMedium, tiny-medium)
}

func TestScorePathShape(t *testing.T) {
	t.Parallel()

	w := DefaultWeights()
	size := int64(10 << 20)

	platform := Score("x.exe", "Binaries/Win64/x.exe", size, nil, w)
	bin := Score("x.exe", "bin/x.exe", size, nil, w)
	root := Score("x.exe", "x.exe", size, nil, w)
	plain := Score("x.exe", "data/tools/x.exe", size, nil, w)

	assert.Equal(t, w.PlatformBinDir-w.BinDir, platform-bin)
	assert.Equal(t, w.BinDir-w.RootDir, bin-root)
	assert.Greater(t, root, plain)
}

func TestScoreFilenameMarkers(t *testing.T) {
	t.Parallel()

	w := DefaultWeights()
	size := int64(10 << 20)

	plain := Score("foo.exe", "foo.exe", size, nil, w)
	keyword := Score("GameClient.exe", "GameClient.exe", size, nil, w)
	shipping := Score("Foo-Win64-Shipping.exe", "Foo-Win64-Shipping.exe", size, nil, w)

	// GameClient hits the main-game keyword once even with two keywords.
	assert.Equal(t, w.MainKeyword, keyword-plain)
	// Shipping marker plus the 64-bit token.
	assert.Equal(t, w.ShippingMarker+w.Win64Marker, shipping-plain)
}

func TestScoreDepthPenalty(t *testing.T) {
	t.Parallel()

	w := DefaultWeights()
	size := int64(10 << 20)

	shallow := Score("x.exe", "a/b/c/x.exe", size, nil, w)
	deep := Score("x.exe", "a/b/c/d/e/x.exe", size, nil, w)

	assert.Equal(t, 5*w.DepthPenaltyPer, shallow-deep)
}

func TestScoreNameAffinity(t *testing.T) {
	t.Parallel()

	w := DefaultWeights()
	size := int64(10 << 20)
	variants := []string{"the-witcher-3-wild-hunt", "witcher-3-wild-hunt", "witcher3wildhunt"}

	matched := Score("witcher3.exe", "bin/x64/witcher3.exe", size, variants, w)
	unmatched := Score("storyteller.exe", "bin/x64/storyteller.exe", size, variants, w)

	assert.Equal(t, w.NameAffinity, matched-unmatched)
}

func TestScoreIsPureAndDeterministic(t *testing.T) {
	t.Parallel()

	w := DefaultWeights()
	a := Score("Game.exe", "Binaries/Win64/Game.exe", 80<<20, []string{"game"}, w)
	b := Score("Game.exe", "Binaries/Win64/Game.exe", 80<<20, []string{"game"}, w)
	assert.Equal(t, a, b)
}

func TestScoreAdjustableWeights(t *testing.T) {
	t.Parallel()

	w := DefaultWeights()
	w.ShippingMarker = 500
	boosted := Score("Foo-Shipping.exe", "Foo-Shipping.exe", 1<<20, nil, w)
	standard := Score("Foo-Shipping.exe", "Foo-Shipping.exe", 1<<20, nil, DefaultWeights())
	assert.Equal(t, 500-DefaultWeights().ShippingMarker, boosted-standard)
}
