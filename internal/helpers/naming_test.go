package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeGameName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"The Witcher 3: Wild Hunt", "the-witcher-3-wild-hunt"},
		{"ELDEN RING", "elden-ring"},
		{"Half-Life 2", "half-life-2"},
		{"  S.T.A.L.K.E.R.  ", "s-t-a-l-k-e-r"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeGameName(tt.in), tt.in)
	}
}

func TestGenerateNameVariants(t *testing.T) {
	t.Parallel()

	variants := GenerateNameVariants("The Witcher 3: Wild Hunt")
	assert.Contains(t, variants, "the-witcher-3-wild-hunt")
	assert.Contains(t, variants, "thewitcher3wildhunt")
	assert.Contains(t, variants, "witcher-3-wild-hunt")

	variants = GenerateNameVariants("Skyrim Special Edition")
	assert.Contains(t, variants, "skyrim-special-edition")
	assert.Contains(t, variants, "skyrim-special")

	assert.Nil(t, GenerateNameVariants(""))
	assert.Nil(t, GenerateNameVariants("!!!"))
}

func TestGenerateNameVariantsDeduplicates(t *testing.T) {
	t.Parallel()

	variants := GenerateNameVariants("Portal")
	seen := make(map[string]int)
	for _, v := range variants {
		seen[v]++
	}
	for v, n := range seen {
		assert.Equal(t, 1, n, v)
	}
}
