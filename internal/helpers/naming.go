package helpers

import (
	"strings"
	"unicode"
)

var (
	editionSuffixTokens = map[string]struct{}{
		"edition": {}, "goty": {}, "remastered": {}, "remaster": {},
		"definitive": {}, "enhanced": {}, "complete": {}, "deluxe": {},
		"ultimate": {}, "anniversary": {}, "directors": {}, "cut": {},
		"demo": {}, "beta": {}, "playtest": {},
	}
	leadingArticles = map[string]struct{}{
		"the": {}, "a": {}, "an": {},
	}
)

// NormalizeGameName lowercases a game's display name and collapses
// punctuation and whitespace into single dashes, matching the shape of
// install directory and executable names.
func NormalizeGameName(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// GenerateNameVariants produces normalized variants of a game's display name
// for matching against executable filenames. Variants progressively drop
// edition suffixes and leading articles, plus compact forms without
// separators for binaries named without dashes.
func GenerateNameVariants(displayName string) []string {
	normalized := NormalizeGameName(displayName)
	if normalized == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var variants []string

	addVariant := func(v string) {
		v = strings.Trim(v, "-")
		if v == "" {
			return
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			variants = append(variants, v)
		}
	}

	addVariant(normalized)

	// Trim edition/build suffix tokens from the right.
	tokens := strings.Split(normalized, "-")
	for len(tokens) > 1 {
		last := tokens[len(tokens)-1]
		if _, ok := editionSuffixTokens[last]; !ok {
			break
		}
		tokens = tokens[:len(tokens)-1]
		addVariant(strings.Join(tokens, "-"))
	}

	// Drop a leading article ("The Witcher" installs as witcher3.exe).
	if len(tokens) > 1 {
		if _, ok := leadingArticles[tokens[0]]; ok {
			addVariant(strings.Join(tokens[1:], "-"))
		}
	}

	// Compact forms without separators.
	originalVariants := append([]string(nil), variants...)
	for _, v := range originalVariants {
		addVariant(strings.ReplaceAll(v, "-", ""))
	}

	return variants
}
