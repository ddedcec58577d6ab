package scan

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/rs/zerolog"

	"github.com/deckshade/deckshade/internal/helpers"
)

// Scanner walks a game's install tree and produces ranked executable
// candidates plus a Linux-build verdict. It never mutates the tree.
type Scanner struct {
	Weights Weights
	Logger  *zerolog.Logger
}

// NewScanner creates a Scanner with the given weights.
func NewScanner(w Weights, logger *zerolog.Logger) *Scanner {
	return &Scanner{Weights: w, Logger: logger}
}

// Scan lists the tree once, then runs the scoring pass and the Linux-build
// assessment over the same listing. Results are deterministic for an
// unchanged directory.
func (s *Scanner) Scan(ctx context.Context, root, displayName string) (*Result, error) {
	entries, err := ListFiles(ctx, root)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Verdict: AssessLinuxBuild(entries),
	}

	nameVariants := helpers.GenerateNameVariants(displayName)
	res.Candidates = s.scoreEntries(entries, nameVariants)

	if len(res.Candidates) == 0 {
		res.Candidates = s.fallbackPass(entries)
		res.FallbackUsed = len(res.Candidates) > 0
	}

	if s.Logger != nil {
		s.Logger.Debug().
			Str("root", root).
			Int("files", len(entries)).
			Int("candidates", len(res.Candidates)).
			Bool("fallback", res.FallbackUsed).
			Msg("directory scan complete")
	}

	return res, nil
}

// ListFiles enumerates all regular files under root. Symlinks are not
// followed, so link cycles cannot recurse; unreadable entries are skipped,
// never fatal. Entries are returned in deterministic path order.
func ListFiles(ctx context.Context, root string) ([]FileEntry, error) {
	root = filepath.Clean(root)

	var (
		mu      sync.Mutex
		entries []FileEntry
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if d.IsDir() {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		entry := FileEntry{
			Path:    path,
			RelPath: rel,
			Name:    d.Name(),
			Size:    info.Size(),
			Depth:   strings.Count(rel, "/"),
			Kind:    helpers.DetectKind(path),
		}

		mu.Lock()
		entries = append(entries, entry)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	// fastwalk visits concurrently; fix the order before anything ranks.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].RelPath < entries[j].RelPath
	})

	return entries, nil
}

// scoreEntries runs the exclusion filter and scoring function over the
// Windows executables in the listing.
func (s *Scanner) scoreEntries(entries []FileEntry, nameVariants []string) []Candidate {
	var candidates []Candidate
	for _, e := range entries {
		if e.Kind != helpers.KindWindowsExe {
			continue
		}
		if IsUtilityName(e.Name) {
			continue
		}

		score := Score(e.Name, e.RelPath, e.Size, nameVariants, s.Weights)
		candidates = append(candidates, Candidate{
			Path:    e.Path,
			RelPath: e.RelPath,
			Name:    e.Name,
			Size:    e.Size,
			Depth:   e.Depth,
			Score:   score,
			Source:  SourceHeuristicScan,
		})

		if s.Logger != nil {
			s.Logger.Debug().
				Str("executable", e.RelPath).
				Int("score", score).
				Msg("scored executable candidate")
		}
	}

	SortCandidates(candidates)
	return candidates
}

// fallbackPass runs when the filter and score pass excluded everything:
// any Windows executable above the size floor qualifies, ranked purely by
// size. A low-confidence guess the operator can override beats silent
// total failure.
func (s *Scanner) fallbackPass(entries []FileEntry) []Candidate {
	var candidates []Candidate
	for _, e := range entries {
		if e.Kind != helpers.KindWindowsExe || e.Size <= s.Weights.FallbackMinBytes {
			continue
		}
		candidates = append(candidates, Candidate{
			Path:     e.Path,
			RelPath:  e.RelPath,
			Name:     e.Name,
			Size:     e.Size,
			Depth:    e.Depth,
			Score:    int(e.Size >> 20), // rank by size, in whole MB
			Source:   SourceHeuristicScan,
			Fallback: true,
		})
	}

	SortCandidates(candidates)
	return candidates
}

// SortCandidates orders by score descending, then shallower path, then
// lexical path order so ties break the same way on every run.
func SortCandidates(candidates []Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if candidates[i].Depth != candidates[j].Depth {
			return candidates[i].Depth < candidates[j].Depth
		}
		return candidates[i].RelPath < candidates[j].RelPath
	})
}
