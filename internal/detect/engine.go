// Package detect orchestrates the three detection passes over a game
// install: the log-based resolver, the heuristic directory scan, and the
// binary classifier. Callers get a ranked candidate list, a recommended
// executable, and the classification the installer needs.
package detect

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/deckshade/deckshade/internal/detect/classify"
	"github.com/deckshade/deckshade/internal/detect/logresolve"
	"github.com/deckshade/deckshade/internal/detect/scan"
	"github.com/deckshade/deckshade/internal/security"
)

var (
	// ErrInvalidTarget means the install directory does not exist or is not
	// a directory. Nothing was detected.
	ErrInvalidTarget = errors.New("install directory does not exist")

	// ErrInsufficientEvidence means no pass produced a usable executable.
	// The accompanying Result still carries the Linux-build verdict and the
	// default classification so callers can explain the failure.
	ErrInsufficientEvidence = errors.New("no executable candidate found")
)

// Request describes one detection run.
type Request struct {
	InstallDir  string
	DisplayName string

	// AppID scopes the log search to one title; logs mention several.
	AppID string

	// LogSources are runtime log streams, most trusted first. Optional;
	// without them detection is heuristic only.
	LogSources []logresolve.Source
}

// Result is the combined outcome of a detection run.
type Result struct {
	// Candidates are ranked best first. A log-confirmed executable carries
	// the log-resolution bonus and therefore always ranks first.
	Candidates []scan.Candidate `json:"candidates"`

	// Recommended is the top candidate, or nil when the install looks like
	// a native Linux build and patching it would be wrong.
	Recommended *scan.Candidate `json:"recommended,omitempty"`

	Class classify.Classification `json:"classification"`
	Linux scan.LinuxVerdict       `json:"linux_build_verdict"`

	// LogResolved is set when the recommendation came from runtime logs
	// rather than heuristics.
	LogResolved bool `json:"log_resolved,omitempty"`

	FallbackUsed bool `json:"fallback_used,omitempty"`
}

// Engine runs detection with a fixed set of scoring weights.
type Engine struct {
	weights scan.Weights
	log     *zerolog.Logger
}

// NewEngine creates an Engine. Pass scan.DefaultWeights() unless tuning.
func NewEngine(weights scan.Weights, logger *zerolog.Logger) *Engine {
	return &Engine{weights: weights, log: logger}
}

// Detect runs all three passes. The heuristic scan always runs so the
// candidate list is complete even when a log already named the answer; the
// log-resolved path is merged in with a score bonus that keeps it on top.
func (e *Engine) Detect(ctx context.Context, req Request) (*Result, error) {
	info, err := os.Stat(req.InstallDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTarget, req.InstallDir)
	}

	resolver := logresolve.NewResolver(e.log)
	resolution, err := resolver.Resolve(req.AppID, req.LogSources)
	if err != nil {
		return nil, err
	}

	scanner := scan.NewScanner(e.weights, e.log)
	scanned, err := scanner.Scan(ctx, req.InstallDir, req.DisplayName)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Candidates:   scanned.Candidates,
		Linux:        scanned.Verdict,
		FallbackUsed: scanned.FallbackUsed,
	}

	if resolution != nil {
		// A log may name an executable from a different install, e.g.
		// after the game moved between libraries; such paths are ignored.
		if within, _ := security.IsPathWithinDirectory(resolution.Path, req.InstallDir); within {
			e.mergeLogResolution(res, resolution, req.InstallDir)
		}
	}

	// Default classification for the no-candidate error path.
	res.Class = classify.Classification{Arch: classify.Arch64, API: classify.APIDXGI}

	if len(res.Candidates) == 0 {
		return res, ErrInsufficientEvidence
	}

	// A Linux-build verdict suppresses the recommendation: the listed
	// Windows executables are likely leftovers or tooling, and the operator
	// must opt in explicitly. A log-confirmed launch is stronger evidence
	// than file-layout heuristics and is never suppressed.
	if res.Linux.IsLinuxBuild && !res.LogResolved {
		res.Class = classify.File(res.Candidates[0].Path)
		return res, nil
	}

	top := res.Candidates[0]
	res.Recommended = &top
	res.Class = classify.File(top.Path)

	if e.log != nil {
		e.log.Info().
			Str("executable", top.RelPath).
			Int("score", top.Score).
			Bool("log_resolved", res.LogResolved).
			Int("architecture", int(res.Class.Arch)).
			Str("api", string(res.Class.API)).
			Msg("detection complete")
	}

	return res, nil
}

// mergeLogResolution folds a log-confirmed path into the candidate list.
// If the scan already found it the existing candidate is promoted,
// otherwise a fresh one is added; either way it carries the log bonus and
// sorts first.
func (e *Engine) mergeLogResolution(res *Result, resolution *logresolve.Resolution, root string) {
	res.LogResolved = true

	for i := range res.Candidates {
		if res.Candidates[i].Path == resolution.Path {
			res.Candidates[i].Score += e.weights.LogResolved
			res.Candidates[i].Source = scan.SourceLogResolved
			e.resort(res)
			return
		}
	}

	var size int64
	if info, err := os.Stat(resolution.Path); err == nil {
		size = info.Size()
	}

	rel, err := filepath.Rel(root, resolution.Path)
	if err != nil {
		rel = resolution.Path
	}
	rel = filepath.ToSlash(rel)

	res.Candidates = append(res.Candidates, scan.Candidate{
		Path:    resolution.Path,
		RelPath: rel,
		Name:    filepath.Base(resolution.Path),
		Size:    size,
		Depth:   strings.Count(rel, "/"),
		Score:   e.weights.LogResolved,
		Source:  scan.SourceLogResolved,
	})
	e.resort(res)

	if e.log != nil {
		e.log.Debug().
			Str("path", resolution.Path).
			Str("source", resolution.Source).
			Str("pattern", resolution.Pattern).
			Msg("log-resolved executable merged into candidates")
	}
}

func (e *Engine) resort(res *Result) {
	scan.SortCandidates(res.Candidates)
}
