// Package logresolve extracts the executable a compatibility layer actually
// ran from its runtime logs. A confirmed previous launch beats any amount of
// directory-scanning heuristics, so the detection engine consults this pass
// first.
package logresolve

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// Source is one log text stream. Callers order sources by recency
// preference; the first source that yields a validated path wins.
type Source struct {
	Name   string
	Reader io.Reader
}

// Resolution is a validated executable path recovered from a log.
type Resolution struct {
	Path    string // POSIX path, confirmed to exist
	Source  string // which log source matched
	Pattern string // which line shape matched
}

// Two independent line shapes are tried per line; the first one that
// matches wins for that line.
var (
	// e.g.: Launch command: "Z:\games\Foo\Binaries\Win64\Foo.exe" -windowed
	launchRe = regexp.MustCompile(`(?i)launch(?:ing)?\s+command[^"]*"([^"]+\.exe)"`)
	// e.g.: process 4242 registered: "Z:\games\Foo\Foo.exe"
	processRe = regexp.MustCompile(`(?i)(?:process[^"]*registered|registered[^"]*process)[^"]*"([^"]+\.exe)"`)
)

// Resolver parses log sources for a previously launched executable.
type Resolver struct {
	Logger *zerolog.Logger

	// statFile is swappable for tests; defaults to os.Stat.
	statFile func(string) (os.FileInfo, error)
}

// NewResolver creates a Resolver.
func NewResolver(logger *zerolog.Logger) *Resolver {
	return &Resolver{Logger: logger, statFile: os.Stat}
}

type match struct {
	path    string
	pattern string
}

// Resolve searches each source in order for lines associating runtimeID
// with a quoted .exe path. Within a source the most recent match is
// preferred, but a path is accepted only if it still exists on disk, so
// stale logs naming a deleted install fall through. A nil result with a
// nil error means insufficient evidence, not failure; callers continue
// with the heuristic scan.
func (r *Resolver) Resolve(runtimeID string, sources []Source) (*Resolution, error) {
	for _, src := range sources {
		matches, err := r.collectMatches(runtimeID, src.Reader)
		if err != nil {
			if r.Logger != nil {
				r.Logger.Warn().Err(err).Str("source", src.Name).Msg("skipping unreadable log source")
			}
			continue
		}

		// Most recent first; reject anything that no longer exists.
		for i := len(matches) - 1; i >= 0; i-- {
			m := matches[i]
			posix := windowsToPOSIX(m.path)
			if posix == "" {
				continue
			}
			info, err := r.stat(posix)
			if err != nil || info.IsDir() {
				if r.Logger != nil {
					r.Logger.Debug().
						Str("source", src.Name).
						Str("path", posix).
						Msg("log names an executable that no longer exists")
				}
				continue
			}
			return &Resolution{Path: posix, Source: src.Name, Pattern: m.pattern}, nil
		}
	}

	return nil, nil
}

func (r *Resolver) collectMatches(runtimeID string, reader io.Reader) ([]match, error) {
	var matches []match

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if runtimeID != "" && !strings.Contains(line, runtimeID) {
			continue
		}

		if m := launchRe.FindStringSubmatch(line); m != nil {
			matches = append(matches, match{path: m[1], pattern: "launch-command"})
			continue
		}
		if m := processRe.FindStringSubmatch(line); m != nil {
			matches = append(matches, match{path: m[1], pattern: "process-registered"})
		}
	}

	return matches, scanner.Err()
}

func (r *Resolver) stat(path string) (os.FileInfo, error) {
	if r.statFile != nil {
		return r.statFile(path)
	}
	return os.Stat(path)
}

// windowsToPOSIX maps a Wine-style path onto the host filesystem. Proton
// exposes the root filesystem as drive Z:, so Z:\home\... becomes
// /home/.... Paths on any other drive letter live inside the prefix and
// cannot be validated; those are dropped. Already-POSIX paths pass through.
func windowsToPOSIX(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}

	if len(p) > 2 && p[1] == ':' && (p[2] == '\\' || p[2] == '/') {
		drive := p[0] | 0x20 // lowercase
		if drive != 'z' {
			return ""
		}
		return strings.ReplaceAll(p[2:], `\`, "/")
	}

	if strings.HasPrefix(p, "/") {
		return p
	}
	return ""
}
