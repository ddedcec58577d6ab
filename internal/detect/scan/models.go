package scan

import "github.com/deckshade/deckshade/internal/helpers"

// SourceMethod records how a candidate was discovered.
type SourceMethod string

const (
	SourceHeuristicScan SourceMethod = "scan"
	SourceLogResolved   SourceMethod = "log"
)

// Candidate is one discovered Windows executable, scored and ranked.
// Candidates are never mutated after a scan completes, only ordered.
type Candidate struct {
	Path     string       `json:"path"`
	RelPath  string       `json:"rel_path"`
	Name     string       `json:"name"`
	Size     int64        `json:"size"`
	Depth    int          `json:"depth"`
	Score    int          `json:"score"`
	Source   SourceMethod `json:"source"`
	Fallback bool         `json:"fallback,omitempty"`
}

// FileEntry is one file discovered during traversal, shared between
// executable scoring and the Linux-build verdict.
type FileEntry struct {
	Path    string
	RelPath string
	Name    string
	Size    int64
	Depth   int
	Kind    helpers.FileKind
}

// Weights holds the scoring parameters. The defaults were tuned against a
// sample of real game installs; callers may adjust individual weights
// without touching traversal or I/O code.
type Weights struct {
	SizeHuge   int // size above HugeBytes
	SizeLarge  int // size above LargeBytes
	SizeMedium int // size above MediumBytes
	SizeTiny   int // penalty below TinyBytes

	HugeBytes   int64
	LargeBytes  int64
	MediumBytes int64
	TinyBytes   int64

	PlatformBinDir int // under a binaries/<platform> directory
	BinDir         int // under a bin directory
	RootDir        int // directly at the install root

	MainKeyword    int // game/main/client/app in the filename
	ShippingMarker int // shipping/retail build marker
	Win64Marker    int // 64-bit token in the filename
	NameAffinity   int // filename fuzzily matches the game's display name

	DepthPenaltyPer int // per directory level once past DepthGrace
	DepthGrace      int

	LogResolved int // bonus for a candidate confirmed by runtime logs

	FallbackMinBytes int64 // size floor for the fallback pass
}

// DefaultWeights returns the standard scoring parameters.
func DefaultWeights() Weights {
	return Weights{
		SizeHuge:   100,
		SizeLarge:  50,
		SizeMedium: 20,
		SizeTiny:   -50,

		HugeBytes:   50 * 1024 * 1024,
		LargeBytes:  20 * 1024 * 1024,
		MediumBytes: 5 * 1024 * 1024,
		TinyBytes:   1 * 1024 * 1024,

		PlatformBinDir: 30,
		BinDir:         20,
		RootDir:        10,

		MainKeyword:    15,
		ShippingMarker: 25,
		Win64Marker:    10,
		NameAffinity:   20,

		DepthPenaltyPer: 5,
		DepthGrace:      3,

		LogResolved: 500,

		FallbackMinBytes: 100 * 1024,
	}
}

// Result is the output of one directory scan.
type Result struct {
	Candidates []Candidate  `json:"candidates"`
	Verdict    LinuxVerdict `json:"linux_build_verdict"`
	// FallbackUsed is set when the filtered scoring pass found nothing and
	// the size-ranked fallback produced the candidate list instead.
	FallbackUsed bool `json:"fallback_used,omitempty"`
}
