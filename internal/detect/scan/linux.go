package scan

import (
	"fmt"

	"github.com/deckshade/deckshade/internal/helpers"
)

// Confidence grades the Linux-build verdict.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// LinuxVerdict reports whether an install tree looks like a Linux-native
// build. ReShade's Windows DLL injection cannot work against one; the
// install workflow warns and asks before proceeding.
type LinuxVerdict struct {
	IsLinuxBuild bool       `json:"is_linux_build"`
	Confidence   Confidence `json:"confidence"`
	Reasons      []string   `json:"reasons,omitempty"`

	SharedLibraries int `json:"shared_libraries"`
	ShellScripts    int `json:"shell_scripts"`
	ELFBinaries     int `json:"elf_binaries"`
	WindowsExes     int `json:"windows_exes"`
}

// AssessLinuxBuild classifies an install tree from the file listing alone.
// It is independent of executable scoring: the two passes share only the
// listing.
func AssessLinuxBuild(entries []FileEntry) LinuxVerdict {
	v := LinuxVerdict{Confidence: ConfidenceLow}

	for _, e := range entries {
		switch e.Kind {
		case helpers.KindSharedLib:
			v.SharedLibraries++
		case helpers.KindShellScript:
			v.ShellScripts++
		case helpers.KindELFBinary:
			v.ELFBinaries++
		case helpers.KindWindowsExe:
			v.WindowsExes++
		}
	}

	linuxSignals := v.SharedLibraries + v.ShellScripts + v.ELFBinaries

	switch {
	case v.WindowsExes == 0 && linuxSignals >= 2:
		v.IsLinuxBuild = true
		v.Confidence = ConfidenceHigh
	case v.WindowsExes == 0 && linuxSignals == 1:
		v.IsLinuxBuild = true
		v.Confidence = ConfidenceMedium
	case v.WindowsExes > 0 && v.ELFBinaries >= 1 && linuxSignals >= 3:
		// Mixed evidence: native binaries shipped alongside Windows ones.
		v.IsLinuxBuild = true
		v.Confidence = ConfidenceMedium
	}

	if !v.IsLinuxBuild {
		return v
	}

	if v.SharedLibraries > 0 {
		v.Reasons = append(v.Reasons, fmt.Sprintf("%d shared-object files found", v.SharedLibraries))
	}
	if v.ShellScripts > 0 {
		v.Reasons = append(v.Reasons, fmt.Sprintf("%d shell-script launchers found", v.ShellScripts))
	}
	if v.ELFBinaries > 0 {
		v.Reasons = append(v.Reasons, fmt.Sprintf("%d ELF binaries found", v.ELFBinaries))
	}
	if v.WindowsExes == 0 {
		v.Reasons = append(v.Reasons, "no Windows executable present")
	} else {
		v.Reasons = append(v.Reasons, fmt.Sprintf("%d Windows executables present", v.WindowsExes))
	}

	return v
}
