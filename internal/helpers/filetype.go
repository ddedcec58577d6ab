package helpers

import (
	"bytes"
	"debug/elf"
	"os"
	"path/filepath"
	"strings"
)

// FileKind classifies files found inside a game's install tree.
type FileKind string

const (
	KindWindowsExe  FileKind = "windows-exe"
	KindWindowsDLL  FileKind = "windows-dll"
	KindSharedLib   FileKind = "shared-lib"
	KindShellScript FileKind = "shell-script"
	KindELFBinary   FileKind = "elf-binary"
	KindOther       FileKind = "other"
)

// DetectKind identifies a file by extension first and magic numbers second.
// Unreadable files fall back to KindOther; a scan must never abort on one
// bad entry.
func DetectKind(path string) FileKind {
	name := strings.ToLower(filepath.Base(path))

	switch {
	case IsWindowsExecutableName(name):
		return KindWindowsExe
	case strings.HasSuffix(name, ".dll"):
		return KindWindowsDLL
	case IsSharedLibraryName(name):
		return KindSharedLib
	case strings.HasSuffix(name, ".sh"):
		return KindShellScript
	}

	// No telling extension: sniff the first few bytes.
	f, err := os.Open(path)
	if err != nil {
		return KindOther
	}
	defer f.Close()

	header := make([]byte, 4)
	n, err := f.Read(header)
	if err != nil || n < 2 {
		return KindOther
	}
	header = header[:n]

	// ELF magic: 0x7F 'E' 'L' 'F'
	if len(header) >= 4 && bytes.Equal(header[:4], []byte{0x7F, 'E', 'L', 'F'}) {
		// Object files and core dumps parse as ELF but are not runnable;
		// a header debug/elf cannot parse stays ELF evidence on magic alone.
		if runnable, err := IsELF(path); err == nil && !runnable {
			return KindOther
		}
		return KindELFBinary
	}

	// Shell script magic: #!
	if bytes.Equal(header[:2], []byte{'#', '!'}) {
		return KindShellScript
	}

	// PE/DOS magic: 'M' 'Z' (a Windows binary shipped without .exe)
	if bytes.Equal(header[:2], []byte{'M', 'Z'}) {
		return KindWindowsExe
	}

	return KindOther
}

// IsSharedLibraryName matches .so, .so.X, .so.X.Y naming patterns.
func IsSharedLibraryName(name string) bool {
	name = strings.ToLower(name)
	return strings.HasSuffix(name, ".so") || strings.Contains(name, ".so.")
}

// IsWindowsExecutableName reports whether a filename looks like a Windows
// executable.
func IsWindowsExecutableName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".exe")
}

// IsELF checks whether a file parses as a runnable ELF binary, an
// executable or a shared object. A file debug/elf cannot parse at all
// returns the parse error so callers can fall back to weaker evidence.
func IsELF(path string) (bool, error) {
	f, err := elf.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	return f.Type == elf.ET_EXEC || f.Type == elf.ET_DYN, nil
}
