// Package classify inspects a Windows executable's PE header for bitness
// and its directory for graphics-API hints. It decides which ReShade DLL
// flavor and override name the installer should use.
package classify

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Architecture is the executable's bitness.
type Architecture int

const (
	Arch32 Architecture = 32
	Arch64 Architecture = 64
)

// API is the graphics-API family a game renders with. The installer maps
// these onto concrete override DLL names; this package only decides the
// family.
type API string

const (
	APID3D8   API = "d3d8"
	APID3D9   API = "d3d9"
	APIDXGI   API = "dxgi" // Direct3D 10/11/12 share the DXGI swap chain
	APIOpenGL API = "opengl"
)

// Classification is the result of inspecting one executable. Arch and API
// always carry a usable value: when evidence is absent the defaults are
// 64-bit and the DXGI family, which is what most modern titles use.
type Classification struct {
	Arch         Architecture `json:"architecture"`
	API          API          `json:"api"`
	HeaderParsed bool         `json:"header_parsed"`
	Evidence     []string     `json:"evidence,omitempty"`
}

// PE machine types (IMAGE_FILE_MACHINE_*).
const (
	machineI386  = 0x014c
	machineARMNT = 0x01c4
	machineAMD64 = 0x8664
	machineARM64 = 0xaa64
)

// apiMarkerFiles are API-specific support libraries games ship next to
// their executable. Their presence is more specific than the
// architecture-based default and always overrides it. Order matters: the
// rarer markers are the stronger signals.
var apiMarkerFiles = []struct {
	file string
	api  API
}{
	{"opengl32.dll", APIOpenGL},
	{"d3d8.dll", APID3D8},
	{"d3d9.dll", APID3D9},
	{"d3d10.dll", APIDXGI},
	{"d3d11.dll", APIDXGI},
	{"d3d12.dll", APIDXGI},
	{"dxgi.dll", APIDXGI},
}

// File classifies an executable. It never fails: a corrupt or unreadable
// header falls back to the 64-bit/DXGI default.
func File(path string) Classification {
	cls := Classification{Arch: Arch64, API: APIDXGI}

	if machine, ok := peMachine(path); ok {
		cls.HeaderParsed = true
		switch machine {
		case machineI386, machineARMNT:
			cls.Arch = Arch32
			cls.Evidence = append(cls.Evidence, "32-bit PE header")
		case machineAMD64, machineARM64:
			cls.Arch = Arch64
			cls.Evidence = append(cls.Evidence, "64-bit PE header")
		default:
			cls.Evidence = append(cls.Evidence, fmt.Sprintf("unknown PE machine 0x%04x, assuming 64-bit", machine))
		}
	} else {
		cls.Evidence = append(cls.Evidence, "unreadable header, assuming 64-bit")
	}

	if api, marker, ok := apiFromSiblings(filepath.Dir(path)); ok {
		cls.API = api
		cls.Evidence = append(cls.Evidence, "sibling "+marker)
	}

	return cls
}

// peMachine reads the machine-type field from a PE header: the DOS stub's
// MZ magic, the PE offset at 0x3C, the PE\0\0 signature, then the uint16
// machine field right after it.
func peMachine(path string) (uint16, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	dos := make([]byte, 0x40)
	if _, err := f.ReadAt(dos, 0); err != nil {
		return 0, false
	}
	if dos[0] != 'M' || dos[1] != 'Z' {
		return 0, false
	}

	peOffset := int64(binary.LittleEndian.Uint32(dos[0x3c:]))
	sig := make([]byte, 6)
	if _, err := f.ReadAt(sig, peOffset); err != nil {
		return 0, false
	}
	if sig[0] != 'P' || sig[1] != 'E' || sig[2] != 0 || sig[3] != 0 {
		return 0, false
	}

	return binary.LittleEndian.Uint16(sig[4:]), true
}

// apiFromSiblings looks for API-specific support DLLs in the executable's
// own directory.
func apiFromSiblings(dir string) (API, string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", "", false
	}

	present := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		present[strings.ToLower(e.Name())] = struct{}{}
	}

	for _, marker := range apiMarkerFiles {
		if _, ok := present[marker.file]; ok {
			return marker.api, marker.file, true
		}
	}

	return "", "", false
}
