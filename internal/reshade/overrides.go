// Package reshade installs and removes ReShade from a game's executable
// directory. It knows which proxy DLL name a graphics API requires and
// which ReShade runtime matches an executable's bitness.
package reshade

import (
	"fmt"

	"github.com/deckshade/deckshade/internal/detect/classify"
)

// OverrideName returns the proxy DLL base name Wine must load from the
// game directory for the given API.
func OverrideName(api classify.API) string {
	switch api {
	case classify.APID3D8:
		return "d3d8"
	case classify.APID3D9:
		return "d3d9"
	case classify.APIOpenGL:
		return "opengl32"
	default:
		return "dxgi"
	}
}

// RuntimeDLL returns the ReShade runtime file matching an executable's
// bitness, with or without addon support.
func RuntimeDLL(arch classify.Architecture, addon bool) string {
	name := "ReShade64"
	if arch == classify.Arch32 {
		name = "ReShade32"
	}
	if addon {
		name += "_Addon"
	}
	return name + ".dll"
}

// LaunchOptionsHint returns the Steam launch options the user must set so
// Wine loads the proxy DLL from the game directory instead of its
// built-in. d3dcompiler_47 is the shader compiler ReShade needs; it is
// copied next to the executable during install.
func LaunchOptionsHint(override string) string {
	return fmt.Sprintf(`WINEDLLOVERRIDES="d3dcompiler_47=n;%s=n,b" %%command%%`, override)
}
