package reshade

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/deckshade/deckshade/internal/detect/classify"
	"github.com/deckshade/deckshade/internal/fsops"
	"github.com/deckshade/deckshade/internal/security"
	"github.com/deckshade/deckshade/internal/transaction"
)

var (
	// ErrAlreadyInstalled means the executable directory carries a receipt
	// from a previous install.
	ErrAlreadyInstalled = errors.New("reshade already installed here")

	// ErrNotInstalled means no receipt was found to revert.
	ErrNotInstalled = errors.New("no reshade install found here")

	// ErrProxyConflict means the proxy DLL name is already taken by a file
	// this tool did not create, likely the game's own or another mod's.
	ErrProxyConflict = errors.New("proxy dll already exists and is not ours")

	// ErrRuntimeMissing means the ReShade runtime files are not present in
	// the data directory yet.
	ErrRuntimeMissing = errors.New("reshade runtime dll not found in data directory")
)

// receiptName is the install receipt written next to the executable. It
// lists every file the install created so revert removes exactly those.
const receiptName = ".deckshade.json"

const compilerDLL = "d3dcompiler_47.dll"

// Options tune one install.
type Options struct {
	// DLLOverride forces a proxy DLL base name, e.g. "d3d9". Empty derives
	// it from the classified API.
	DLLOverride string

	// AddonSupport picks the addon-enabled ReShade runtime.
	AddonSupport bool

	// MergeShaders points the generated ReShade.ini at the shared shader
	// collection in the data directory.
	MergeShaders bool

	// ShaderSet names the collection subdirectory used with MergeShaders.
	// Empty means "Merged".
	ShaderSet string
}

// Plan is a computed install, not yet applied. Callers show it to the user
// before Apply.
type Plan struct {
	ExeDir        string `json:"exe_dir"`
	Override      string `json:"override"`
	RuntimeSource string `json:"runtime_source"`
	ProxyDLL      string `json:"proxy_dll"`
	CopyCompiler  bool   `json:"copy_compiler"`
	WriteINI      bool   `json:"write_ini"`
	LaunchOptions string `json:"launch_options"`
}

// Receipt records an applied install.
type Receipt struct {
	AppID       string    `json:"app_id,omitempty"`
	GameName    string    `json:"game_name,omitempty"`
	Override    string    `json:"override"`
	Arch        int       `json:"architecture"`
	API         string    `json:"api"`
	Files       []string  `json:"files"`
	InstalledAt time.Time `json:"installed_at"`
}

// Installer applies ReShade installs against any afero filesystem.
type Installer struct {
	fs         afero.Fs
	log        *zerolog.Logger
	reshadeDir string
}

// NewInstaller creates an Installer. reshadeDir holds the downloaded
// ReShade runtime DLLs and shader collection.
func NewInstaller(fs afero.Fs, logger *zerolog.Logger, reshadeDir string) *Installer {
	return &Installer{fs: fs, log: logger, reshadeDir: reshadeDir}
}

// Plan computes what an install into exeDir would do. It fails when the
// runtime files are missing or the proxy name is taken by a foreign file.
func (in *Installer) Plan(exeDir string, cls classify.Classification, opts Options) (*Plan, error) {
	override := opts.DLLOverride
	if override == "" {
		override = OverrideName(cls.API)
	}

	runtime := filepath.Join(in.reshadeDir, RuntimeDLL(cls.Arch, opts.AddonSupport))
	if !fsops.Exists(in.fs, runtime) {
		return nil, fmt.Errorf("%w: %s", ErrRuntimeMissing, runtime)
	}

	proxy := filepath.Join(exeDir, override+".dll")
	if fsops.Exists(in.fs, proxy) && !in.installed(exeDir) {
		return nil, fmt.Errorf("%w: %s", ErrProxyConflict, proxy)
	}

	return &Plan{
		ExeDir:        exeDir,
		Override:      override,
		RuntimeSource: runtime,
		ProxyDLL:      proxy,
		CopyCompiler:  fsops.Exists(in.fs, filepath.Join(in.reshadeDir, compilerDLL)),
		WriteINI:      !fsops.Exists(in.fs, filepath.Join(exeDir, "ReShade.ini")),
		LaunchOptions: LaunchOptionsHint(override),
	}, nil
}

// Apply executes a plan and writes the receipt. The receipt lists every
// created file so Revert can undo exactly this install.
func (in *Installer) Apply(plan *Plan, cls classify.Classification, opts Options, appID, gameName string) (*Receipt, error) {
	if in.installed(plan.ExeDir) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyInstalled, plan.ExeDir)
	}
	if err := security.ValidateGameDir(plan.ExeDir); err != nil {
		return nil, fmt.Errorf("game directory: %w", err)
	}
	if !fsops.IsDir(in.fs, plan.ExeDir) {
		return nil, fmt.Errorf("game directory does not exist: %s", plan.ExeDir)
	}
	if err := fsops.CheckWritable(in.fs, plan.ExeDir); err != nil {
		return nil, fmt.Errorf("game directory: %w", err)
	}

	receipt := &Receipt{
		AppID:       appID,
		GameName:    gameName,
		Override:    plan.Override,
		Arch:        int(cls.Arch),
		API:         string(cls.API),
		InstalledAt: time.Now().UTC(),
	}

	tx := transaction.NewManager(in.log)

	if err := fsops.SymlinkOrCopy(in.fs, plan.RuntimeSource, plan.ProxyDLL); err != nil {
		return nil, fmt.Errorf("install proxy dll: %w", err)
	}
	receipt.Files = append(receipt.Files, plan.ProxyDLL)
	tx.Add("proxy dll", func() error { return in.fs.Remove(plan.ProxyDLL) })

	if plan.CopyCompiler {
		dst := filepath.Join(plan.ExeDir, compilerDLL)
		if !fsops.Exists(in.fs, dst) {
			if err := fsops.CopyFile(in.fs, filepath.Join(in.reshadeDir, compilerDLL), dst); err != nil {
				tx.Rollback()
				return nil, fmt.Errorf("install shader compiler: %w", err)
			}
			receipt.Files = append(receipt.Files, dst)
			tx.Add("shader compiler", func() error { return in.fs.Remove(dst) })
		}
	}

	if plan.WriteINI {
		ini := filepath.Join(plan.ExeDir, "ReShade.ini")
		if err := afero.WriteFile(in.fs, ini, in.renderINI(opts), 0o644); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("write ReShade.ini: %w", err)
		}
		receipt.Files = append(receipt.Files, ini)
		tx.Add("ReShade.ini", func() error { return in.fs.Remove(ini) })
	}

	if err := in.writeReceipt(plan.ExeDir, receipt); err != nil {
		tx.Rollback()
		return nil, err
	}
	tx.Commit()

	if in.log != nil {
		in.log.Info().
			Str("dir", plan.ExeDir).
			Str("override", plan.Override).
			Int("files", len(receipt.Files)).
			Msg("reshade installed")
	}
	return receipt, nil
}

// Revert removes a previous install using its receipt. Files that already
// vanished are skipped.
func (in *Installer) Revert(exeDir string) (*Receipt, error) {
	receipt, ok := in.Installed(exeDir)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotInstalled, exeDir)
	}

	for _, f := range receipt.Files {
		if err := in.fs.Remove(f); err != nil && fsops.Exists(in.fs, f) {
			return nil, fmt.Errorf("remove %s: %w", f, err)
		}
	}
	if err := in.fs.Remove(filepath.Join(exeDir, receiptName)); err != nil {
		return nil, fmt.Errorf("remove receipt: %w", err)
	}

	if in.log != nil {
		in.log.Info().Str("dir", exeDir).Msg("reshade removed")
	}
	return receipt, nil
}

// Installed reads the receipt from exeDir if one exists.
func (in *Installer) Installed(exeDir string) (*Receipt, bool) {
	data, err := afero.ReadFile(in.fs, filepath.Join(exeDir, receiptName))
	if err != nil {
		return nil, false
	}
	var receipt Receipt
	if err := json.Unmarshal(data, &receipt); err != nil {
		return nil, false
	}
	return &receipt, true
}

func (in *Installer) installed(exeDir string) bool {
	_, ok := in.Installed(exeDir)
	return ok
}

func (in *Installer) writeReceipt(exeDir string, receipt *Receipt) error {
	data, err := json.MarshalIndent(receipt, "", "  ")
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}
	if err := afero.WriteFile(in.fs, filepath.Join(exeDir, receiptName), data, 0o644); err != nil {
		return fmt.Errorf("write receipt: %w", err)
	}
	return nil
}

// renderINI generates a minimal ReShade.ini. With merged shaders the
// search paths point at the shared collection in the data directory.
func (in *Installer) renderINI(opts Options) []byte {
	effects := ".\\reshade-shaders\\Shaders\\**"
	textures := ".\\reshade-shaders\\Textures\\**"
	if opts.MergeShaders {
		set := opts.ShaderSet
		if set == "" {
			set = "Merged"
		}
		shared := filepath.Join(in.reshadeDir, "ReShade_shaders", set)
		effects = "Z:" + filepath.Join(shared, "Shaders")
		textures = "Z:" + filepath.Join(shared, "Textures")
	}

	ini := "[GENERAL]\n" +
		"EffectSearchPaths=" + effects + "\n" +
		"TextureSearchPaths=" + textures + "\n"
	return []byte(ini)
}
