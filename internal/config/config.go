package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Paths   PathsConfig   `mapstructure:"paths"`
	Install InstallConfig `mapstructure:"install"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// PathsConfig contains path-related configuration
type PathsConfig struct {
	DataDir    string `mapstructure:"data_dir"`
	DBFile     string `mapstructure:"db_file"`
	LogFile    string `mapstructure:"log_file"`
	ReshadeDir string `mapstructure:"reshade_dir"`
	SteamRoot  string `mapstructure:"steam_root"`
}

// InstallConfig contains defaults for new installs
type InstallConfig struct {
	MergeShaders bool   `mapstructure:"merge_shaders"`
	ShaderSet    string `mapstructure:"shader_set"`
	AddonSupport bool   `mapstructure:"addon_support"`

	// AutoHDR loads the AutoHDR addon, which needs the addon-enabled
	// ReShade runtime.
	AutoHDR bool `mapstructure:"auto_hdr"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Color string `mapstructure:"color"`
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	// Set config name and paths
	viper.SetConfigName("config")
	viper.SetConfigType("toml")

	// Add config paths
	homeDir, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(filepath.Join(homeDir, ".config", "deckshade"))
	}
	viper.AddConfigPath(".")

	// Set defaults
	setDefaults()

	// Environment variable overrides
	viper.SetEnvPrefix("DECKSHADE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found - use defaults
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Expand paths
	cfg.Paths.DataDir = expandPath(cfg.Paths.DataDir)
	cfg.Paths.DBFile = expandPath(cfg.Paths.DBFile)
	cfg.Paths.LogFile = expandPath(cfg.Paths.LogFile)
	cfg.Paths.ReshadeDir = expandPath(cfg.Paths.ReshadeDir)
	cfg.Paths.SteamRoot = expandPath(cfg.Paths.SteamRoot)

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		homeDir = os.Getenv("HOME")
	}
	if homeDir == "" {
		homeDir = "."
	}

	viper.SetDefault("paths.data_dir", filepath.Join(homeDir, ".local", "share", "deckshade"))
	viper.SetDefault("paths.db_file", filepath.Join(homeDir, ".local", "share", "deckshade", "patches.db"))
	viper.SetDefault("paths.log_file", filepath.Join(homeDir, ".local", "share", "deckshade", "deckshade.log"))
	viper.SetDefault("paths.reshade_dir", filepath.Join(homeDir, ".local", "share", "reshade"))
	viper.SetDefault("paths.steam_root", "")

	viper.SetDefault("install.merge_shaders", true)
	viper.SetDefault("install.shader_set", "Merged")
	viper.SetDefault("install.addon_support", false)
	viper.SetDefault("install.auto_hdr", false)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.color", "auto")
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	// Expand ~
	if len(path) > 0 && path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, path[1:])
		}
	}

	// Expand environment variables
	path = os.ExpandEnv(path)

	return path
}
