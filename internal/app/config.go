package app

import (
	"instancectl/internal/config"
	"instancectl/internal/kube"
)

// Config holds the application configuration
type Config struct {
	// UI mode
	NoTUI bool

	// Debug settings
	Debug bool

	// ConfigPath replaces the layered config lookup with a single directory.
	ConfigPath string

	// Target is the instance opened by the editor.
	Target kube.Target

	// Loaded configuration, filled in by NewApplication
	InstancectlConfig *config.InstancectlConfig
}

// NewConfig creates a new application configuration
func NewConfig(noTUI, debug bool, configPath string) *Config {
	return &Config{
		NoTUI:      noTUI,
		Debug:      debug,
		ConfigPath: configPath,
	}
}
