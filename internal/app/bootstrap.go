package app

import (
	"context"
	"fmt"
	"os"

	"instancectl/internal/config"
	"instancectl/pkg/logging"
)

// Application is the main application structure that bootstraps and runs instancectl
type Application struct {
	config   *Config
	services *Services
}

// NewApplication loads configuration, sets up CLI logging and initializes the
// shared services.
func NewApplication(cfg *Config) (*Application, error) {
	appLogLevel := logging.LevelInfo
	if cfg.Debug {
		appLogLevel = logging.LevelDebug
	}

	// Logs go to stderr so stdout stays clean for YAML and diffs.
	// Replaced by the channel handler in TUI mode.
	logging.InitForCLI(appLogLevel, os.Stderr)

	var icCfg config.InstancectlConfig
	var err error

	if cfg.ConfigPath != "" {
		icCfg, err = config.LoadConfigFromPath(cfg.ConfigPath)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load configuration from path: %s", cfg.ConfigPath)
			return nil, fmt.Errorf("failed to load configuration from path %s: %w", cfg.ConfigPath, err)
		}
		logging.Debug("Bootstrap", "Loaded configuration from custom path: %s", cfg.ConfigPath)
	} else {
		icCfg, err = config.LoadConfig()
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load configuration")
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		logging.Debug("Bootstrap", "Loaded configuration using layered approach")
	}

	cfg.InstancectlConfig = &icCfg

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

// Services returns the initialized services.
func (a *Application) Services() *Services {
	return a.services
}

// Run opens the configured target in the appropriate mode
func (a *Application) Run(ctx context.Context) error {
	if a.config.NoTUI {
		return runCLIMode(ctx, a.config, a.services, os.Stdout)
	}
	return runTUIMode(ctx, a.config, a.services)
}
