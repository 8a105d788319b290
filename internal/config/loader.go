package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/instancectl"
	projectConfigDir = ".instancectl"
	configFileName   = "config.yaml"
)

// LoadConfig loads the configuration by layering default, user, and project settings.
func LoadConfig() (InstancectlConfig, error) {
	config := GetDefaultConfig()

	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// User config is optional.
		fmt.Fprintf(os.Stderr, "Warning: Could not determine user config path: %v\n", err)
	} else {
		config, err = overlayFromFile(config, userConfigPath)
		if err != nil {
			return InstancectlConfig{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
		}
	}

	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not determine project config path: %v\n", err)
	} else {
		config, err = overlayFromFile(config, projectConfigPath)
		if err != nil {
			return InstancectlConfig{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
		}
	}

	return config, nil
}

// LoadConfigFromPath loads defaults plus the single config.yaml found in dir.
func LoadConfigFromPath(dir string) (InstancectlConfig, error) {
	path := filepath.Join(dir, configFileName)
	if _, err := os.Stat(path); err != nil {
		return InstancectlConfig{}, fmt.Errorf("config file %s: %w", path, err)
	}
	return overlayFromFile(GetDefaultConfig(), path)
}

func overlayFromFile(base InstancectlConfig, path string) (InstancectlConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return base, nil
	}
	overlay, err := loadConfigFromFile(path)
	if err != nil {
		return InstancectlConfig{}, err
	}
	return mergeConfigs(base, overlay), nil
}

var getUserConfigPath = func() (string, error) {
	dir, err := GetUserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// loadConfigFromFile loads an InstancectlConfig from a YAML file.
func loadConfigFromFile(filePath string) (InstancectlConfig, error) {
	var config InstancectlConfig
	data, err := os.ReadFile(filePath)
	if err != nil {
		return InstancectlConfig{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return InstancectlConfig{}, fmt.Errorf("parse %s: %w", filePath, err)
	}
	return config, nil
}

// mergeConfigs merges 'overlay' into 'base'. Non-zero overlay fields win; booleans
// can only be switched on by an overlay.
func mergeConfigs(base, overlay InstancectlConfig) InstancectlConfig {
	merged := base

	setString(&merged.Auth.Kubeconfig, overlay.Auth.Kubeconfig)
	setString(&merged.Auth.Context, overlay.Auth.Context)
	setString(&merged.Auth.Server, overlay.Auth.Server)
	merged.Auth.InsecureSkipTLSVerify = merged.Auth.InsecureSkipTLSVerify || overlay.Auth.InsecureSkipTLSVerify

	o := overlay.Auth.OIDC
	merged.Auth.OIDC.Enabled = merged.Auth.OIDC.Enabled || o.Enabled
	merged.Auth.OIDC.OpenBrowser = merged.Auth.OIDC.OpenBrowser || o.OpenBrowser
	setString(&merged.Auth.OIDC.IssuerURL, o.IssuerURL)
	setString(&merged.Auth.OIDC.ClientID, o.ClientID)
	setString(&merged.Auth.OIDC.SessionURL, o.SessionURL)
	setString(&merged.Auth.OIDC.LogoutURL, o.LogoutURL)
	setString(&merged.Auth.OIDC.CookieName, o.CookieName)

	setString(&merged.Session.StateFile, overlay.Session.StateFile)
	if overlay.Session.CheckInterval != 0 {
		merged.Session.CheckInterval = overlay.Session.CheckInterval
	}

	setString(&merged.Form.FieldManager, overlay.Form.FieldManager)
	if overlay.Form.DiffContext != 0 {
		merged.Form.DiffContext = overlay.Form.DiffContext
	}
	merged.Form.ForceConflicts = merged.Form.ForceConflicts || overlay.Form.ForceConflicts

	setString(&merged.Serve.Transport, overlay.Serve.Transport)
	setString(&merged.Serve.Host, overlay.Serve.Host)
	setString(&merged.Serve.MetricsAddr, overlay.Serve.MetricsAddr)
	if overlay.Serve.Port != 0 {
		merged.Serve.Port = overlay.Serve.Port
	}

	return merged
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// GetUserConfigDir returns the user configuration directory path
func GetUserConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir), nil
}
