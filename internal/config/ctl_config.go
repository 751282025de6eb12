package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/chromegate/chromegate/internal/errorwrapper"
	"gopkg.in/yaml.v3"
)

// CtlConfig contains all configuration sections for chromegatectl
type CtlConfig struct {
	ChromeConfig ChromeConfig `json:"chrome_config,omitempty" yaml:"chrome_config,omitempty"`
	LogConfig    LogConfig    `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	ProxyConfig  ProxyConfig  `json:"proxy_config,omitempty" yaml:"proxy_config,omitempty"`
}

// NewDefaultCtlConfig creates a new CtlConfig with default values
func NewDefaultCtlConfig() *CtlConfig {
	return &CtlConfig{
		ChromeConfig: NewDefaultChromeConfig(),
		LogConfig:    NewDefaultLogConfig(),
		ProxyConfig:  NewDefaultProxyConfig(),
	}
}

// LoadCtlConfig loads the configuration from a file or default locations.
// It determines the config file path using GetConfigPath and supports both
// JSON and YAML formats. YAML is preferred if the extension is .yaml or .yml.
// When no file is found the defaults are returned as-is.
func LoadCtlConfig(providedPath string) (*CtlConfig, error) {
	cfg := NewDefaultCtlConfig()

	if providedPath != "" {
		if _, err := os.Stat(providedPath); err != nil {
			return nil, errorwrapper.NewError("config file does not exist: %s", providedPath)
		}
	}

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to read config file")
	}

	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to parse config content")
	}

	if err := ValidateCtlConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *CtlConfig) error {
	if isYAMLFile(filepath.Ext(filePath)) {
		return parseYAMLConfig(data, filePath, cfg)
	}
	return parseJSONConfig(data, filePath, cfg)
}

// isYAMLFile checks if the file extension indicates a YAML file
func isYAMLFile(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}

// parseYAMLConfig parses YAML configuration
func parseYAMLConfig(data []byte, filePath string, cfg *CtlConfig) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errorwrapper.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
	}
	return nil
}

// parseJSONConfig parses JSON configuration
func parseJSONConfig(data []byte, filePath string, cfg *CtlConfig) error {
	if err := json.Unmarshal(data, cfg); err != nil {
		return errorwrapper.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}
