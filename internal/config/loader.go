package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadGems loads the gem game configuration.
// Search order: customPath -> ~/.arcade/configs/gems.yaml -> ./configs/gems.yaml -> embedded default
//
// Files are unmarshalled over the defaults, so a partial file only
// overrides the keys it names. The result is validated.
func LoadGems(customPath string) (GemsConfig, error) {
	cfg := DefaultGemsConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, cfg.Validate()
	}

	for _, path := range []string{userConfigPath("gems.yaml"), filepath.Join("configs", "gems.yaml")} {
		if path == "" {
			continue
		}
		if fileCfg, ok := readGems(path); ok {
			return fileCfg, nil
		}
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultGemsYAML, &cfg); err != nil {
		return DefaultGemsConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// readGems reads a config from path. Unreadable, malformed or invalid
// files are skipped so the next location in the search order is tried.
func readGems(path string) (GemsConfig, bool) {
	cfg := DefaultGemsConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, false
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, false
	}
	if cfg.Validate() != nil {
		return cfg, false
	}
	return cfg, true
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".arcade", "configs", filename)
}
