package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".jobguard"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile loads a YAML configuration file.
// Phrases with an unknown risk level are rejected here, since a config file
// is under the user's control and a typo should not pass silently.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	cf := NewFile()
	if err := yaml.Unmarshal(data, cf); err != nil {
		return nil, err
	}
	if cf.Sites == nil {
		cf.Sites = make(map[string]SiteConfig)
	}

	if err := validatePhrases("defaults", cf.Defaults); err != nil {
		return nil, err
	}
	for host, site := range cf.Sites {
		if err := validatePhrases(host, site); err != nil {
			return nil, err
		}
	}

	return cf, nil
}

func validatePhrases(scope string, site SiteConfig) error {
	for i, p := range site.ExtraPhrases {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%s: extraPhrases[%d]: %w", scope, i, err)
		}
	}
	return nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. .jobguard in the current directory
// 3. .jobguard in the user's home directory
// 4. config.yaml in the XDG config directory
//
// Returns an empty string if nothing was found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
