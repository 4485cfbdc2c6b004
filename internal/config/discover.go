package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvPath names the environment variable that overrides discovery.
const EnvPath = "REPRISE_CONFIG"

// DefaultPath returns the XDG-compliant default config path.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "./config.toml"
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "reprise", "config.toml")
}

// SearchPaths lists the locations Discover checks after REPRISE_CONFIG.
func SearchPaths() []string {
	return []string{
		"./config.toml",
		DefaultPath(),
		"/etc/reprise/config.toml",
	}
}

// Discover finds the config file. An explicit path wins; otherwise
// REPRISE_CONFIG, then each of SearchPaths in order.
func Discover(explicit ...string) (string, error) {
	for _, p := range explicit {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("config %s: %w", p, err)
		}
		return p, nil
	}

	if envPath := os.Getenv(EnvPath); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("%s=%s: %w", EnvPath, envPath, err)
		}
		return envPath, nil
	}

	paths := SearchPaths()
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("config not found, checked: %s", strings.Join(paths, ", "))
}
