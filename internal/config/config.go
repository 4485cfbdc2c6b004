// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is the root configuration structure.
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Library       LibraryConfig       `toml:"library"`
	Playback      PlaybackConfig      `toml:"playback"`
	Captions      CaptionsConfig      `toml:"captions"`
	Transcription TranscriptionConfig `toml:"transcription"`
	Events        EventsConfig        `toml:"events"`
}

type ServerConfig struct {
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	LogLevel  string `toml:"log_level"`
	PublicURL string `toml:"public_url"` // base for media URLs; derived from host:port when empty
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LibraryConfig struct {
	Roots     []string `toml:"roots"`
	AutoGrant bool     `toml:"auto_grant"` // grant file access without prompting
}

// PlaybackConfig mirrors the player settings surface.
type PlaybackConfig struct {
	ResumeOnReopen      bool     `toml:"resume_on_reopen"`
	CompletionThreshold int      `toml:"completion_threshold"` // percent
	KeyboardShortcuts   bool     `toml:"keyboard_shortcuts"`
	AutoAdvance         bool     `toml:"auto_advance"`
	ProgressInterval    Duration `toml:"progress_interval"`
}

type CaptionsConfig struct {
	Enabled   bool   `toml:"enabled"`
	ExportDir string `toml:"export_dir"`
}

type TranscriptionConfig struct {
	Enabled   bool     `toml:"enabled"`
	Command   string   `toml:"command"`
	Args      []string `toml:"args"`
	QueueSize int      `toml:"queue_size"`
}

type EventsConfig struct {
	Retention Duration `toml:"retention"`
}

// Duration is a time.Duration written as a Go duration string ("5s").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "127.0.0.1",
			Port:     8686,
			LogLevel: "info",
		},
		Database: DatabaseConfig{Path: "./data/reprise.db"},
		Playback: PlaybackConfig{
			ResumeOnReopen:      true,
			CompletionThreshold: 95,
			KeyboardShortcuts:   true,
			AutoAdvance:         true,
			ProgressInterval:    Duration{5 * time.Second},
		},
		Captions:      CaptionsConfig{Enabled: true},
		Transcription: TranscriptionConfig{QueueSize: 4},
		Events:        EventsConfig{Retention: Duration{30 * 24 * time.Hour}},
	}
}

// Load reads, parses and validates the configuration file.
func Load(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}

	cfgErr := &ConfigError{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cfgErr.HasErrors() {
		return nil, cfgErr
	}
	return cfg, nil
}

// LoadWithoutValidation parses the configuration without validating it.
// Unresolved environment variables are left in place.
func LoadWithoutValidation(path string) (*Config, error) {
	cfg, _, err := load(path)
	return cfg, err
}

func load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	if err := loadDotEnv(filepath.Dir(path)); err != nil {
		return nil, nil, err
	}

	content, missing := substituteEnvVars(string(data))

	cfg := Default()
	if _, err := toml.Decode(content, cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Server.PublicURL == "" {
		cfg.Server.PublicURL = fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	cfg.Server.PublicURL = strings.TrimRight(cfg.Server.PublicURL, "/")

	return cfg, missing, nil
}

// loadDotEnv reads a .env file next to the config. Variables already set in
// the environment win.
func loadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::([-?])([^}]*))?\}`)

// substituteEnvVars replaces environment references and reports the ones
// that could not be resolved. Unresolved references are left unchanged.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		name, op, arg := m[1], m[2], m[3]
		value, ok := os.LookupEnv(name)

		switch op {
		case "-":
			if !ok || value == "" {
				return arg
			}
			return value
		case "?":
			if !ok || value == "" {
				missing = append(missing, fmt.Sprintf("%s: %s", name, arg))
				return match
			}
			return value
		default:
			if !ok {
				missing = append(missing, name)
				return match
			}
			return value
		}
	})
	return out, missing
}
