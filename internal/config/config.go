// Package config loads the server configuration from a YAML file with sane
// defaults, so the binary runs with no file at all during development.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	// Listen is the HTTP listen address, e.g. ":8080".
	Listen string `yaml:"listen"`

	// GraphPath points at the question configuration document.
	GraphPath string `yaml:"graph_path"`

	// Language is the default session language code.
	Language string `yaml:"language"`

	LogLevel string         `yaml:"log_level"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
}

// RedisConfig configures the session store. An empty Addr selects the
// in-memory store instead.
type RedisConfig struct {
	Addr       string   `yaml:"addr"`
	Password   string   `yaml:"password"`
	DB         int      `yaml:"db"`
	SessionTTL Duration `yaml:"session_ttl"`
}

// Duration accepts Go duration strings ("30m", "24h") in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the standard library representation.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// PostgresConfig configures the medicine catalog and report storage. An
// empty DSN disables both.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// OpenAIConfig configures the analysis and translation collaborator. The
// API key itself comes from the OPENAI_API_KEY environment variable, never
// from the file.
type OpenAIConfig struct {
	Model string `yaml:"model"`
}

// Default returns the development configuration.
func Default() Config {
	return Config{
		Listen:    ":8080",
		GraphPath: "data/symptoms.json",
		Language:  "en",
		LogLevel:  "info",
		Redis: RedisConfig{
			SessionTTL: Duration(24 * time.Hour),
		},
	}
}

// Load reads the configuration file at path, overlaying the defaults. A
// missing file is not an error when the default path was requested.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
