// Package daemon manages the questd daemon lifecycle and configuration.
package daemon

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Environment variables read by questd.
const (
	EnvHome           = "QUESTD_HOME"
	EnvEvaluatorKey   = "QUESTD_EVALUATOR_API_KEY"
	EnvEvaluatorModel = "QUESTD_EVALUATOR_MODEL"
)

// Config holds all daemon configuration.
type Config struct {
	API       APIConfig       `toml:"api"`
	Storage   StorageConfig   `toml:"storage"`
	Evaluator EvaluatorConfig `toml:"evaluator"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Logging   LoggingConfig   `toml:"logging"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host string `toml:"host" validate:"required"`
	Port int    `toml:"port" validate:"min=1,max=65535"`
}

// StorageConfig controls where the SQLite database lives.
type StorageConfig struct {
	Dir string `toml:"dir" validate:"required"`
}

// EvaluatorConfig selects the submission evaluator.
type EvaluatorConfig struct {
	Mode     string `toml:"mode" validate:"oneof=stub openai"`
	Endpoint string `toml:"endpoint" validate:"omitempty,url"`
	APIKey   string `toml:"api_key"`
	Model    string `toml:"model"`
	Timeout  string `toml:"timeout"`
}

// TelemetryConfig controls observability endpoints.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level       string `toml:"level" validate:"oneof=debug info warn error"`
	File        string `toml:"file"`
	Development bool   `toml:"development"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	homeDir := questdHome()
	return Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8787,
		},
		Storage: StorageConfig{
			Dir: homeDir,
		},
		Evaluator: EvaluatorConfig{
			Mode:    "stub",
			Timeout: "30s",
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads $QUESTD_HOME/.env and $QUESTD_HOME/config.toml, falling
// back to defaults for anything missing. Environment variables override
// the evaluator credentials from the file.
func LoadConfig() (Config, error) {
	home := questdHome()

	if err := godotenv.Load(filepath.Join(home, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := DefaultConfig()
	path := filepath.Join(home, "config.toml")
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvEvaluatorKey); v != "" {
		cfg.Evaluator.APIKey = v
	}
	if v := os.Getenv(EnvEvaluatorModel); v != "" {
		cfg.Evaluator.Model = v
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and the evaluator timeout.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Evaluator.Timeout != "" {
		if _, err := time.ParseDuration(c.Evaluator.Timeout); err != nil {
			return fmt.Errorf("invalid config: evaluator timeout: %w", err)
		}
	}
	return nil
}

// SaveConfig writes the config to $QUESTD_HOME/config.toml. The API key is
// never written; keep it in .env or the environment.
func SaveConfig(cfg Config) error {
	path := filepath.Join(questdHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	cfg.Evaluator.APIKey = ""
	return toml.NewEncoder(f).Encode(cfg)
}

// questdHome returns the questd data directory.
func questdHome() string {
	if env := os.Getenv(EnvHome); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".questd")
}

// QuestdHome is exported for use by other packages.
func QuestdHome() string {
	return questdHome()
}

// parseDuration parses a duration string, returning a fallback on error.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
