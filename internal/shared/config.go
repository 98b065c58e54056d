package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database  DatabaseConfig  `toml:"database"`
	LRCLib    LRCLibConfig    `toml:"lrclib"`
	Player    PlayerConfig    `toml:"player"`
	Challenge ChallengeConfig `toml:"challenge"`
	Server    ServerConfig    `toml:"server"`
	Library   LibraryConfig   `toml:"library"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LRCLibConfig contains settings for the remote lyrics database.
type LRCLibConfig struct {
	BaseURL           string  `toml:"base_url"`
	UserAgent         string  `toml:"user_agent"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// Timeout returns the per-request timeout. Zero means no timeout.
func (c LRCLibConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PlayerConfig contains playback and state broadcast settings.
type PlayerConfig struct {
	BroadcastIntervalMS int     `toml:"broadcast_interval_ms"`
	SeekStepSeconds     float64 `toml:"seek_step_seconds"`
}

// BroadcastInterval returns the state broadcast period.
func (c PlayerConfig) BroadcastInterval() time.Duration {
	return time.Duration(c.BroadcastIntervalMS) * time.Millisecond
}

// ChallengeConfig contains proof-of-work solver settings.
type ChallengeConfig struct {
	Workers         int `toml:"workers"`
	ChunkSize       int `toml:"chunk_size"`
	DeadlineSeconds int `toml:"deadline_seconds"`
}

// Deadline returns the solver deadline. Zero means the search is unbounded.
func (c ChallengeConfig) Deadline() time.Duration {
	return time.Duration(c.DeadlineSeconds) * time.Second
}

// ServerConfig contains settings for the websocket event server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port for [net/http.Server].
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LibraryConfig contains lyrics persistence settings.
type LibraryConfig struct {
	WriteSidecarFiles   bool `toml:"write_sidecar_files"`
	SkipNotNeededTracks bool `toml:"skip_not_needed_tracks"`
}

// Validate reports [ErrInvalidConfig] for values the application cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Database.Path == "":
		return fmt.Errorf("%w: database.path is required", ErrInvalidConfig)
	case c.LRCLib.BaseURL == "":
		return fmt.Errorf("%w: lrclib.base_url is required", ErrInvalidConfig)
	case c.LRCLib.TimeoutSeconds < 0:
		return fmt.Errorf("%w: lrclib.timeout_seconds must not be negative", ErrInvalidConfig)
	case c.Player.BroadcastIntervalMS <= 0:
		return fmt.Errorf("%w: player.broadcast_interval_ms must be positive", ErrInvalidConfig)
	case c.Challenge.Workers < 0 || c.Challenge.ChunkSize < 0 || c.Challenge.DeadlineSeconds < 0:
		return fmt.Errorf("%w: challenge settings must not be negative", ErrInvalidConfig)
	case c.Server.Port < 0 || c.Server.Port > 65535:
		return fmt.Errorf("%w: server.port out of range", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
