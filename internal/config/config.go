package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Game     GameConfig     `mapstructure:"game"`
	Database DatabaseConfig `mapstructure:"database"`
}

// ServerConfig configures the HTTP/WebSocket listener.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GameConfig configures run defaults.
type GameConfig struct {
	BoardRows     int `mapstructure:"board_rows"`
	BoardCols     int `mapstructure:"board_cols"`
	StartingStage int `mapstructure:"starting_stage"`
	StartingGold  int `mapstructure:"starting_gold"`
	// Seed fixes battle randomness when non-zero; zero derives seeds from
	// the clock.
	Seed int64 `mapstructure:"seed"`
}

// DatabaseConfig configures the optional run-statistics store. An empty DSN
// disables it.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// Load reads configuration from the given YAML file, applying defaults and
// GRIDFALL_* environment overrides. A missing file is fine; defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("game.board_rows", 5)
	v.SetDefault("game.board_cols", 5)
	v.SetDefault("game.starting_stage", 1)
	v.SetDefault("game.starting_gold", 0)
	v.SetDefault("game.seed", 0)
	v.SetDefault("database.dsn", "")

	v.SetEnvPrefix("GRIDFALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}
