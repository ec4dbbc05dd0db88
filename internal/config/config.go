package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel  string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPAddr  string    `yaml:"http-addr" env:"HTTP_ADDR" env-default:":8080"`
	Redis     Redis     `yaml:"redis"`
	Telemetry Telemetry `yaml:"telemetry"`
	Game      Game      `yaml:"game"`
}

type Redis struct {
	Enabled    bool          `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Addr       string        `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password   string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB         int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	SessionTTL time.Duration `yaml:"session-ttl" env:"REDIS_SESSION_TTL" env-default:"1h"`
}

type Telemetry struct {
	Enabled     bool   `yaml:"enabled" env:"OTEL_ENABLED" env-default:"false"`
	Endpoint    string `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:"otel-collector:4317"`
	ServiceName string `yaml:"service-name" env:"OTEL_SERVICE_NAME" env-default:"tic-tac-toe"`
}

type Game struct {
	ComputerMoveDelay time.Duration `yaml:"computer-move-delay" env:"GAME_COMPUTER_MOVE_DELAY" env-default:"500ms"`
	// IdleTimeout expires sessions kept in memory. Redis uses Redis.SessionTTL.
	IdleTimeout       time.Duration `yaml:"idle-timeout" env:"GAME_IDLE_TIMEOUT" env-default:"30m"`
	SweepInterval     time.Duration `yaml:"sweep-interval" env:"GAME_SWEEP_INTERVAL" env-default:"1m"`
	// Seed fixes the computer's random fallback. 0 seeds from the runtime.
	Seed uint64 `yaml:"seed" env:"GAME_SEED" env-default:"0"`
}

// Load reads the YAML file at path, if one is given, then applies environment
// overrides and defaults.
func Load(path string) (*Config, error) {
	config := &Config{}

	if path == "" {
		if err := cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to read config from environment: %w", err)
		}
		return config, nil
	}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}
	return config, nil
}

// MustLoad is Load that panics on error.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}
	return config
}

// SlogLevel parses LogLevel, falling back to info.
func (that *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(that.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
