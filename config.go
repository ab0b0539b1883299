package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DefaultConfigFile = "todo.toml"
	DefaultAddr       = ":3000"
	DefaultSQLitePath = "todos.db"
)

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Log       LogConfig       `toml:"log"`
}

type ServerConfig struct {
	Addr           string   `toml:"addr" validate:"required"`
	CORSOrigin     string   `toml:"cors_origin"`
	RequestTimeout Duration `toml:"request_timeout"`
}

type DatabaseConfig struct {
	Driver         string `toml:"driver" validate:"oneof=postgres sqlite memory"`
	Host           string `toml:"host" validate:"required_if=Driver postgres"`
	Port           int    `toml:"port" validate:"required_if=Driver postgres,gte=0,lte=65535"`
	User           string `toml:"user"`
	Password       string `toml:"password"`
	Name           string `toml:"name" validate:"required_if=Driver postgres"`
	SQLitePath     string `toml:"sqlite_path" validate:"required_if=Driver sqlite"`
	Synchronize    bool   `toml:"synchronize"`
	ConnectRetries int    `toml:"connect_retries" validate:"gte=1,lte=10"`
}

type TelemetryConfig struct {
	Enabled         bool     `toml:"enabled"`
	ServiceName     string   `toml:"service_name" validate:"required_if=Enabled true"`
	Environment     string   `toml:"environment"`
	MetricsInterval Duration `toml:"metrics_interval"`
}

type LogConfig struct {
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
	Format string `toml:"format" validate:"oneof=text json logfmt"`
}

// Duration lets TOML files spell durations as "30s".
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

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           DefaultAddr,
			CORSOrigin:     "*",
			RequestTimeout: Duration{10 * time.Second},
		},
		Database: DatabaseConfig{
			Driver:         "postgres",
			Host:           "localhost",
			Port:           5432,
			User:           "postgres",
			Name:           "toDo_db",
			SQLitePath:     DefaultSQLitePath,
			Synchronize:    true,
			ConnectRetries: 3,
		},
		Telemetry: TelemetryConfig{
			ServiceName:     "gin-todo",
			Environment:     "development",
			MetricsInterval: Duration{30 * time.Second},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig layers, lowest first: defaults, the TOML file, a .env file next
// to the working directory, then process environment. A missing config file
// is only an error when the caller asked for it explicitly.
func LoadConfig(path string, explicit bool) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if !errors.Is(err, fs.ErrNotExist) || explicit {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setString("PORT", &cfg.Server.Addr)
	if p := cfg.Server.Addr; p != "" && p[0] != ':' && isDigits(p) {
		cfg.Server.Addr = ":" + p
	}
	setString("DB_DRIVER", &cfg.Database.Driver)
	setString("DB_HOST", &cfg.Database.Host)
	setString("DB_USER", &cfg.Database.User)
	setString("DB_PASS", &cfg.Database.Password)
	setString("DB_NAME", &cfg.Database.Name)
	setString("SQLITE_PATH", &cfg.Database.SQLitePath)
	setString("LOG_LEVEL", &cfg.Log.Level)

	if v := os.Getenv("DB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DB_PORT: %w", err)
		}
		cfg.Database.Port = port
	}
	if v := os.Getenv("OTEL_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("OTEL_ENABLED: %w", err)
		}
		cfg.Telemetry.Enabled = enabled
	}
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
