// Package config loads game server configuration from an optional TOML file
// with environment variable overrides. File values override built-in
// defaults; environment variables override both.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/playforge/arena/internal/validation"
)

// Config is the resolved game server configuration.
type Config struct {
	ListenAddr     string
	ServerName     string
	WorkerPoolSize int
	MaxConnections int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration

	RedisAddr   string
	NATSURL     string
	PostgresDSN string // empty disables the audit store
	MetricsAddr string

	Limits validation.Limits
}

// fileConfig mirrors the TOML layout. Durations are strings so the file can
// say "15s" rather than nanosecond counts.
type fileConfig struct {
	Server struct {
		ListenAddr     string `toml:"listen_addr"`
		Name           string `toml:"name"`
		WorkerPoolSize int    `toml:"worker_pool_size"`
		MaxConnections int    `toml:"max_connections"`
		ReadTimeout    string `toml:"read_timeout"`
		WriteTimeout   string `toml:"write_timeout"`
	} `toml:"server"`
	Redis struct {
		Addr string `toml:"addr"`
	} `toml:"redis"`
	NATS struct {
		URL string `toml:"url"`
	} `toml:"nats"`
	Postgres struct {
		DSN string `toml:"dsn"`
	} `toml:"postgres"`
	Metrics struct {
		Addr string `toml:"addr"`
	} `toml:"metrics"`
	Validation struct {
		MaxStringLength   int `toml:"max_string_length"`
		MaxMessageBytes   int `toml:"max_message_bytes"`
		MaxGameStateBytes int `toml:"max_game_state_bytes"`
	} `toml:"validation"`
}

// Default returns the built-in configuration.
func Default() Config {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "gameserver-1"
	}
	return Config{
		ListenAddr:     ":8080",
		ServerName:     hostname,
		WorkerPoolSize: 256,
		MaxConnections: 100000,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		RedisAddr:      "localhost:6379",
		NATSURL:        "nats://localhost:4222",
		PostgresDSN:    "",
		MetricsAddr:    ":9090",
		Limits:         validation.DefaultLimits(),
	}
}

// Load builds the configuration from defaults, then the TOML file at path
// (skipped if path is empty), then environment variable overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}

	if meta.IsDefined("server", "listen_addr") {
		cfg.ListenAddr = raw.Server.ListenAddr
	}
	if meta.IsDefined("server", "name") {
		cfg.ServerName = raw.Server.Name
	}
	if meta.IsDefined("server", "worker_pool_size") {
		cfg.WorkerPoolSize = raw.Server.WorkerPoolSize
	}
	if meta.IsDefined("server", "max_connections") {
		cfg.MaxConnections = raw.Server.MaxConnections
	}
	if meta.IsDefined("server", "read_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Server.ReadTimeout))
		if err != nil {
			return fmt.Errorf("config: parse read_timeout: %w", err)
		}
		cfg.ReadTimeout = d
	}
	if meta.IsDefined("server", "write_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Server.WriteTimeout))
		if err != nil {
			return fmt.Errorf("config: parse write_timeout: %w", err)
		}
		cfg.WriteTimeout = d
	}

	if meta.IsDefined("redis", "addr") {
		cfg.RedisAddr = raw.Redis.Addr
	}
	if meta.IsDefined("nats", "url") {
		cfg.NATSURL = raw.NATS.URL
	}
	if meta.IsDefined("postgres", "dsn") {
		cfg.PostgresDSN = raw.Postgres.DSN
	}
	if meta.IsDefined("metrics", "addr") {
		cfg.MetricsAddr = raw.Metrics.Addr
	}

	if meta.IsDefined("validation", "max_string_length") {
		cfg.Limits.MaxStringLength = raw.Validation.MaxStringLength
	}
	if meta.IsDefined("validation", "max_message_bytes") {
		cfg.Limits.MaxMessageBytes = raw.Validation.MaxMessageBytes
	}
	if meta.IsDefined("validation", "max_game_state_bytes") {
		cfg.Limits.MaxGameStateBytes = raw.Validation.MaxGameStateBytes
	}

	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("SERVER_NAME"); v != "" {
		cfg.ServerName = v
	}
	if v := os.Getenv("WORKER_POOL_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("config: invalid WORKER_POOL_SIZE %q", v)
		}
		cfg.WorkerPoolSize = n
	}
	if v := os.Getenv("MAX_CONNECTIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("config: invalid MAX_CONNECTIONS %q", v)
		}
		cfg.MaxConnections = n
	}
	if v := os.Getenv("READ_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid READ_TIMEOUT %q", v)
		}
		cfg.ReadTimeout = d
	}
	if v := os.Getenv("WRITE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid WRITE_TIMEOUT %q", v)
		}
		cfg.WriteTimeout = d
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATSURL = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	return nil
}

// Validate checks that the resolved configuration is usable.
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return fmt.Errorf("config: missing listen addr")
	}
	if strings.TrimSpace(cfg.ServerName) == "" {
		return fmt.Errorf("config: missing server name")
	}
	if cfg.WorkerPoolSize <= 0 {
		return fmt.Errorf("config: worker_pool_size must be positive")
	}
	if cfg.MaxConnections <= 0 {
		return fmt.Errorf("config: max_connections must be positive")
	}
	if cfg.Limits.MaxStringLength <= 0 || cfg.Limits.MaxMessageBytes <= 0 || cfg.Limits.MaxGameStateBytes <= 0 {
		return fmt.Errorf("config: validation limits must be positive")
	}
	return nil
}
