// Package config manages smcecho configuration using koanf/v2.
//
// Values are layered: built-in defaults, an optional YAML file,
// SMCECHO_* environment variables, then command-line flags the user
// actually set.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/dantte-lp/smcecho/internal/sockaddr"
)

// -------------------------------------------------------------------------
// Configuration Structures
// -------------------------------------------------------------------------

// Config holds the complete smcecho configuration.
type Config struct {
	// Family is the transport family: "smc" or "tcp".
	Family  string        `koanf:"family"`
	Server  ServerConfig  `koanf:"server"`
	Client  ClientConfig  `koanf:"client"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// ServerConfig holds the echo server endpoint.
type ServerConfig struct {
	// Address is the IPv4 or IPv6 literal to bind. Empty means 0.0.0.0.
	Address string `koanf:"address"`

	// Port is the decimal port to bind. Empty means 50000.
	Port string `koanf:"port"`

	// BufSize is the echo read size in bytes.
	BufSize int `koanf:"bufsize"`
}

// ClientConfig holds the echo client endpoint and payload.
type ClientConfig struct {
	// Address is the IPv4 or IPv6 literal to connect to. Empty means
	// 127.0.0.1.
	Address string `koanf:"address"`

	// Port is the decimal port to connect to. Empty means 50000.
	Port string `koanf:"port"`

	// Payload is the message sent once.
	Payload string `koanf:"payload"`

	// BufSize bounds the reply read.
	BufSize int `koanf:"bufsize"`
}

// LogConfig holds the logging configuration.
type LogConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `koanf:"level"`
	// Format is the log output format: "json" or "text".
	Format string `koanf:"format"`
}

// MetricsConfig holds the Prometheus metrics endpoint configuration.
type MetricsConfig struct {
	// Addr is the HTTP listen address (e.g., ":9100"). Empty disables
	// the endpoint.
	Addr string `koanf:"addr"`
	// Path is the URL path for the metrics endpoint (e.g., "/metrics").
	Path string `koanf:"path"`
}

// -------------------------------------------------------------------------
// Defaults
// -------------------------------------------------------------------------

// DefaultConfig returns a Config populated with defaults. Addresses and
// ports are left empty so the address builder substitutes its role
// defaults.
func DefaultConfig() *Config {
	return &Config{
		Family: "smc",
		Server: ServerConfig{
			BufSize: 1024,
		},
		Client: ClientConfig{
			Payload: "Hello, world",
			BufSize: 1024,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Path: "/metrics",
		},
	}
}

// -------------------------------------------------------------------------
// Loader
// -------------------------------------------------------------------------

// envPrefix is the environment variable prefix for smcecho configuration.
// Variables are named SMCECHO_<section>_<key>, e.g., SMCECHO_SERVER_PORT.
const envPrefix = "SMCECHO_"

// FlagKeys maps command-line flag names to configuration keys, e.g.
// "log-level" -> "log.level".
type FlagKeys map[string]string

// Load builds the configuration. path may be empty, in which case no
// file is read. Flags in keys are applied last, and only if the user
// changed them on the command line; flags may be nil.
//
// Environment variable mapping:
//
//	SMCECHO_FAMILY          -> family
//	SMCECHO_SERVER_ADDRESS  -> server.address
//	SMCECHO_SERVER_PORT     -> server.port
//	SMCECHO_CLIENT_PAYLOAD  -> client.payload
//	SMCECHO_LOG_LEVEL       -> log.level
//	SMCECHO_METRICS_ADDR    -> metrics.addr
func Load(path string, flags *pflag.FlagSet, keys FlagKeys) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k, DefaultConfig()); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config from %s: %w", path, err)
		}
	}

	// SMCECHO_SERVER_PORT -> server.port (strip prefix, lowercase, _ -> .).
	if err := k.Load(env.Provider(envPrefix, ".", envKeyMapper), nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	if err := loadFlags(k, flags, keys); err != nil {
		return nil, fmt.Errorf("load flag overrides: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// envKeyMapper transforms SMCECHO_SERVER_PORT -> server.port.
func envKeyMapper(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "_", ".")
}

// loadDefaults sets the default config into koanf as the base layer.
func loadDefaults(k *koanf.Koanf, defaults *Config) error {
	defaultMap := map[string]any{
		"family":         defaults.Family,
		"server.address": defaults.Server.Address,
		"server.port":    defaults.Server.Port,
		"server.bufsize": defaults.Server.BufSize,
		"client.address": defaults.Client.Address,
		"client.port":    defaults.Client.Port,
		"client.payload": defaults.Client.Payload,
		"client.bufsize": defaults.Client.BufSize,
		"log.level":      defaults.Log.Level,
		"log.format":     defaults.Log.Format,
		"metrics.addr":   defaults.Metrics.Addr,
		"metrics.path":   defaults.Metrics.Path,
	}

	for key, val := range defaultMap {
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

// loadFlags overlays the flags the user set explicitly.
func loadFlags(k *koanf.Koanf, flags *pflag.FlagSet, keys FlagKeys) error {
	if flags == nil {
		return nil
	}

	var errs []error
	flags.Visit(func(f *pflag.Flag) {
		key, ok := keys[f.Name]
		if !ok {
			return
		}
		if err := k.Set(key, f.Value.String()); err != nil {
			errs = append(errs, fmt.Errorf("set --%s: %w", f.Name, err))
		}
	})

	return errors.Join(errs...)
}

// -------------------------------------------------------------------------
// Validation
// -------------------------------------------------------------------------

// Validation errors.
var (
	// ErrInvalidFamily indicates family is neither "smc" nor "tcp".
	ErrInvalidFamily = errors.New("family must be smc or tcp")

	// ErrInvalidBufSize indicates a buffer size is not positive.
	ErrInvalidBufSize = errors.New("bufsize must be > 0")

	// ErrInvalidLogFormat indicates log.format is neither "json" nor "text".
	ErrInvalidLogFormat = errors.New("log.format must be json or text")

	// ErrInvalidPort indicates a port is not a decimal in 0..65535.
	ErrInvalidPort = errors.New("port must be a decimal in 0..65535")

	// ErrInvalidMetricsPath indicates metrics.path does not start with "/".
	ErrInvalidMetricsPath = errors.New("metrics.path must start with /")
)

// ValidFamilies lists the recognized family strings.
var ValidFamilies = map[string]bool{
	"smc": true,
	"tcp": true,
}

// Validate checks the configuration for logical errors.
// Returns the first validation error encountered.
func Validate(cfg *Config) error {
	if !ValidFamilies[strings.ToLower(cfg.Family)] {
		return fmt.Errorf("family %q: %w", cfg.Family, ErrInvalidFamily)
	}

	if cfg.Server.BufSize <= 0 {
		return fmt.Errorf("server.bufsize %d: %w", cfg.Server.BufSize, ErrInvalidBufSize)
	}

	if cfg.Client.BufSize <= 0 {
		return fmt.Errorf("client.bufsize %d: %w", cfg.Client.BufSize, ErrInvalidBufSize)
	}

	if err := validatePort("server.port", cfg.Server.Port); err != nil {
		return err
	}

	if err := validatePort("client.port", cfg.Client.Port); err != nil {
		return err
	}

	switch strings.ToLower(cfg.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format %q: %w", cfg.Log.Format, ErrInvalidLogFormat)
	}

	if cfg.Metrics.Addr != "" && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path %q: %w", cfg.Metrics.Path, ErrInvalidMetricsPath)
	}

	return nil
}

func validatePort(key, port string) error {
	if port == "" {
		return nil
	}
	if _, err := sockaddr.ParsePort(port); err != nil {
		return fmt.Errorf("%s %q: %w", key, port, ErrInvalidPort)
	}
	return nil
}

// -------------------------------------------------------------------------
// Log Level Parsing
// -------------------------------------------------------------------------

// ParseLogLevel maps a configuration log level string to the corresponding
// slog.Level. Unknown values default to slog.LevelInfo.
//
// Recognized values: "debug", "info", "warn", "error" (case-insensitive).
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
