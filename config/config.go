// Package config loads and validates the server configuration.
//
// Values are layered: defaults, then an optional JSON file named by
// SEQUENCE_CONFIG, then SEQUENCE_* environment variables, then a positional
// port argument on the command line.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pterm/pterm"

	"github.com/luca-patrignani/sequence/discovery"
)

const (
	DefaultPort = 9999
	MinPort     = 2048
	MaxPort     = 9999
)

// Environment variables read by Load.
const (
	EnvFile          = "SEQUENCE_CONFIG"
	EnvHost          = "SEQUENCE_HOST"
	EnvPort          = "SEQUENCE_PORT"
	EnvWebSocketAddr = "SEQUENCE_WS_ADDR"
	EnvTLS           = "SEQUENCE_TLS"
	EnvAnnounce      = "SEQUENCE_ANNOUNCE"
	EnvAnnouncePort  = "SEQUENCE_ANNOUNCE_PORT"
	EnvName          = "SEQUENCE_NAME"
	EnvLogLevel      = "SEQUENCE_LOG_LEVEL"
)

var ErrUsage = errors.New("usage: sequence-server [port]")

type Config struct {
	Host          string `json:"host" validate:"omitempty,hostname|ip"`
	Port          int    `json:"port" validate:"min=2048,max=9999"`
	WebSocketAddr string `json:"websocket_addr" validate:"omitempty,hostname_port"`
	TLS           bool   `json:"tls"`
	Announce      bool   `json:"announce"`
	AnnouncePort  uint16 `json:"announce_port" validate:"required_if=Announce true"`
	Name          string `json:"name" validate:"max=64"`
	LogLevel      string `json:"log_level" validate:"oneof=trace debug info warn error"`
}

func Default() Config {
	return Config{
		Port:         DefaultPort,
		Announce:     true,
		AnnouncePort: discovery.DefaultPort,
		Name:         "Sequence",
		LogLevel:     "info",
	}
}

// Addr is the TCP address the server listens on.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c Config) Validate() error {
	return validate.Struct(c)
}

// Load builds the configuration from args (without the program name) and the
// environment read through getenv.
func Load(args []string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if path := getenv(EnvFile); path != "" {
		if err := cfg.readFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.readEnv(getenv); err != nil {
		return Config{}, err
	}
	switch len(args) {
	case 0:
	case 1:
		port, err := strconv.Atoi(args[0])
		if err != nil {
			return Config{}, fmt.Errorf("%w: invalid port %q", ErrUsage, args[0])
		}
		cfg.Port = port
	default:
		return Config{}, ErrUsage
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, c); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

func (c *Config) readEnv(getenv func(string) string) error {
	if v := getenv(EnvHost); v != "" {
		c.Host = v
	}
	if v := getenv(EnvWebSocketAddr); v != "" {
		c.WebSocketAddr = v
	}
	if v := getenv(EnvName); v != "" {
		c.Name = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		c.Port = port
	}
	if v := getenv(EnvAnnouncePort); v != "" {
		port, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvAnnouncePort, err)
		}
		c.AnnouncePort = uint16(port)
	}
	for key, dst := range map[string]*bool{EnvTLS: &c.TLS, EnvAnnounce: &c.Announce} {
		v := getenv(key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
	}
	return nil
}

// PtermLevel maps LogLevel onto the console logger levels.
func (c Config) PtermLevel() pterm.LogLevel {
	switch c.LogLevel {
	case "trace":
		return pterm.LogLevelTrace
	case "debug":
		return pterm.LogLevelDebug
	case "warn":
		return pterm.LogLevelWarn
	case "error":
		return pterm.LogLevelError
	default:
		return pterm.LogLevelInfo
	}
}
