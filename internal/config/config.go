// Package config loads server configuration.
//
// Values start from Default(), are overlaid by an optional YAML file (given
// with --config or the MOSAIC_CONFIG environment variable) and finally by
// explicitly set command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "MOSAIC_CONFIG"

type Config struct {
	Server ServerConfig `yaml:"server"`
	Room   RoomConfig   `yaml:"room"`
	Log    LogConfig    `yaml:"log"`
	Ledger LedgerConfig `yaml:"ledger"`
}

type ServerConfig struct {
	Addr             string        `yaml:"addr"`
	WSPath           string        `yaml:"ws_path"`
	ReadBufferSize   int           `yaml:"read_buffer_size"`
	WriteBufferSize  int           `yaml:"write_buffer_size"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	PongTimeout      time.Duration `yaml:"pong_timeout"`
	MaxMessageSize   int64         `yaml:"max_message_size"`

	// OutboxSize is how many messages may queue for one connection before
	// it is considered too slow and dropped.
	OutboxSize int `yaml:"outbox_size"`
}

type RoomConfig struct {
	ID           string   `yaml:"id"`
	CanvasWidth  float64  `yaml:"canvas_width"`
	CanvasHeight float64  `yaml:"canvas_height"`
	IdentifyMode bool     `yaml:"identify_mode"`
	Palette      []string `yaml:"palette"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LedgerConfig — optional PostgreSQL tile session journal; empty DSN disables it
type LedgerConfig struct {
	DSN     string        `yaml:"dsn"`
	Timeout time.Duration `yaml:"timeout"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:             ":3000",
			WSPath:           "/ws",
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: 5 * time.Second,
			WriteTimeout:     10 * time.Second,
			PongTimeout:      60 * time.Second,
			MaxMessageSize:   64 * 1024,
			OutboxSize:       64,
		},
		Room: RoomConfig{
			ID:           "default",
			CanvasWidth:  1920,
			CanvasHeight: 1080,
			IdentifyMode: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Ledger: LedgerConfig{
			Timeout: 3 * time.Second,
		},
	}
}

// Load builds the configuration from args (without the program name).
// pflag.ErrHelp is returned unchanged when -h/--help is given.
func Load(args []string) (*Config, error) {
	cfg := Default()

	fs := pflag.NewFlagSet("mosaic-wall", pflag.ContinueOnError)
	configPath := fs.String("config", os.Getenv(EnvConfigPath), "path to YAML config file")
	addr := fs.String("addr", cfg.Server.Addr, "HTTP listen address")
	wsPath := fs.String("ws-path", cfg.Server.WSPath, "WebSocket endpoint path")
	roomID := fs.String("room", cfg.Room.ID, "shared room id")
	logLevel := fs.String("log-level", cfg.Log.Level, "log level: debug, info, warn, error")
	logFormat := fs.String("log-format", cfg.Log.Format, "log format: text or json")
	ledgerDSN := fs.String("ledger-dsn", cfg.Ledger.DSN, "PostgreSQL DSN for the tile session ledger (empty disables it)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *configPath != "" {
		if err := cfg.loadFile(*configPath); err != nil {
			return nil, err
		}
	}

	// flags given explicitly win over the file
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Server.Addr = *addr
		case "ws-path":
			cfg.Server.WSPath = *wsPath
		case "room":
			cfg.Room.ID = *roomID
		case "log-level":
			cfg.Log.Level = *logLevel
		case "log-format":
			cfg.Log.Format = *logFormat
		case "ledger-dsn":
			cfg.Ledger.DSN = *ledgerDSN
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	return nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server.addr is required")
	}
	if !strings.HasPrefix(c.Server.WSPath, "/") {
		return fmt.Errorf("server.ws_path %q must start with /", c.Server.WSPath)
	}
	if c.Server.OutboxSize <= 0 {
		return errors.New("server.outbox_size must be positive")
	}
	if c.Server.PongTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return errors.New("server.pong_timeout and server.write_timeout must be positive")
	}
	if strings.TrimSpace(c.Room.ID) == "" {
		return errors.New("room.id is required")
	}
	if c.Room.CanvasWidth <= 0 || c.Room.CanvasHeight <= 0 {
		return errors.New("room.canvas_width and room.canvas_height must be positive")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format %q must be text or json", c.Log.Format)
	}

	return nil
}

// SlogLevel — parsed log.level
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level %q: %w", l.Level, err)
	}

	return level, nil
}

// NewLogger — slog logger writing to stderr in the configured format
func (l LogConfig) NewLogger() *slog.Logger {
	level, err := l.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}

	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
