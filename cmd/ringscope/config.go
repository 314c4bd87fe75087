package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	UDPAddr   string        `yaml:"udp_addr"`
	HTTPAddr  string        `yaml:"http_addr"`
	TFTPAddr  string        `yaml:"tftp_addr"`
	Capacity  uint16        `yaml:"capacity"`
	LogLevel  string        `yaml:"log_level"`
	Heartbeat time.Duration `yaml:"heartbeat"`
}

func DefaultConfig() Config {
	return Config{
		UDPAddr:   ":5140",
		HTTPAddr:  ":8080",
		TFTPAddr:  "",
		Capacity:  50,
		LogLevel:  "info",
		Heartbeat: 15 * time.Second,
	}
}

// ParseConfig builds the configuration from defaults, then the optional YAML
// file named by -config, then any flags given explicitly on the command line.
func ParseConfig(args []string, output io.Writer) (Config, error) {
	cfg := DefaultConfig()

	fs := flag.NewFlagSet("ringscope", flag.ContinueOnError)
	fs.SetOutput(output)
	path := fs.String("config", "", "YAML configuration file")
	udpAddr := fs.String("udp-addr", cfg.UDPAddr, "UDP address to receive records on, empty to disable")
	httpAddr := fs.String("http-addr", cfg.HTTPAddr, "HTTP address for the inspection API")
	tftpAddr := fs.String("tftp-addr", cfg.TFTPAddr, "UDP address for read-only TFTP snapshots, empty to disable")
	capacity := fs.Uint("capacity", uint(cfg.Capacity), "records kept per stream")
	logLevel := fs.String("log-level", cfg.LogLevel, "debug, info, warn or error")
	heartbeat := fs.Duration("heartbeat", cfg.Heartbeat, "interval between SSE heartbeats and WebSocket pings")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if *path != "" {
		if err := cfg.loadFile(*path); err != nil {
			return cfg, err
		}
	}

	var capErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "udp-addr":
			cfg.UDPAddr = *udpAddr
		case "http-addr":
			cfg.HTTPAddr = *httpAddr
		case "tftp-addr":
			cfg.TFTPAddr = *tftpAddr
		case "capacity":
			if *capacity > math.MaxUint16 {
				capErr = fmt.Errorf("capacity %d exceeds %d", *capacity, math.MaxUint16)
				return
			}
			cfg.Capacity = uint16(*capacity)
		case "log-level":
			cfg.LogLevel = *logLevel
		case "heartbeat":
			cfg.Heartbeat = *heartbeat
		}
	})
	if capErr != nil {
		return cfg, capErr
	}

	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	if c.Capacity == 0 {
		return errors.New("capacity must be > 0")
	}
	if c.HTTPAddr == "" {
		return errors.New("http address is required")
	}
	if c.Heartbeat <= 0 {
		return fmt.Errorf("heartbeat must be positive, got %s", c.Heartbeat)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

func (c Config) Level() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
}
