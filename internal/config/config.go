package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/iw2rmb/reflow/buffer"
	"github.com/iw2rmb/reflow/format"
	"github.com/iw2rmb/reflow/recent"
)

// DefaultFile is read when no configuration path is given and it exists in
// the working directory.
const DefaultFile = "reflow.yaml"

// Environment variables overriding the file.
const (
	EnvEngine     = "REFLOW_ENGINE"
	EnvTimeout    = "REFLOW_TIMEOUT"
	EnvEOL        = "REFLOW_EOL"
	EnvLogLevel   = "REFLOW_LOG_LEVEL"
	EnvRecentPath = "REFLOW_RECENT_PATH"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Engine       string        `yaml:"engine"`
	Timeout      time.Duration `yaml:"timeout"`
	EOL          EOL           `yaml:"eol"`
	HistoryLimit int           `yaml:"history_limit"`
	LogLevel     LogLevel      `yaml:"log_level"`
	Recent       RecentConfig  `yaml:"recent"`
}

type RecentConfig struct {
	Path  string `yaml:"path"`
	Limit int    `yaml:"limit"`
}

// EOL selects the line terminator used for documents.
type EOL string

const (
	EOLAuto EOL = "auto"
	EOLLF   EOL = "lf"
	EOLCRLF EOL = "crlf"
)

// Marker returns the terminator for a document with the given contents.
// EOLAuto detects it from text.
func (e EOL) Marker(text string) string {
	switch e {
	case EOLLF:
		return "\n"
	case EOLCRLF:
		return "\r\n"
	default:
		return buffer.DetectEOLMarker(text)
	}
}

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

func (l LogLevel) Level() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	return &Config{
		Engine:       "gofmt",
		Timeout:      format.DefaultTimeout,
		EOL:          EOLAuto,
		HistoryLimit: 1000,
		LogLevel:     LogLevelInfo,
		Recent: RecentConfig{
			Path:  defaultRecentPath(),
			Limit: recent.DefaultLimit,
		},
	}
}

// Load reads the YAML file at path on top of the defaults, then applies
// environment overrides. A .env file in the working directory is loaded
// first; it never overrides variables already set. An empty path falls back
// to DefaultFile when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvEngine); v != "" {
		c.Engine = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalid, EnvTimeout, err)
		}
		c.Timeout = d
	}
	if v := os.Getenv(EnvEOL); v != "" {
		c.EOL = EOL(v)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = LogLevel(v)
	}
	if v := os.Getenv(EnvRecentPath); v != "" {
		c.Recent.Path = v
	}
	return nil
}

func (c *Config) normalize() {
	c.Engine = strings.ToLower(strings.TrimSpace(c.Engine))
	c.EOL = EOL(strings.ToLower(strings.TrimSpace(string(c.EOL))))
	if c.EOL == "" {
		c.EOL = EOLAuto
	}
	c.LogLevel = LogLevel(strings.ToLower(strings.TrimSpace(string(c.LogLevel))))
	if c.LogLevel == "" {
		c.LogLevel = LogLevelInfo
	}
	if c.Recent.Limit == 0 {
		c.Recent.Limit = recent.DefaultLimit
	}
	c.Recent.Path = expandHome(c.Recent.Path)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := format.EngineByName(c.Engine); err != nil {
		return fmt.Errorf("%w: engine: %w", ErrInvalid, err)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalid, c.Timeout)
	}
	switch c.EOL {
	case EOLAuto, EOLLF, EOLCRLF:
	default:
		return fmt.Errorf("%w: eol %q (want lf, crlf or auto)", ErrInvalid, c.EOL)
	}
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("%w: history_limit must not be negative", ErrInvalid)
	}
	if c.Recent.Limit < 0 {
		return fmt.Errorf("%w: recent.limit must not be negative", ErrInvalid)
	}
	return nil
}

func defaultRecentPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".reflow", recent.DefaultFileName)
	}
	return filepath.Join(dir, "reflow", recent.DefaultFileName)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
