package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kerbaras/comics/pkg/archive"
	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "COMICS"
	ConfigName     = "config"
	DefaultDirName = ".comics"
)

type (
	Config struct {
		Database
		Log
		Reader
		Ordering
		Export
	}

	Database struct {
		Path string
	}
	Log struct {
		Level slog.Level
		File  string // TUI log file; CLI commands log to stderr
	}
	Reader struct {
		MaxDecoders int           // Background decodes allowed at once
		LoadTimeout time.Duration // 0 disables the timeout
		MaxPixels   int           // Per page; 0 = archive.DefaultMaxPixels, negative = unlimited
	}
	Ordering struct {
		Zip archive.Ordering
		Rar archive.Ordering
	}
	Export struct {
		Dir       string
		MaxWidth  int
		MaxHeight int
	}
)

// Dir is where the library database, log file and config file live
func Dir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return DefaultDirName
	}
	return filepath.Join(homeDir, DefaultDirName)
}

// NewViper returns a viper instance carrying every default, reading COMICS_*
// environment variables ("reader.max_decoders" -> COMICS_READER_MAX_DECODERS).
func NewViper() *viper.Viper {
	dir := Dir()
	homeDir, _ := os.UserHomeDir()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database.path", filepath.Join(dir, "library.db"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(dir, "comics.log"))
	v.SetDefault("reader.max_decoders", 1)
	v.SetDefault("reader.load_timeout", "0s")
	v.SetDefault("reader.max_pixels", archive.DefaultMaxPixels)
	v.SetDefault("ordering.zip", archive.Natural.String())
	v.SetDefault("ordering.rar", archive.Lexicographic.String())
	v.SetDefault("export.dir", filepath.Join(homeDir, "Downloads"))
	v.SetDefault("export.max_width", 1072)
	v.SetDefault("export.max_height", 1448)

	return v
}

// ReadFile merges a YAML config file into v. An explicit path must exist;
// without one the default location is tried and silently skipped when absent.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(Dir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// FromViper resolves and validates the settings held by v
func FromViper(v *viper.Viper) (*Config, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString("log.level"))); err != nil {
		return nil, fmt.Errorf("invalid log.level: %w", err)
	}

	zipOrder, err := archive.ParseOrdering(v.GetString("ordering.zip"))
	if err != nil {
		return nil, fmt.Errorf("invalid ordering.zip: %w", err)
	}
	rarOrder, err := archive.ParseOrdering(v.GetString("ordering.rar"))
	if err != nil {
		return nil, fmt.Errorf("invalid ordering.rar: %w", err)
	}

	cfg := &Config{
		Database: Database{
			Path: v.GetString("database.path"),
		},
		Log: Log{
			Level: level,
			File:  v.GetString("log.file"),
		},
		Reader: Reader{
			MaxDecoders: v.GetInt("reader.max_decoders"),
			LoadTimeout: v.GetDuration("reader.load_timeout"),
			MaxPixels:   v.GetInt("reader.max_pixels"),
		},
		Ordering: Ordering{
			Zip: zipOrder,
			Rar: rarOrder,
		},
		Export: Export{
			Dir:       v.GetString("export.dir"),
			MaxWidth:  v.GetInt("export.max_width"),
			MaxHeight: v.GetInt("export.max_height"),
		},
	}

	if cfg.Database.Path == "" {
		return nil, fmt.Errorf("database.path cannot be empty")
	}
	if cfg.Reader.MaxDecoders < 1 {
		return nil, fmt.Errorf("reader.max_decoders must be at least 1, got %d", cfg.Reader.MaxDecoders)
	}
	if cfg.Reader.LoadTimeout < 0 {
		return nil, fmt.Errorf("reader.load_timeout cannot be negative")
	}

	return cfg, nil
}

// Load is NewViper + ReadFile + FromViper
func Load(path string) (*Config, error) {
	v := NewViper()
	if err := ReadFile(v, path); err != nil {
		return nil, err
	}
	return FromViper(v)
}

// ArchiveOptions maps the reader settings onto the dispatcher options
func (c *Config) ArchiveOptions() archive.Options {
	maxPixels := c.Reader.MaxPixels
	if maxPixels == 0 {
		maxPixels = archive.DefaultMaxPixels
	}
	return archive.Options{
		ZipOrdering: c.Ordering.Zip,
		RarOrdering: c.Ordering.Rar,
		MaxPixels:   maxPixels,
	}
}

// Logger builds the structured logger used by services and commands
func (c *Config) Logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.Log.Level}))
}
