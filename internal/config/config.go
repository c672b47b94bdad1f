package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/studytrack/internal/logging"
	"github.com/abhisek/studytrack/internal/store"
)

// Backend values.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Environment overrides.
const (
	EnvData     = store.DataPathEnv
	EnvBackend  = "STUDYTRACK_BACKEND"
	EnvBank     = "STUDYTRACK_BANK"
	EnvLogLevel = "STUDYTRACK_LOG_LEVEL"
	EnvKeep     = "STUDYTRACK_KEEP_SNAPSHOTS"
)

// Config holds everything the CLI needs to open a progress store and a
// question bank.
type Config struct {
	// Backend selects the progress persistence: "file" (one JSON
	// document) or "sqlite" (a snapshot table).
	Backend string `yaml:"backend"`

	// DataPath overrides the progress file or database location.
	DataPath string `yaml:"data_path"`

	// BankPath loads a question bank file instead of the built-in one.
	BankPath string `yaml:"bank_path"`

	// KeepSnapshots is how many snapshots the sqlite backend retains.
	KeepSnapshots int `yaml:"keep_snapshots"`

	// MetricsFile, when set, receives Prometheus text output on exit.
	MetricsFile string `yaml:"metrics_file"`

	Logging LoggingConfig `yaml:"logging"`
	Tests   TestConfig    `yaml:"tests"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// TestConfig holds default question counts per test kind.
type TestConfig struct {
	MockQuestions       int `yaml:"mock_questions"`
	TopicQuestions      int `yaml:"topic_questions"`
	FrameworkQuestions  int `yaml:"framework_questions"`
	DifficultyQuestions int `yaml:"difficulty_questions"`
	Flashcards          int `yaml:"flashcards"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend:       BackendFile,
		KeepSnapshots: 20,
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		Tests: TestConfig{
			MockQuestions:       120,
			TopicQuestions:      10,
			FrameworkQuestions:  50,
			DifficultyQuestions: 50,
			Flashcards:          10,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/studytrack/config.yaml, falling
// back to ~/.config.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "studytrack", "config.yaml"), nil
}

// Load builds a Config from defaults, the YAML file at path and the
// environment, in that order. An empty path means DefaultPath, which may
// be absent; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from STUDYTRACK_* variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvData); v != "" {
		c.DataPath = v
	}
	if v := os.Getenv(EnvBackend); v != "" {
		c.Backend = v
	}
	if v := os.Getenv(EnvBank); v != "" {
		c.BankPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvKeep); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvKeep, err)
		}
		c.KeepSnapshots = n
	}
	return nil
}

// Validate rejects unknown backends, log levels and negative counts.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendFile, BackendSQLite)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("unknown log format %q (want console or json)", c.Logging.Format)
	}
	if c.KeepSnapshots < 0 {
		return fmt.Errorf("keep_snapshots must be >= 0, got %d", c.KeepSnapshots)
	}
	t := c.Tests
	for name, n := range map[string]int{
		"mock_questions":       t.MockQuestions,
		"topic_questions":      t.TopicQuestions,
		"framework_questions":  t.FrameworkQuestions,
		"difficulty_questions": t.DifficultyQuestions,
		"flashcards":           t.Flashcards,
	} {
		if n <= 0 {
			return fmt.Errorf("tests.%s must be > 0, got %d", name, n)
		}
	}
	return nil
}

// ResolveDataPath returns DataPath, or the default location for the
// backend, creating the parent directory.
func (c Config) ResolveDataPath() (string, error) {
	if c.DataPath != "" {
		return c.DataPath, store.EnsureDir(c.DataPath)
	}
	name := "study_progress.json"
	if c.Backend == BackendSQLite {
		name = "studytrack.db"
	}
	return store.DefaultDataPath(name)
}
