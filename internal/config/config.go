package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/vuno/internal/config/loader"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "VUNO_"

// ErrValidationFailed indicates a setting holds an unusable value.
var ErrValidationFailed = errors.New("validation failed")

// Config is the complete vuno configuration.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	History HistoryConfig `yaml:"history"`
	Files   FilesConfig   `yaml:"files"`
	Workers WorkersConfig `yaml:"workers"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

// HistoryConfig configures per-buffer edit history.
type HistoryConfig struct {
	// Capacity is the number of edits retained per buffer.
	Capacity int `yaml:"capacity"`
}

// FilesConfig configures file access.
type FilesConfig struct {
	// MaxSize is the largest file that can be opened, in bytes. 0 = unlimited.
	MaxSize int64 `yaml:"max_size"`
	// Watch enables detection of external changes to open files.
	Watch bool `yaml:"watch"`
	// WatchDebounce coalesces bursts of file events.
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// WorkersConfig configures the request worker pool.
type WorkersConfig struct {
	Count     int `yaml:"count"`
	QueueSize int `yaml:"queue_size"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		History: HistoryConfig{
			Capacity: 100,
		},
		Files: FilesConfig{
			MaxSize:       10 * 1024 * 1024,
			Watch:         true,
			WatchDebounce: 100 * time.Millisecond,
		},
		Workers: WorkersConfig{
			Count:     runtime.NumCPU(),
			QueueSize: 1024,
		},
	}
}

// Load builds the configuration from defaults, the file at path (if any)
// and the environment, then validates it. An empty path skips the file
// layer; a path that does not exist is treated the same way.
func Load(path string) (*Config, error) {
	return LoadWithFS(loader.DefaultFS(), path)
}

// LoadWithFS is Load with a custom file system for the file layer.
func LoadWithFS(fsys loader.FileSystem, path string) (*Config, error) {
	layers := make([]loader.Loader, 0, 2)
	if path != "" {
		l, err := loader.ForFile(fsys, path)
		if err != nil {
			return nil, err
		}
		layers = append(layers, l)
	}
	layers = append(layers, loader.NewEnvLoader(EnvPrefix))

	merged := make(map[string]any)
	for _, l := range layers {
		m, err := l.Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, m)
	}

	cfg := Default()
	if err := cfg.apply(merged); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// apply decodes a layered settings map over the current values.
// Keys absent from the map keep their current value.
func (c *Config) apply(settings map[string]any) error {
	if len(settings) == 0 {
		return nil
	}
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("decoding settings: %w", err)
	}
	return nil
}

// Validate reports every setting that holds an unusable value.
func (c *Config) Validate() error {
	var problems []string

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("log.format %q must be text or json", c.Log.Format))
	}
	if c.History.Capacity <= 0 {
		problems = append(problems, fmt.Sprintf("history.capacity %d must be positive", c.History.Capacity))
	}
	if c.Files.MaxSize < 0 {
		problems = append(problems, fmt.Sprintf("files.max_size %d must not be negative", c.Files.MaxSize))
	}
	if c.Files.WatchDebounce < 0 {
		problems = append(problems, fmt.Sprintf("files.watch_debounce %s must not be negative", c.Files.WatchDebounce))
	}
	if c.Workers.Count <= 0 {
		problems = append(problems, fmt.Sprintf("workers.count %d must be positive", c.Workers.Count))
	}
	if c.Workers.QueueSize <= 0 {
		problems = append(problems, fmt.Sprintf("workers.queue_size %d must be positive", c.Workers.QueueSize))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(problems, "; "))
	}
	return nil
}
