// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all agenda configuration.
type Config struct {
	Storage Storage `yaml:"storage"`
	Display Display `yaml:"display"`
	Export  Export  `yaml:"export"`
	Log     Log     `yaml:"log"`
}

// Storage holds data file settings.
type Storage struct {
	DataFile string `yaml:"data_file"`
}

// Display holds listing settings.
type Display struct {
	PageSize int `yaml:"page_size"`
}

// Export holds export defaults.
type Export struct {
	Format string `yaml:"format"` // "csv" | "xlsx"
	Dir    string `yaml:"dir"`    // Directory export names are resolved against
}

// Log holds diagnostic logging settings.
type Log struct {
	Level string `yaml:"level"` // "debug" | "info" | "warn" | "error"
	File  string `yaml:"file"`  // Empty disables logging
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Storage: Storage{
			DataFile: "contacts.json",
		},
		Display: Display{
			PageSize: 5,
		},
		Export: Export{
			Format: "csv",
			Dir:    ".",
		},
		Log: Log{
			Level: "info",
		},
	}
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if c.Storage.DataFile == "" {
		return errors.New("config: storage.data_file cannot be empty")
	}
	if c.Display.PageSize < 1 {
		return fmt.Errorf("config: display.page_size must be positive, got %d", c.Display.PageSize)
	}
	switch c.Export.Format {
	case "csv", "xlsx":
		// valid
	default:
		return fmt.Errorf("config: export.format must be \"csv\" or \"xlsx\", got %q", c.Export.Format)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("config: log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: AGENDA_DATA_FILE, AGENDA_PAGE_SIZE, AGENDA_LOG_LEVEL, AGENDA_LOG_FILE.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("AGENDA_DATA_FILE"); v != "" {
		c.Storage.DataFile = v
	}
	if v := os.Getenv("AGENDA_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid AGENDA_PAGE_SIZE %q: %w", v, err)
		}
		c.Display.PageSize = n
	}
	if v := os.Getenv("AGENDA_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("AGENDA_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Storage *rawStorage `yaml:"storage"`
	Display *rawDisplay `yaml:"display"`
	Export  *rawExport  `yaml:"export"`
	Log     *rawLog     `yaml:"log"`
}

type rawStorage struct {
	DataFile *string `yaml:"data_file"`
}

type rawDisplay struct {
	PageSize *int `yaml:"page_size"`
}

type rawExport struct {
	Format *string `yaml:"format"`
	Dir    *string `yaml:"dir"`
}

type rawLog struct {
	Level *string `yaml:"level"`
	File  *string `yaml:"file"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if layer.Storage != nil && layer.Storage.DataFile != nil {
		c.Storage.DataFile = *layer.Storage.DataFile
	}
	if layer.Display != nil && layer.Display.PageSize != nil {
		c.Display.PageSize = *layer.Display.PageSize
	}
	if layer.Export != nil {
		if layer.Export.Format != nil {
			c.Export.Format = *layer.Export.Format
		}
		if layer.Export.Dir != nil {
			c.Export.Dir = *layer.Export.Dir
		}
	}
	if layer.Log != nil {
		if layer.Log.Level != nil {
			c.Log.Level = *layer.Log.Level
		}
		if layer.Log.File != nil {
			c.Log.File = *layer.Log.File
		}
	}
}
