package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"flight-silver/internal/storage"
)

type Config struct {
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type InputConfig struct {
	Path string `yaml:"path"` // bronze parquet file
}

type OutputConfig struct {
	Path        string `yaml:"path"`        // silver parquet file
	Compression string `yaml:"compression"` // "snappy", "zstd", "gzip" or "none"
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // "DEBUG", "INFO", "WARN", "ERROR"
	Format string `yaml:"format"` // "text" or "json"
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile"` // empty disables the export
}

func Load(configPath string) (*Config, error) {
	config := &Config{}

	// Set defaults
	config.setDefaults()

	// Load from file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Override with environment variables
	config.loadFromEnv()

	return config, nil
}

func (c *Config) setDefaults() {
	c.Output.Compression = "snappy"
	c.Logging.Level = "INFO"
	c.Logging.Format = "text"
}

func (c *Config) loadFromEnv() {
	if input := os.Getenv("SILVER_INPUT"); input != "" {
		c.Input.Path = input
	}

	if output := os.Getenv("SILVER_OUTPUT"); output != "" {
		c.Output.Path = output
	}

	if codec := os.Getenv("SILVER_COMPRESSION"); codec != "" {
		c.Output.Compression = codec
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if textfile := os.Getenv("METRICS_TEXTFILE"); textfile != "" {
		c.Metrics.Textfile = textfile
	}
}

// Validate checks a fully assembled configuration, after command-line
// overrides have been applied.
func (c *Config) Validate() error {
	if c.Input.Path == "" {
		return fmt.Errorf("input path cannot be empty")
	}

	if c.Output.Path == "" {
		return fmt.Errorf("output path cannot be empty")
	}

	if c.Input.Path == c.Output.Path {
		return fmt.Errorf("output path must differ from input path")
	}

	if _, err := storage.ParseCompression(c.Output.Compression); err != nil {
		return fmt.Errorf("output compression: %w", err)
	}

	switch strings.ToUpper(c.Logging.Level) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("log level must be 'DEBUG', 'INFO', 'WARN', or 'ERROR'")
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("log format must be 'text' or 'json'")
	}

	return nil
}
