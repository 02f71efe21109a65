package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Output.Compression != "snappy" || cfg.Logging.Level != "INFO" || cfg.Logging.Format != "text" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("defaults without paths must not validate")
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "silver.yml")
	raw := []byte(`input:
  path: /data/bronze/states.parquet
output:
  path: /data/silver/states.parquet
  compression: zstd
logging:
  level: debug
  format: json
metrics:
  textfile: /var/lib/node_exporter/silver.prom
`)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("SILVER_OUTPUT", "/tmp/silver.parquet")
	t.Setenv("LOG_LEVEL", "WARN")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Input.Path != "/data/bronze/states.parquet" {
		t.Fatalf("input path: %q", cfg.Input.Path)
	}
	if cfg.Output.Path != "/tmp/silver.parquet" {
		t.Fatalf("env should override output path, got %q", cfg.Output.Path)
	}
	if cfg.Output.Compression != "zstd" || cfg.Logging.Format != "json" {
		t.Fatalf("file values lost: %+v", cfg)
	}
	if cfg.Logging.Level != "WARN" {
		t.Fatalf("env should override log level, got %q", cfg.Logging.Level)
	}
	if cfg.Metrics.Textfile != "/var/lib/node_exporter/silver.prom" {
		t.Fatalf("metrics textfile: %q", cfg.Metrics.Textfile)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoad_BadFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatal("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "broken.yml")
	if err := os.WriteFile(path, []byte("input: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Input:   InputConfig{Path: "in.parquet"},
			Output:  OutputConfig{Path: "out.parquet", Compression: "snappy"},
			Logging: LoggingConfig{Level: "info", Format: "text"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"same paths", func(c *Config) { c.Output.Path = c.Input.Path }},
		{"bad codec", func(c *Config) { c.Output.Compression = "rar" }},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }},
		{"no output", func(c *Config) { c.Output.Path = "" }},
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("baseline should validate: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			if err := c.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
