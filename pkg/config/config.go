// Copyright 2025 The sapdocs Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config defines the service configuration and its loader.
//
// Configuration comes from a YAML file with ${VAR} / ${VAR:-default}
// environment expansion, overridden by a small set of well-known
// environment variables (PORT, BIND, LOG_LEVEL, LOG_FORMAT).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the sapdocs service.
type Config struct {
	// Server configures the HTTP transport.
	Server ServerConfig `yaml:"server,omitempty"`

	// Data configures the writable data directory holding the catalog
	// and the FTS index.
	Data DataConfig `yaml:"data,omitempty"`

	// Sources lists the documentation source trees to harvest.
	Sources []SourceConfig `yaml:"sources,omitempty"`

	// Live configures the online search adapters.
	Live LiveConfig `yaml:"live,omitempty"`

	// Logger configures log level, format and file output.
	Logger LoggerConfig `yaml:"logger,omitempty"`

	// Tags are deployment metadata passed through to /status unchanged.
	Tags map[string]string `yaml:"tags,omitempty"`
}

// LoggerConfig configures logging.
type LoggerConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"` // simple, verbose, json
	File   string `yaml:"file,omitempty"`
}

// DataConfig locates persisted build artifacts.
type DataConfig struct {
	// Dir is the data directory containing index.json, per-library
	// mirrors and the FTS index file.
	Dir string `yaml:"dir,omitempty"`
}

func (c *DataConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "data"
	}
}

// SetDefaults applies defaults to all sections.
func (c *Config) SetDefaults() {
	c.Server.SetDefaults()
	c.Data.SetDefaults()
	c.Live.SetDefaults()
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Format == "" {
		c.Logger.Format = "simple"
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Live.Validate(); err != nil {
		return fmt.Errorf("live: %w", err)
	}
	seen := make(map[string]struct{}, len(c.Sources))
	for i := range c.Sources {
		src := &c.Sources[i]
		if err := src.Validate(); err != nil {
			return fmt.Errorf("sources[%d]: %w", i, err)
		}
		if _, dup := seen[src.Library]; dup {
			return fmt.Errorf("sources[%d]: duplicate library id %q", i, src.Library)
		}
		seen[src.Library] = struct{}{}
	}
	return nil
}

// Load reads, expands and parses a YAML config file, applies defaults,
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := expandEnvVars(string(raw))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.SetDefaults()
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with defaults only, for running against
// a prebuilt data directory without a config file.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	cfg.applyEnvOverrides()
	return cfg
}

// applyEnvOverrides applies well-known environment variables on top of the
// file values. PORT and BIND follow platform conventions (Cloud Foundry,
// containers); SAPDOCS_TAG_* entries land in Tags.
func (c *Config) applyEnvOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if bind := os.Getenv("BIND"); bind != "" {
		c.Server.Host = bind
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logger.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		c.Logger.Format = format
	}
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, "SAPDOCS_TAG_") {
			continue
		}
		if c.Tags == nil {
			c.Tags = make(map[string]string)
		}
		key := strings.ToLower(strings.TrimPrefix(name, "SAPDOCS_TAG_"))
		c.Tags[key] = value
	}
}
