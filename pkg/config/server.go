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

package config

import (
	"fmt"
	"time"
)

// ServerConfig configures the streaming HTTP transport.
type ServerConfig struct {
	// Host to bind to.
	Host string `yaml:"host,omitempty"`

	// Port to listen on.
	Port int `yaml:"port,omitempty"`

	// RequestTimeout bounds a single request end to end.
	RequestTimeout string `yaml:"request_timeout,omitempty"`

	// SessionTTL is the inactivity window after which a session is swept.
	SessionTTL string `yaml:"session_ttl,omitempty"`

	// SweepInterval is how often the inactivity sweeper runs.
	SweepInterval string `yaml:"sweep_interval,omitempty"`

	// EventLogSize is the per-stream retention bound for SSE replay.
	EventLogSize int `yaml:"event_log_size,omitempty"`

	// CORS configures allowed origins. Empty means allow all.
	CORS *CORSConfig `yaml:"cors,omitempty"`
}

// CORSConfig configures cross-origin access for browser clients.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

func (c *ServerConfig) SetDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 3001
	}
	if c.RequestTimeout == "" {
		c.RequestTimeout = "25s"
	}
	if c.SessionTTL == "" {
		c.SessionTTL = "30m"
	}
	if c.SweepInterval == "" {
		c.SweepInterval = "1m"
	}
	if c.EventLogSize == 0 {
		c.EventLogSize = 100
	}
}

func (c *ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for name, val := range map[string]string{
		"request_timeout": c.RequestTimeout,
		"session_ttl":     c.SessionTTL,
		"sweep_interval":  c.SweepInterval,
	} {
		if _, err := time.ParseDuration(val); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	if c.EventLogSize < 1 {
		return fmt.Errorf("event_log_size must be positive")
	}
	return nil
}

// Address returns the host:port bind address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RequestDeadline returns the parsed request timeout.
func (c *ServerConfig) RequestDeadline() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 25 * time.Second
	}
	return d
}

// SessionDeadline returns the parsed session inactivity TTL.
func (c *ServerConfig) SessionDeadline() time.Duration {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil {
		return 30 * time.Minute
	}
	return d
}

// SweepEvery returns the parsed sweep interval.
func (c *ServerConfig) SweepEvery() time.Duration {
	d, err := time.ParseDuration(c.SweepInterval)
	if err != nil {
		return time.Minute
	}
	return d
}
