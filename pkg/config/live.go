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

// LiveConfig configures the online search adapters.
type LiveConfig struct {
	// Enabled is the master switch; individual adapters can still be
	// turned off below.
	Enabled bool `yaml:"enabled,omitempty"`

	// Timeout bounds each adapter call. Exceeding it yields an empty
	// result set from that adapter, never a request failure.
	Timeout string `yaml:"timeout,omitempty"`

	Community AdapterConfig `yaml:"community,omitempty"`
	Help      AdapterConfig `yaml:"help,omitempty"`
	Articles  AdapterConfig `yaml:"articles,omitempty"`
	ABAP      AdapterConfig `yaml:"abap,omitempty"`
}

// AdapterConfig configures one live source adapter.
type AdapterConfig struct {
	// Disabled turns this adapter off even when live search is enabled.
	Disabled bool `yaml:"disabled,omitempty"`

	// BaseURL overrides the adapter's default endpoint, mainly for tests.
	BaseURL string `yaml:"base_url,omitempty"`

	// CacheTTL is how long responses are cached in process.
	CacheTTL string `yaml:"cache_ttl,omitempty"`
}

func (c *LiveConfig) SetDefaults() {
	if c.Timeout == "" {
		c.Timeout = "10s"
	}
	if c.Community.CacheTTL == "" {
		c.Community.CacheTTL = "1h"
	}
	if c.Help.CacheTTL == "" {
		c.Help.CacheTTL = "24h"
	}
	if c.Articles.CacheTTL == "" {
		c.Articles.CacheTTL = "24h"
	}
	if c.ABAP.CacheTTL == "" {
		c.ABAP.CacheTTL = "24h"
	}
}

func (c *LiveConfig) Validate() error {
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	for name, a := range map[string]AdapterConfig{
		"community": c.Community,
		"help":      c.Help,
		"articles":  c.Articles,
		"abap":      c.ABAP,
	} {
		if a.CacheTTL != "" {
			if _, err := time.ParseDuration(a.CacheTTL); err != nil {
				return fmt.Errorf("%s: invalid cache_ttl: %w", name, err)
			}
		}
	}
	return nil
}

// AdapterDeadline returns the parsed per-adapter timeout.
func (c *LiveConfig) AdapterDeadline() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// TTL returns the parsed cache TTL with a fallback.
func (a *AdapterConfig) TTL(fallback time.Duration) time.Duration {
	if a.CacheTTL == "" {
		return fallback
	}
	d, err := time.ParseDuration(a.CacheTTL)
	if err != nil {
		return fallback
	}
	return d
}
