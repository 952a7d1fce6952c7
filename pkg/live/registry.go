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

package live

import (
	"time"

	"github.com/sap-docs/mcp-server/pkg/config"
)

// FromConfig assembles the adapter registry from configuration. When
// live search is disabled the registry is empty but still usable.
func FromConfig(cfg config.LiveConfig) *Registry {
	if !cfg.Enabled {
		return NewRegistry()
	}

	deadline := cfg.AdapterDeadline()
	var adapters []Adapter
	if !cfg.Community.Disabled {
		adapters = append(adapters,
			NewCommunityAdapter(cfg.Community.BaseURL, deadline, cfg.Community.TTL(time.Hour)))
	}
	if !cfg.Help.Disabled {
		adapters = append(adapters,
			NewHelpPortalAdapter(cfg.Help.BaseURL, deadline, cfg.Help.TTL(24*time.Hour)))
	}
	if !cfg.Articles.Disabled {
		adapters = append(adapters,
			NewArticlesAdapter(cfg.Articles.BaseURL, deadline, cfg.Articles.TTL(24*time.Hour)))
	}
	if !cfg.ABAP.Disabled {
		adapters = append(adapters,
			NewFeatureMatrixAdapter(cfg.ABAP.BaseURL, deadline, cfg.ABAP.TTL(24*time.Hour)))
	}
	return NewRegistry(adapters...)
}
