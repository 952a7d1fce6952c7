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

// Package live queries external documentation sources at request time:
// the community forum, the help portal, third-party article sites and
// the ABAP feature matrix. Adapters degrade to empty results on timeout
// or upstream failure; they never fail the request.
package live

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Hit is one normalized result from a live source.
type Hit struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	Snippet string `json:"snippet,omitempty"`
	Source  string `json:"source"`
}

// Adapter is the uniform capability every live source implements.
type Adapter interface {
	// Name is the source label carried in hit provenance.
	Name() string

	// IDPrefix is the identifier namespace this adapter mints
	// (e.g. "community-").
	IDPrefix() string

	// Search queries the source. An empty slice is a normal result.
	Search(ctx context.Context, query string) ([]Hit, error)

	// GetByID fetches full content for an identifier this adapter minted.
	GetByID(ctx context.Context, id string) (title, content, url string, err error)
}

// Registry holds the configured adapters and dispatches external
// identifiers to their owner.
type Registry struct {
	adapters []Adapter
}

// NewRegistry builds a registry over the given adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	return &Registry{adapters: adapters}
}

// Adapters returns all registered adapters.
func (r *Registry) Adapters() []Adapter {
	return r.adapters
}

// ByName returns the adapter with the given source label.
func (r *Registry) ByName(name string) (Adapter, bool) {
	for _, a := range r.adapters {
		if a.Name() == name {
			return a, true
		}
	}
	return nil, false
}

// FetchByID dispatches an external identifier by prefix.
func (r *Registry) FetchByID(ctx context.Context, id string) (string, string, string, error) {
	for _, a := range r.adapters {
		if strings.HasPrefix(id, a.IDPrefix()) {
			return a.GetByID(ctx, id)
		}
	}
	return "", "", "", fmt.Errorf("no adapter owns identifier %q", id)
}

// userAgent identifies the service to upstream sources.
const userAgent = "sapdocs/0.5"

// newHTTPClient builds a client with an overall deadline. Redirects are
// followed; connection reuse is left to the default transport.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
