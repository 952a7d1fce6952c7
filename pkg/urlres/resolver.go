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

// Package urlres maps internal document identifiers back to canonical
// public documentation URLs.
//
// Resolution is pure and deterministic: a dispatch table selects a
// library-specific strategy, with a generic pattern fallback. Malformed
// input yields an empty URL, never an error.
package urlres

import (
	"net/url"
	"strings"

	"github.com/sap-docs/mcp-server/pkg/markdown"
)

// AnchorStyle selects how heading anchors are rendered.
type AnchorStyle string

const (
	AnchorGitHub  AnchorStyle = "github"
	AnchorDocsify AnchorStyle = "docsify"
	AnchorRaw     AnchorStyle = "raw"
)

// Config is the per-library URL configuration. Immutable at runtime.
type Config struct {
	BaseURL     string
	PathPattern string // contains a {file} placeholder
	Anchor      AnchorStyle
}

// StrategyFunc computes a public URL for one library. An empty return
// falls through to the generic strategy.
type StrategyFunc func(relFile, content string, cfg Config) string

// Resolver dispatches per-library strategies over static configs.
type Resolver struct {
	configs    map[string]Config
	strategies map[string]StrategyFunc
}

// NewResolver returns a resolver with the built-in library registry.
func NewResolver() *Resolver {
	r := &Resolver{
		configs:    make(map[string]Config),
		strategies: make(map[string]StrategyFunc),
	}
	r.registerDefaults()
	return r
}

// Register adds or replaces a library strategy and its config.
func (r *Resolver) Register(libraryID string, cfg Config, fn StrategyFunc) {
	r.configs[libraryID] = cfg
	if fn != nil {
		r.strategies[libraryID] = fn
	}
}

// Resolve maps (libraryID, relFile, content) to a public URL, or ""
// when no URL can be derived.
func (r *Resolver) Resolve(libraryID, relFile, content string) string {
	cfg, ok := r.configs[libraryID]
	if !ok {
		return ""
	}
	if fn, ok := r.strategies[libraryID]; ok {
		if u := fn(relFile, content, cfg); u != "" {
			return u
		}
	}
	return genericStrategy(relFile, content, cfg)
}

// Known reports whether a library has URL configuration.
func (r *Resolver) Known(libraryID string) bool {
	_, ok := r.configs[libraryID]
	return ok
}

// genericStrategy substitutes {file} in the path pattern and appends an
// anchor derived from the first heading.
func genericStrategy(relFile, content string, cfg Config) string {
	if cfg.BaseURL == "" || relFile == "" {
		return ""
	}
	pattern := cfg.PathPattern
	if pattern == "" {
		pattern = "/{file}"
	}
	path := strings.ReplaceAll(pattern, "{file}", strings.TrimSuffix(relFile, ".md"))
	return cfg.BaseURL + path + anchorFor(content, cfg.Anchor)
}

func anchorFor(content string, style AnchorStyle) string {
	heading := markdown.FirstHeading(content)
	if heading == "" {
		return ""
	}
	switch style {
	case AnchorGitHub:
		return "#" + markdown.Slugify(heading)
	case AnchorDocsify:
		return "?id=" + markdown.Slugify(heading)
	case AnchorRaw:
		return "#" + url.PathEscape(heading)
	default:
		return ""
	}
}

// preferredID picks the document identifier used in docsify-style URLs:
// front-matter id, then slug, then the filename without extension.
func preferredID(relFile, content string) string {
	fm, _ := markdown.ParseFrontMatter(content)
	if id := fm.Get("id"); id != "" {
		return id
	}
	if slug := fm.Get("slug"); slug != "" {
		return slug
	}
	base := relFile
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}

// sectionOf derives a docsify section from the path prefix
// (guides/, features/, tutorials/, advanced/ and similar).
func sectionOf(relFile string) string {
	dir, _, ok := strings.Cut(relFile, "/")
	if !ok {
		return ""
	}
	switch dir {
	case "guides", "features", "tutorials", "advanced", "docs", "usage":
		return dir
	}
	return ""
}
