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

package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sap-docs/mcp-server/pkg/catalog"
	"github.com/sap-docs/mcp-server/pkg/index"
	"github.com/sap-docs/mcp-server/pkg/live"
	"github.com/sap-docs/mcp-server/pkg/logger"
	"github.com/sap-docs/mcp-server/pkg/markdown"
	"github.com/sap-docs/mcp-server/pkg/urlres"
)

const (
	defaultK = 10
	maxK     = 50
)

// Options are the per-request search flags.
type Options struct {
	// K bounds the ranked list (default 10, max 50).
	K int

	// IncludeOnline fans out to live source adapters.
	IncludeOnline bool

	// IncludeSamples keeps sample-kind documents in the results.
	IncludeSamples bool

	// Sources restricts results to the given library identifiers.
	Sources []string

	// Flavor selects a language-variant corpus where one exists
	// (e.g. "cloud" vs on-premise ABAP docs).
	Flavor string
}

// Result is a ranked search response.
type Result struct {
	Hits []Hit `json:"results"`

	// Fallback is set when the full-text engine produced no candidates
	// (or failed) and ranking ran over a full catalog scan instead.
	Fallback bool `json:"fallback,omitempty"`

	// Warnings lists degraded stages, e.g. an adapter that timed out.
	Warnings []string `json:"warnings,omitempty"`
}

// Engine ties expansion, the FTS index, the catalog scan fallback, live
// fan-out and URL resolution into one search entry point.
type Engine struct {
	index    *index.Index
	catalog  *catalog.Catalog
	resolver *urlres.Resolver
	live     *live.Registry
	deadline time.Duration
	logger   *slog.Logger
}

// NewEngine builds a search engine. The live registry may be empty.
func NewEngine(ix *index.Index, c *catalog.Catalog, resolver *urlres.Resolver, reg *live.Registry, adapterDeadline time.Duration) *Engine {
	if adapterDeadline <= 0 {
		adapterDeadline = 10 * time.Second
	}
	return &Engine{
		index:    ix,
		catalog:  c,
		resolver: resolver,
		live:     reg,
		deadline: adapterDeadline,
		logger:   logger.GetLogger(),
	}
}

// Search runs the full pipeline for one query.
func (e *Engine) Search(ctx context.Context, query string, opts Options) (Result, error) {
	k := opts.K
	if k <= 0 {
		k = defaultK
	}
	if k > maxK {
		k = maxK
	}

	variants := Expand(query)
	if len(variants) == 0 {
		return Result{Hits: []Hit{}}, nil
	}

	var (
		result Result
		online [][]Hit
		warnMu sync.Mutex
	)
	warn := func(msg string) {
		warnMu.Lock()
		result.Warnings = append(result.Warnings, msg)
		warnMu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)

	var local []Hit
	g.Go(func() error {
		var fallback bool
		local, fallback = e.localHits(variants, opts, k)
		if fallback {
			result.Fallback = true
			warn("full-text index unavailable or empty; results come from a full catalog scan")
		}
		return nil
	})

	if opts.IncludeOnline && e.live != nil {
		adapters := e.live.Adapters()
		online = make([][]Hit, len(adapters))
		for i, adapter := range adapters {
			i, adapter := i, adapter
			g.Go(func() error {
				actx, cancel := context.WithTimeout(gctx, e.deadline)
				defer cancel()
				hits, err := adapter.Search(actx, query)
				if err != nil {
					warn(fmt.Sprintf("source %s unavailable", adapter.Name()))
					e.logger.Warn("live adapter failed", "adapter", adapter.Name(), "error", err)
					return nil
				}
				online[i] = fromLiveHits(hits)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	if opts.IncludeOnline {
		lists := append([][]Hit{local}, online...)
		fused := fuseRRF(lists...)
		if len(fused) > k {
			fused = fused[:k]
		}
		result.Hits = fused
	} else {
		result.Hits = local
	}
	if result.Hits == nil {
		result.Hits = []Hit{}
	}
	return result, nil
}

// localHits ranks catalog documents for the variants. The second return
// reports whether the full-scan fallback was taken.
func (e *Engine) localHits(variants []string, opts Options, k int) ([]Hit, bool) {
	candidates := make(map[string]index.Entry)
	fallback := false

	if e.index != nil {
		for _, v := range variants {
			entries, err := e.index.Query(v, 0)
			if err != nil {
				e.logger.Warn("fts query failed, falling back to catalog scan", "error", err)
				fallback = true
				break
			}
			for _, entry := range entries {
				candidates[entry.ID] = entry
			}
		}
	} else {
		fallback = true
	}

	if fallback || len(candidates) == 0 {
		fallback = true
		candidates = make(map[string]index.Entry)
		e.catalog.All(func(doc *catalog.Document) bool {
			candidates[doc.ID] = entryFromDocument(doc)
			return true
		})
	}

	hits := make([]Hit, 0, len(candidates))
	for _, entry := range candidates {
		if !e.admits(entry, opts) {
			continue
		}
		score, breakdown := scoreEntry(entry, variants)
		if score <= 0 {
			continue
		}
		hits = append(hits, Hit{
			ID:        entry.ID,
			Title:     entry.Title,
			Library:   entry.Library,
			Kind:      entry.Kind,
			Score:     score,
			Breakdown: breakdown,
			Excerpt:   entry.Description,
			Source:    "local",
		})
	}
	rankHits(hits, variants)
	if len(hits) > k {
		hits = hits[:k]
	}
	e.decorate(hits)
	return hits, fallback
}

// admits applies the source, sample and flavor filters.
func (e *Engine) admits(entry index.Entry, opts Options) bool {
	if entry.Kind == catalog.KindSample && !opts.IncludeSamples {
		return false
	}
	if len(opts.Sources) > 0 {
		found := false
		for _, s := range opts.Sources {
			if s == entry.Library {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	switch opts.Flavor {
	case "":
	case "cloud":
		if entry.Library == "/abap-docs-758" {
			return false
		}
	default:
		if entry.Library == "/abap-docs-cloud" {
			return false
		}
	}
	return true
}

// decorate attaches public URLs and first-paragraph excerpts to the
// final hits. File reads are best effort; a missing file leaves the
// description excerpt in place.
func (e *Engine) decorate(hits []Hit) {
	for i := range hits {
		doc, err := e.catalog.Get(catalog.ParentOf(hits[i].ID))
		if err != nil {
			continue
		}
		content := ""
		if bundle, ok := e.catalog.Bundle(doc.Library); ok && bundle.SourceDir != "" {
			if raw, err := os.ReadFile(filepath.Join(bundle.SourceDir, doc.RelFile)); err == nil {
				content = string(raw)
			}
		}
		if content != "" && hits[i].Excerpt == "" {
			hits[i].Excerpt = markdown.FirstParagraph(content)
		}
		if e.resolver != nil {
			hits[i].URL = e.resolver.Resolve(doc.Library, doc.RelFile, content)
		}
	}
}

// entryFromDocument projects a catalog document into the shape the
// scorer consumes; used on the full-scan path.
func entryFromDocument(doc *catalog.Document) index.Entry {
	entry := index.Entry{
		ID:          doc.ID,
		Library:     doc.Library,
		Kind:        doc.Kind,
		Title:       doc.Title,
		Description: doc.Description,
		Keywords:    doc.Meta.KeywordBlob(),
		RelFile:     doc.RelFile,
		Snippets:    doc.Snippets,
	}
	if doc.Meta != nil {
		entry.Control = doc.Meta.Control
		entry.Namespace = doc.Meta.Namespace
	}
	return entry
}

func fromLiveHits(hits []live.Hit) []Hit {
	out := make([]Hit, len(hits))
	for i, h := range hits {
		out[i] = Hit{
			ID:      h.ID,
			Title:   h.Title,
			URL:     h.URL,
			Excerpt: h.Snippet,
			Kind:    catalog.KindExternal,
			Source:  h.Source,
		}
	}
	return out
}
