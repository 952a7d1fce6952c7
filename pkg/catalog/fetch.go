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

package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sap-docs/mcp-server/pkg/markdown"
)

// External id prefixes handed off to live adapters.
var externalPrefixes = []string{"community-", "sap-help-", "dj-"}

// ExternalFetcher retrieves full content for identifiers minted by live
// search adapters.
type ExternalFetcher interface {
	FetchByID(ctx context.Context, id string) (title, content, url string, err error)
}

// URLResolver maps a catalog document to its public URL.
type URLResolver interface {
	Resolve(libraryID, relFile, content string) string
}

// FetchResult is the outcome of a fetch. Found is false when the id did
// not resolve; Content then carries a human-readable notice instead of
// document text.
type FetchResult struct {
	ID      string
	Title   string
	URL     string
	Content string
	Found   bool
}

// Fetcher serves full document content by identifier: catalog documents
// from disk, sections as heading-bounded slices, external ids via the
// configured ExternalFetcher.
type Fetcher struct {
	catalog  *Catalog
	resolver URLResolver
	external ExternalFetcher
}

// NewFetcher builds a Fetcher. resolver and external may be nil; the
// corresponding enrichment is then skipped.
func NewFetcher(c *Catalog, resolver URLResolver, external ExternalFetcher) *Fetcher {
	return &Fetcher{catalog: c, resolver: resolver, external: external}
}

// Fetch returns the content for id. Unknown identifiers never produce an
// error; the result carries a notice body with Found == false.
func (f *Fetcher) Fetch(ctx context.Context, id string) (FetchResult, error) {
	if isExternalID(id) {
		return f.fetchExternal(ctx, id)
	}

	doc, err := f.catalog.Get(ParentOf(id))
	if err != nil {
		return notFound(id), nil
	}

	content, err := f.readSource(doc)
	if err != nil {
		return FetchResult{}, err
	}

	if IsSectionID(id) {
		section, ok := f.sliceSection(id, content)
		if !ok {
			return notFound(id), nil
		}
		content = section
	}

	res := FetchResult{
		ID:      id,
		Title:   doc.Title,
		Content: content,
		Found:   true,
	}
	if f.resolver != nil {
		res.URL = f.resolver.Resolve(doc.Library, doc.RelFile, content)
	}
	res.Content = provenanceHeader(doc, res.URL) + res.Content
	return res, nil
}

func (f *Fetcher) fetchExternal(ctx context.Context, id string) (FetchResult, error) {
	if f.external == nil {
		return notFound(id), nil
	}
	// Upstream failures degrade to a not-found body; the fetch boundary
	// never surfaces adapter errors.
	title, content, url, err := f.external.FetchByID(ctx, id)
	if err != nil || content == "" {
		return notFound(id), nil
	}
	return FetchResult{ID: id, Title: title, URL: url, Content: content, Found: true}, nil
}

// readSource loads the document file from the bundle's source directory.
func (f *Fetcher) readSource(doc *Document) (string, error) {
	bundle, ok := f.catalog.Bundle(doc.Library)
	if !ok {
		return "", fmt.Errorf("no bundle for library %s", doc.Library)
	}
	raw, err := os.ReadFile(filepath.Join(bundle.SourceDir, doc.RelFile))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", doc.RelFile, err)
	}
	return string(raw), nil
}

// sliceSection cuts the section addressed by id out of the parent
// document body using heading bounds.
func (f *Fetcher) sliceSection(id, content string) (string, bool) {
	i := strings.IndexByte(id, '#')
	if i < 0 {
		return "", false
	}
	slug := id[i+1:]
	for _, s := range markdown.SplitSections(content) {
		if markdown.Slugify(s.Title) == slug {
			return fmt.Sprintf("%s %s\n\n%s\n", strings.Repeat("#", s.Level), s.Title, s.Body), true
		}
	}
	return "", false
}

func isExternalID(id string) bool {
	for _, p := range externalPrefixes {
		if strings.HasPrefix(id, p) {
			return true
		}
	}
	return false
}

func notFound(id string) FetchResult {
	return FetchResult{
		ID:      id,
		Content: fmt.Sprintf("Document not found: %s\n\nUse the search tool to discover valid document identifiers.", id),
	}
}

func provenanceHeader(doc *Document, url string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "> Library: %s | File: %s", doc.Library, doc.RelFile)
	if url != "" {
		fmt.Fprintf(&b, " | Source: %s", url)
	}
	b.WriteString("\n\n")
	return b.String()
}
