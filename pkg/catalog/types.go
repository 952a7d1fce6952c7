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

// Package catalog defines the document catalog: the uniform record every
// indexed unit is reduced to, the per-library bundles grouping them, and
// the on-disk JSON store. The catalog is built once at index time and is
// read-only at serve time.
package catalog

import (
	"errors"
	"strings"
)

// Kind is the content kind of a Document.
type Kind string

const (
	KindGuide        Kind = "guide"
	KindAPIReference Kind = "api-reference"
	KindSample       Kind = "sample"
	KindSection      Kind = "section"
	KindExternal     Kind = "external-post"
)

// ErrDocumentNotFound is returned when an identifier does not resolve.
var ErrDocumentNotFound = errors.New("document not found")

// Document is one indexed unit. Identifiers are slash-delimited and
// opaque; the first segment is always the library identifier.
type Document struct {
	ID          string `json:"id"`
	Library     string `json:"library"`
	Kind        Kind   `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	// RelFile is the file path relative to the source tree root.
	RelFile string `json:"rel_file"`

	// Snippets counts code snippets in the document.
	Snippets int `json:"snippets,omitempty"`

	// Meta carries structured control metadata for api-reference and
	// sample documents.
	Meta *ControlMeta `json:"meta,omitempty"`

	// Section fields, set only for Kind == KindSection.
	Parent    string `json:"parent,omitempty"`
	Level     int    `json:"level,omitempty"`
	StartLine int    `json:"start_line,omitempty"`
}

// ControlMeta is structured metadata extracted from framework sources.
type ControlMeta struct {
	Control      string   `json:"control,omitempty"`
	Namespace    string   `json:"namespace,omitempty"`
	Properties   []string `json:"properties,omitempty"`
	Events       []string `json:"events,omitempty"`
	Aggregations []string `json:"aggregations,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
}

// KeywordBlob concatenates all searchable metadata terms.
func (m *ControlMeta) KeywordBlob() string {
	if m == nil {
		return ""
	}
	parts := make([]string, 0, len(m.Keywords)+len(m.Properties)+len(m.Events)+len(m.Aggregations))
	parts = append(parts, m.Keywords...)
	parts = append(parts, m.Properties...)
	parts = append(parts, m.Events...)
	parts = append(parts, m.Aggregations...)
	return strings.Join(parts, " ")
}

// LibraryOf returns the library identifier encoded in a document id
// (the first slash-delimited segment, with leading slash).
func LibraryOf(id string) string {
	trimmed := strings.TrimPrefix(id, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		return "/" + trimmed[:i]
	}
	return "/" + trimmed
}

// IsSectionID reports whether an identifier addresses a section.
func IsSectionID(id string) bool {
	return strings.ContainsRune(id, '#')
}

// ParentOf returns the parent document id of a section id.
func ParentOf(id string) string {
	if i := strings.IndexByte(id, '#'); i >= 0 {
		return id[:i]
	}
	return id
}

// Bundle is a named group of Documents sharing a library identifier.
type Bundle struct {
	ID          string     `json:"id"` // leading slash, e.g. /sapui5
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	SourceDir   string     `json:"source_dir"`
	Documents   []Document `json:"documents"`
}
