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

// Package ingest harvests documentation source trees into catalog
// bundles. One extractor per source format; the harvester walks the
// configured trees and applies them file by file.
package ingest

import (
	"fmt"

	"github.com/sap-docs/mcp-server/pkg/catalog"
	"github.com/sap-docs/mcp-server/pkg/config"
)

// Extractor turns one source file into zero or more catalog documents.
type Extractor interface {
	// Extract parses content of the file at relFile. It may return an
	// empty slice when the file carries nothing worth indexing.
	Extract(libraryID, relFile string, content []byte) ([]catalog.Document, error)
}

// ForKind returns the extractor registered for a config kind.
func ForKind(kind config.ExtractorKind) (Extractor, error) {
	switch kind {
	case config.ExtractorMarkdown:
		return &MarkdownExtractor{}, nil
	case config.ExtractorJSDoc:
		return &JSDocExtractor{}, nil
	case config.ExtractorSample:
		return &SampleExtractor{}, nil
	default:
		return nil, fmt.Errorf("no extractor for kind %q", kind)
	}
}
